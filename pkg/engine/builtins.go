package engine

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/urdfkit/pkg/urdf"
	"github.com/chazu/urdfkit/pkg/urdf/presets"
)

// builder is the per-evaluation state shared by the builtins.
type builder struct {
	s         *urdf.Session
	robot     *urdf.Robot
	links     map[string]*urdf.Link
	joints    map[string]*urdf.Joint
	materials map[string]*urdf.Material

	failure error // first rejected builder call
}

func newBuilder(s *urdf.Session) *builder {
	return &builder{
		s:         s,
		links:     make(map[string]*urdf.Link),
		joints:    make(map[string]*urdf.Joint),
		materials: make(map[string]*urdf.Material),
	}
}

// check records the first builder failure and passes err through.
func (b *builder) check(err error) error {
	if err != nil && b.failure == nil {
		b.failure = err
	}
	return err
}

// finish closes the robot element if the script left it open.
func (b *builder) finish() error {
	if b.robot != nil && b.robot.Opened() {
		if err := b.check(b.robot.Finalize()); err != nil {
			return err
		}
	}
	return b.s.Err()
}

func (b *builder) lookupLink(s zygo.Sexp) (*urdf.Link, error) {
	switch v := s.(type) {
	case *sexpLink:
		return v.l, nil
	case *zygo.SexpStr:
		if l, ok := b.links[v.S]; ok {
			return l, nil
		}
		return nil, fmt.Errorf("no link named %q", v.S)
	}
	return nil, fmt.Errorf("expected link, got %T (%s)", s, s.SexpString(nil))
}

func (b *builder) lookupJoint(s zygo.Sexp) (*urdf.Joint, error) {
	switch v := s.(type) {
	case *sexpJoint:
		return v.j, nil
	case *zygo.SexpStr:
		if j, ok := b.joints[v.S]; ok {
			return j, nil
		}
		return nil, fmt.Errorf("no joint named %q", v.S)
	}
	return nil, fmt.Errorf("expected joint, got %T (%s)", s, s.SexpString(nil))
}

func (b *builder) lookupMaterial(s zygo.Sexp) (*urdf.Material, error) {
	switch v := s.(type) {
	case *sexpMaterial:
		return v.m, nil
	case *zygo.SexpStr:
		if m, ok := b.materials[v.S]; ok {
			return m, nil
		}
		return nil, fmt.Errorf("no material named %q", v.S)
	}
	return nil, fmt.Errorf("expected material, got %T (%s)", s, s.SexpString(nil))
}

// applySection emits one pending section into an open link.
func (b *builder) applySection(l *urdf.Link, sec *sexpSection) error {
	var open, finalize func() error
	var setOrigin func(urdf.Origin) error
	var setGeometry func(urdf.Geometry) error
	switch sec.sec {
	case urdf.Visual:
		open, finalize = l.OpenVisual, l.FinalizeVisual
		setOrigin, setGeometry = l.SetVisualOrigin, l.SetVisualGeometry
	case urdf.Collision:
		open, finalize = l.OpenCollision, l.FinalizeCollision
		setOrigin, setGeometry = l.SetCollisionOrigin, l.SetCollisionGeometry
	case urdf.Inertial:
		open, finalize = l.OpenInertial, l.FinalizeInertial
		setOrigin = l.SetInertialOrigin
	}

	if err := b.check(open()); err != nil {
		return err
	}
	if sec.origin != nil {
		if err := b.check(setOrigin(*sec.origin)); err != nil {
			return err
		}
	}
	if sec.geometry != nil && setGeometry != nil {
		if err := b.check(setGeometry(sec.geometry)); err != nil {
			return err
		}
	}
	if sec.material != nil {
		if err := b.check(l.SetVisualMaterial(sec.material)); err != nil {
			return err
		}
	}
	if sec.mass != nil {
		if err := b.check(l.SetInertialMass(*sec.mass)); err != nil {
			return err
		}
	}
	if sec.inertia != nil {
		if err := b.check(l.SetInertialTensor(*sec.inertia)); err != nil {
			return err
		}
	}
	return b.check(finalize())
}

// registerBuiltins installs all urdfkit DSL builtins into a zygomys
// environment. Builtins that emit (robot, material, preset, link, joint,
// transmission, gazebo-material) drive the builders in b.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (robot "pendulum")
	// -----------------------------------------------------------------------
	env.AddFunction("robot", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("robot requires a name argument")
		}
		robotName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("robot: name: %w", err)
		}
		r := urdf.NewRobot(b.s)
		if err := b.check(r.Begin()); err != nil {
			return zygo.SexpNull, fmt.Errorf("robot: %w", err)
		}
		if err := b.check(r.OpenAndName(robotName)); err != nil {
			return zygo.SexpNull, fmt.Errorf("robot: %w", err)
		}
		b.robot = r
		return &zygo.SexpStr{S: robotName}, nil
	})

	// -----------------------------------------------------------------------
	// (material "green" 0 1 0 1)   alpha defaults to 1
	// -----------------------------------------------------------------------
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 && len(args) != 5 {
			return zygo.SexpNull, fmt.Errorf("material requires a name and 3 or 4 colour components")
		}
		matName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("material: name: %w", err)
		}
		rgba := []float64{0, 0, 0, 1}
		for i, a := range args[1:] {
			if rgba[i], err = toFloat64(a); err != nil {
				return zygo.SexpNull, fmt.Errorf("material: component %d: %w", i+1, err)
			}
		}
		m := urdf.NewMaterial(b.s)
		if err := b.check(m.SetNameAndColor(matName, rgba[0], rgba[1], rgba[2], rgba[3])); err != nil {
			return zygo.SexpNull, fmt.Errorf("material: %w", err)
		}
		b.materials[matName] = m
		return &sexpMaterial{m: m, name: matName}, nil
	})

	// -----------------------------------------------------------------------
	// (preset "blue")
	// -----------------------------------------------------------------------
	env.AddFunction("preset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("preset requires a name argument")
		}
		presetName, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("preset: name: %w", err)
		}
		m, err := presets.New(b.s, presetName)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("preset: %w", b.check(err))
		}
		matName, _ := m.Name()
		b.materials[matName] = m
		return &sexpMaterial{m: m, name: matName}, nil
	})

	// -----------------------------------------------------------------------
	// (origin roll pitch yaw x y z) or (origin :rpy (vec3 ...) :xyz (vec3 ...))
	// -----------------------------------------------------------------------
	env.AddFunction("origin", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.kw) == 0 {
			v, err := toNumbers("origin", pa.positional, 6)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpOrigin{o: urdf.NewOrigin(v[0], v[1], v[2], v[3], v[4], v[5])}, nil
		}
		var o urdf.Origin
		if v, ok := pa.kw["rpy"]; ok {
			r, p, y, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("origin: rpy: %w", err)
			}
			o.Roll, o.Pitch, o.Yaw = r, p, y
		}
		if v, ok := pa.kw["xyz"]; ok {
			x, y, z, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("origin: xyz: %w", err)
			}
			o.X, o.Y, o.Z = x, y, z
		}
		return &sexpOrigin{o: o}, nil
	})

	// -----------------------------------------------------------------------
	// (box l b h) (cylinder length radius) (sphere radius)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toNumbers("box", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpGeometry{g: urdf.Box(v[0], v[1], v[2])}, nil
	})
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toNumbers("cylinder", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpGeometry{g: urdf.Cylinder(v[0], v[1])}, nil
	})
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toNumbers("sphere", args, 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpGeometry{g: urdf.Sphere(v[0])}, nil
	})

	// -----------------------------------------------------------------------
	// (mesh "package://bot/meshes/arm.stl" :scale (vec3 0.001 0.001 0.001))
	// -----------------------------------------------------------------------
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("mesh requires a filename argument")
		}
		file, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: filename: %w", err)
		}
		if v, ok := pa.kw["scale"]; ok {
			x, y, z, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: scale: %w", err)
			}
			return &sexpGeometry{g: urdf.ScaledMesh(file, x, y, z)}, nil
		}
		return &sexpGeometry{g: urdf.Mesh(file)}, nil
	})

	// -----------------------------------------------------------------------
	// (inertia ixx ixy ixz iyy iyz izz)
	// -----------------------------------------------------------------------
	env.AddFunction("inertia", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toNumbers("inertia", args, 6)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpInertia{in: urdf.Inertia{Ixx: v[0], Ixy: v[1], Ixz: v[2], Iyy: v[3], Iyz: v[4], Izz: v[5]}}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 0 1 0)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toNumbers("vec3", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{x: v[0], y: v[1], z: v[2]}, nil
	})

	// -----------------------------------------------------------------------
	// (visual :origin o :geometry g :material m)
	// (collision :origin o :geometry g)
	// (inertial :origin o :mass 1 :inertia (inertia ...))
	// -----------------------------------------------------------------------
	env.AddFunction("visual", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.section(urdf.Visual, args, "origin", "geometry", "material")
	})
	env.AddFunction("collision", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.section(urdf.Collision, args, "origin", "geometry")
	})
	env.AddFunction("inertial", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.section(urdf.Inertial, args, "origin", "mass", "inertia")
	})

	// -----------------------------------------------------------------------
	// (link "arm" (inertial ...) (visual ...) (collision ...))
	// -----------------------------------------------------------------------
	env.AddFunction("link", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("link requires a name argument")
		}
		linkName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("link: name: %w", err)
		}
		sections := make([]*sexpSection, 0, len(args)-1)
		for i, a := range args[1:] {
			sec, ok := a.(*sexpSection)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("link: child %d: expected visual, collision or inertial, got %T (%s)",
					i+1, a, a.SexpString(nil))
			}
			sections = append(sections, sec)
		}

		l := urdf.NewLink(b.s)
		if err := b.check(l.SetName(linkName)); err != nil {
			return zygo.SexpNull, fmt.Errorf("link: %w", err)
		}
		for _, sec := range sections {
			if err := b.applySection(l, sec); err != nil {
				return zygo.SexpNull, fmt.Errorf("link: %w", err)
			}
		}
		if err := b.check(l.FinalizeLink()); err != nil {
			return zygo.SexpNull, fmt.Errorf("link: %w", err)
		}
		b.links[linkName] = l
		return &sexpLink{l: l, name: linkName}, nil
	})

	// -----------------------------------------------------------------------
	// (limit :effort 10 :lower -1.57 :upper 1.57 :velocity 2)
	// -----------------------------------------------------------------------
	env.AddFunction("limit", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		lim := urdf.DefaultLimits()
		fields := map[string]*float64{
			"effort":   &lim.Effort,
			"lower":    &lim.Lower,
			"upper":    &lim.Upper,
			"velocity": &lim.Velocity,
		}
		for key, v := range pa.kw {
			dst, ok := fields[key]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("limit: unknown keyword :%s", key)
			}
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("limit: %s: %w", key, err)
			}
			*dst = f
		}
		return &sexpLimits{lim: lim}, nil
	})

	// -----------------------------------------------------------------------
	// (dynamics damping friction)
	// -----------------------------------------------------------------------
	env.AddFunction("dynamics", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toNumbers("dynamics", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpDynamics{damping: v[0], friction: v[1]}, nil
	})

	// -----------------------------------------------------------------------
	// (joint "theta" :type :continuous :parent base :child arm
	//        :axis (vec3 0 1 0) :origin o :limit (limit ...) :dynamics (dynamics 0.5 20))
	// -----------------------------------------------------------------------
	env.AddFunction("joint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("joint requires a name argument")
		}
		jointName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("joint: name: %w", err)
		}
		var typ urdf.JointType
		if v, ok := pa.kw["type"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("joint: type: %w", err)
			}
			typ = urdf.JointType(s)
		}

		// Resolve every argument before the joint element is opened.
		var parent, child *urdf.Link
		if v, ok := pa.kw["parent"]; ok {
			if parent, err = b.lookupLink(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("joint: parent: %w", err)
			}
		}
		if v, ok := pa.kw["child"]; ok {
			if child, err = b.lookupLink(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("joint: child: %w", err)
			}
		}
		var steps []func(j *urdf.Joint) error
		if v, ok := pa.kw["axis"]; ok {
			x, y, z, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("joint: axis: %w", err)
			}
			steps = append(steps, func(j *urdf.Joint) error { return j.SetAxis(x, y, z) })
		}
		if v, ok := pa.kw["origin"]; ok {
			o, err := toOrigin(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("joint: origin: %w", err)
			}
			steps = append(steps, func(j *urdf.Joint) error { return j.SetOrigin(o) })
		}
		if v, ok := pa.kw["limit"]; ok {
			lim, ok := v.(*sexpLimits)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("joint: limit: expected limit, got %T", v)
			}
			steps = append(steps, func(j *urdf.Joint) error { return j.SetLimits(lim.lim) })
		}
		if v, ok := pa.kw["dynamics"]; ok {
			d, ok := v.(*sexpDynamics)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("joint: dynamics: expected dynamics, got %T", v)
			}
			steps = append(steps, func(j *urdf.Joint) error { return j.SetDynamics(d.damping, d.friction) })
		}

		j := urdf.NewJoint(b.s)
		if err := b.check(j.SetNameAndType(jointName, typ)); err != nil {
			return zygo.SexpNull, fmt.Errorf("joint: %w", err)
		}
		if parent != nil {
			if err := b.check(j.SetParent(parent)); err != nil {
				return zygo.SexpNull, fmt.Errorf("joint: %w", err)
			}
		}
		if child != nil {
			if err := b.check(j.SetChild(child)); err != nil {
				return zygo.SexpNull, fmt.Errorf("joint: %w", err)
			}
		}
		for _, step := range steps {
			if err := b.check(step(j)); err != nil {
				return zygo.SexpNull, fmt.Errorf("joint: %w", err)
			}
		}
		if err := b.check(j.FinalizeJoint()); err != nil {
			return zygo.SexpNull, fmt.Errorf("joint: %w", err)
		}
		b.joints[jointName] = j
		return &sexpJoint{j: j, name: jointName}, nil
	})

	// -----------------------------------------------------------------------
	// (transmission "elbow_trans" :type "SimpleTransmission" :actuator "tau"
	//               :joint theta :reduction 1)
	// -----------------------------------------------------------------------
	env.AddFunction("transmission", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("transmission requires a name argument")
		}
		transName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transmission: name: %w", err)
		}
		typ := "SimpleTransmission"
		if v, ok := pa.kw["type"]; ok {
			if typ, err = toKeywordString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("transmission: type: %w", err)
			}
		}
		var steps []func(t *urdf.Transmission) error
		if v, ok := pa.kw["actuator"]; ok {
			act, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("transmission: actuator: %w", err)
			}
			steps = append(steps, func(t *urdf.Transmission) error { return t.SetActuatorName(act) })
		}
		if v, ok := pa.kw["joint"]; ok {
			j, err := b.lookupJoint(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("transmission: joint: %w", err)
			}
			steps = append(steps, func(t *urdf.Transmission) error { return t.SetJointReference(j) })
		}
		if v, ok := pa.kw["reduction"]; ok {
			r, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("transmission: reduction: %w", err)
			}
			steps = append(steps, func(t *urdf.Transmission) error { return t.SetMechanicalReduction(r) })
		}

		t := urdf.NewTransmission(b.s)
		if err := b.check(t.SetNameAndType(transName, typ)); err != nil {
			return zygo.SexpNull, fmt.Errorf("transmission: %w", err)
		}
		for _, step := range steps {
			if err := b.check(step(t)); err != nil {
				return zygo.SexpNull, fmt.Errorf("transmission: %w", err)
			}
		}
		if err := b.check(t.Finalize()); err != nil {
			return zygo.SexpNull, fmt.Errorf("transmission: %w", err)
		}
		return &zygo.SexpStr{S: transName}, nil
	})

	// -----------------------------------------------------------------------
	// (gazebo-material arm "Gazebo/Red")
	//
	// Registered as "gazebo_material" because zygomys does not support
	// hyphens in identifiers.
	// -----------------------------------------------------------------------
	env.AddFunction("gazebo_material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("gazebo-material requires a link and a material name")
		}
		l, err := b.lookupLink(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("gazebo-material: link: %w", err)
		}
		script, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("gazebo-material: material: %w", err)
		}
		if err := b.check(urdf.GazeboMaterial(b.s, l, script)); err != nil {
			return zygo.SexpNull, fmt.Errorf("gazebo-material: %w", err)
		}
		return zygo.SexpNull, nil
	})
}

// section builds a pending link section from keyword arguments. allowed
// lists the keywords the section accepts.
func (b *builder) section(sec urdf.Section, args []zygo.Sexp, allowed ...string) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) > 0 {
		return zygo.SexpNull, fmt.Errorf("%s: unexpected positional argument %s", sec, pa.positional[0].SexpString(nil))
	}
	ok := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}

	out := &sexpSection{sec: sec}
	for key, v := range pa.kw {
		if !ok[key] {
			return zygo.SexpNull, fmt.Errorf("%s: unknown keyword :%s", sec, key)
		}
		switch key {
		case "origin":
			o, err := toOrigin(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: origin: %w", sec, err)
			}
			out.origin = &o
		case "geometry":
			g, err := toGeometry(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: geometry: %w", sec, err)
			}
			out.geometry = g
		case "material":
			m, err := b.lookupMaterial(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: material: %w", sec, err)
			}
			out.material = m
		case "mass":
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: mass: %w", sec, err)
			}
			out.mass = &f
		case "inertia":
			in, err := toInertia(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: inertia: %w", sec, err)
			}
			out.inertia = &in
		}
	}
	return out, nil
}
