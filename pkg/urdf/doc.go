// Package urdf builds URDF robot description documents from a sequence of
// imperative builder calls.
//
// A Session binds an output sink and a name registry. Robot, Material,
// Link, Joint and Transmission builders are created against a session and
// write their fragments to the sink as they are mutated, so the document is
// produced in call order. Each builder enforces its own lifecycle: a call
// that violates it returns a *BuilderError and writes nothing.
//
//	s := urdf.NewSession(w)
//	robot := urdf.NewRobot(s)
//	robot.Begin()
//	robot.OpenAndName("pendulum")
//
//	base := urdf.NewLink(s)
//	base.SetName("base")
//	base.OpenVisual()
//	base.SetVisualGeometry(urdf.Box(1, 1, 1))
//	base.FinalizeVisual()
//	base.FinalizeLink()
//
// Only one link, joint or transmission may be open at a time, which keeps
// the emitted elements properly nested.
package urdf
