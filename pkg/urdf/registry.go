package urdf

import (
	"fmt"
	"sync"
)

// Namespace is one of the disjoint name sets of a document.
type Namespace int

const (
	LinkNamespace Namespace = iota
	JointNamespace
	MaterialNamespace
	namespaceCount
)

func (ns Namespace) String() string {
	switch ns {
	case LinkNamespace:
		return "link"
	case JointNamespace:
		return "joint"
	case MaterialNamespace:
		return "material"
	default:
		return fmt.Sprintf("Namespace(%d)", int(ns))
	}
}

// Registry records every declared name per namespace. Names are permanent;
// there is no removal.
type Registry struct {
	mu    sync.Mutex
	sets  [namespaceCount]map[string]struct{}
	order [namespaceCount][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.sets {
		r.sets[i] = make(map[string]struct{})
	}
	return r
}

// Register records name in ns. It fails with ErrDuplicateName if the name
// is already present in that namespace.
func (r *Registry) Register(ns Namespace, name string) error {
	return r.declare(ns, name, func() error { return nil })
}

// declare records name in ns once emit succeeds. emit runs under the
// registry lock and is skipped if the name is taken.
func (r *Registry) declare(ns Namespace, name string, emit func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sets[ns][name]; exists {
		return fmt.Errorf("%s name %q already declared: %w", ns, name, ErrDuplicateName)
	}
	if err := emit(); err != nil {
		return err
	}
	r.sets[ns][name] = struct{}{}
	r.order[ns] = append(r.order[ns], name)
	return nil
}

// Has reports whether name is declared in ns.
func (r *Registry) Has(ns Namespace, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sets[ns][name]
	return ok
}

// Names returns the names declared in ns in declaration order.
func (r *Registry) Names(ns Namespace) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order[ns]))
	copy(out, r.order[ns])
	return out
}
