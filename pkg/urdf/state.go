package urdf

import "fmt"

// Lifecycle is the entity-level state shared by every builder.
type Lifecycle int

const (
	Created   Lifecycle = iota // constructed, nothing emitted
	Started                    // opening fragment emitted
	Finalized                  // closing fragment emitted; immutable
)

func (l Lifecycle) String() string {
	switch l {
	case Created:
		return "created"
	case Started:
		return "started"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("Lifecycle(%d)", int(l))
	}
}

// Section names one of a link's optional sub-parts.
type Section int

const (
	Visual Section = iota
	Collision
	Inertial
	sectionCount
)

func (s Section) String() string {
	switch s {
	case Visual:
		return "visual"
	case Collision:
		return "collision"
	case Inertial:
		return "inertial"
	default:
		return fmt.Sprintf("Section(%d)", int(s))
	}
}

// SectionState is the open/closed state of a single link section.
type SectionState int

const (
	SectionClosed SectionState = iota
	SectionOpen
)

func (s SectionState) String() string {
	if s == SectionOpen {
		return "open"
	}
	return "closed"
}
