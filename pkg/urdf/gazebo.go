package urdf

// GazeboMaterial emits a gazebo extension block assigning a Gazebo
// material script (e.g. "Gazebo/Red") to a named link.
func GazeboMaterial(s *Session, l *Link, material string) error {
	const op = "GazeboMaterial"
	if l == nil || l.state == Created {
		return s.reject("gazebo", "", op, ErrNotYetNamed, "link has no name")
	}
	if err := s.idle("gazebo", l.name, op); err != nil {
		return err
	}
	return s.write("gazebo", l.name,
		at(1, "<gazebo "+attr("reference", l.name)+">"),
		at(2, "<material>"+escape(material)+"</material>"),
		at(1, "</gazebo>"),
		blank(),
	)
}
