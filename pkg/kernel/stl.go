package kernel

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteSTL writes m as an ASCII STL solid. The name defaults to m.Name,
// then "mesh".
func WriteSTL(w io.Writer, m *Mesh, name string) error {
	if name == "" {
		name = m.Name
	}
	if name == "" {
		name = "mesh"
	}
	if err := m.check(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", name)
	for t := 0; t < len(m.Indices); t += 3 {
		fmt.Fprintf(bw, "  facet normal %s\n    outer loop\n", triple(m.Normals, int(m.Indices[t])))
		for k := 0; k < 3; k++ {
			fmt.Fprintf(bw, "      vertex %s\n", triple(m.Vertices, int(m.Indices[t+k])))
		}
		bw.WriteString("    endloop\n  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}

func triple(flat []float32, i int) string {
	f := func(v float32) string { return strconv.FormatFloat(float64(v), 'e', 6, 32) }
	return f(flat[3*i]) + " " + f(flat[3*i+1]) + " " + f(flat[3*i+2])
}

// check validates the index and normal arrays against the vertices.
func (m *Mesh) check() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("kernel: index count %d is not a multiple of 3", len(m.Indices))
	}
	if len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("kernel: %d normals for %d vertex components", len(m.Normals), len(m.Vertices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= m.VertexCount() {
			return fmt.Errorf("kernel: triangle %d references vertex %d of %d", i/3, idx, m.VertexCount())
		}
	}
	return nil
}
