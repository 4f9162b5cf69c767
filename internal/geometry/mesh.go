package geometry

import "fmt"

// DefaultSegments is the subdivision count along each axis of a layer.
const DefaultSegments = 300

// MaxSegments keeps a grid within memory and its indices within uint32.
const MaxSegments = 2048

// Mesh is a plane in the XY plane centred at the origin. Rows run bottom
// to top, columns left to right.
type Mesh struct {
	Viewport  Viewport
	Segments  int
	Positions []float32 // x, y, z per vertex
	UVs       []float32 // u, v per vertex
	Indices   []uint32
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// NewGrid builds a plane covering vp with segments subdivisions per axis:
// (segments+1)^2 vertices and 2*segments^2 triangles.
func NewGrid(vp Viewport, segments int) (*Mesh, error) {
	if segments < 1 || segments > MaxSegments {
		return nil, fmt.Errorf("grid segments must be in [1, %d], got %d", MaxSegments, segments)
	}
	if !vp.Valid() {
		return nil, fmt.Errorf("invalid viewport %gx%g", vp.Width, vp.Height)
	}

	cols := segments + 1
	m := &Mesh{
		Viewport:  vp,
		Segments:  segments,
		Positions: make([]float32, 0, cols*cols*3),
		UVs:       make([]float32, 0, cols*cols*2),
		Indices:   make([]uint32, 0, segments*segments*6),
	}

	for iy := 0; iy < cols; iy++ {
		v := float64(iy) / float64(segments)
		y := (v - 0.5) * vp.Height
		for ix := 0; ix < cols; ix++ {
			u := float64(ix) / float64(segments)
			x := (u - 0.5) * vp.Width
			m.Positions = append(m.Positions, float32(x), float32(y), 0)
			m.UVs = append(m.UVs, float32(u), float32(v))
		}
	}

	for iy := 0; iy < segments; iy++ {
		for ix := 0; ix < segments; ix++ {
			a := uint32(iy*cols + ix)
			b := a + 1
			c := a + uint32(cols)
			d := c + 1
			// counter-clockwise, facing +Z
			m.Indices = append(m.Indices, a, b, d, a, d, c)
		}
	}

	return m, nil
}

// Band is a horizontal strip of a mesh with indices rebased to the strip's
// own vertex range.
type Band struct {
	Positions []float32
	UVs       []float32
	Indices   []uint16
}

// Bands splits the mesh into row strips small enough for 16-bit indices.
// Adjacent bands share their boundary row.
func (m *Mesh) Bands(maxVertices int) ([]Band, error) {
	cols := m.Segments + 1
	rowsPerBand := min(maxVertices/cols, 65536/cols)
	if rowsPerBand < 2 {
		return nil, fmt.Errorf("%d vertices per band cannot hold two rows of %d", maxVertices, cols)
	}

	var bands []Band
	for start := 0; start < m.Segments; start += rowsPerBand - 1 {
		end := min(start+rowsPerBand-1, m.Segments)

		b := Band{
			Positions: m.Positions[start*cols*3 : (end+1)*cols*3],
			UVs:       m.UVs[start*cols*2 : (end+1)*cols*2],
			Indices:   make([]uint16, 0, (end-start)*m.Segments*6),
		}
		for iy := 0; iy < end-start; iy++ {
			for ix := 0; ix < m.Segments; ix++ {
				a := uint16(iy*cols + ix)
				bb := a + 1
				c := a + uint16(cols)
				d := c + 1
				b.Indices = append(b.Indices, a, bb, d, a, d, c)
			}
		}
		bands = append(bands, b)
	}
	return bands, nil
}
