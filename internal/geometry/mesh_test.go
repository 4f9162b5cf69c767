package geometry

import (
	"math"
	"testing"
)

func TestNewGridCounts(t *testing.T) {
	vp := Viewport{Width: 16, Height: 9}
	tests := []struct {
		name     string
		segments int
	}{
		{"single", 1},
		{"small", 4},
		{"default", DefaultSegments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewGrid(vp, tt.segments)
			if err != nil {
				t.Fatalf("NewGrid() error = %v", err)
			}
			wantV := (tt.segments + 1) * (tt.segments + 1)
			if got := m.VertexCount(); got != wantV {
				t.Errorf("VertexCount() = %d, want %d", got, wantV)
			}
			if got := len(m.UVs) / 2; got != wantV {
				t.Errorf("UV count = %d, want %d", got, wantV)
			}
			if got, want := m.TriangleCount(), 2*tt.segments*tt.segments; got != want {
				t.Errorf("TriangleCount() = %d, want %d", got, want)
			}
		})
	}
}

func TestNewGridExtentAndUV(t *testing.T) {
	vp := Viewport{Width: 10, Height: 4}
	m, err := NewGrid(vp, 2)
	if err != nil {
		t.Fatal(err)
	}

	// first vertex is bottom-left, last is top-right
	if m.Positions[0] != -5 || m.Positions[1] != -2 {
		t.Errorf("first vertex = (%v, %v), want (-5, -2)", m.Positions[0], m.Positions[1])
	}
	last := len(m.Positions) - 3
	if m.Positions[last] != 5 || m.Positions[last+1] != 2 {
		t.Errorf("last vertex = (%v, %v), want (5, 2)", m.Positions[last], m.Positions[last+1])
	}
	for i, uv := range m.UVs {
		if uv < 0 || uv > 1 {
			t.Fatalf("UV[%d] = %v outside [0, 1]", i, uv)
		}
	}
	if m.UVs[len(m.UVs)-2] != 1 || m.UVs[len(m.UVs)-1] != 1 {
		t.Errorf("top-right UV = (%v, %v), want (1, 1)", m.UVs[len(m.UVs)-2], m.UVs[len(m.UVs)-1])
	}
}

func TestNewGridRejectsBadInput(t *testing.T) {
	if _, err := NewGrid(Viewport{}, 10); err == nil {
		t.Error("NewGrid with zero viewport expected an error")
	}
	if _, err := NewGrid(Viewport{Width: 1, Height: 1}, 0); err == nil {
		t.Error("NewGrid with zero segments expected an error")
	}
	if _, err := NewGrid(Viewport{Width: 1, Height: 1}, MaxSegments+1); err == nil {
		t.Error("NewGrid above MaxSegments expected an error")
	}
}

func TestBandsCoverMesh(t *testing.T) {
	m, err := NewGrid(Viewport{Width: 2, Height: 2}, DefaultSegments)
	if err != nil {
		t.Fatal(err)
	}

	bands, err := m.Bands(65535)
	if err != nil {
		t.Fatal(err)
	}
	if len(bands) < 2 {
		t.Fatalf("len(bands) = %d, want the grid split", len(bands))
	}

	triangles := 0
	for i, b := range bands {
		verts := len(b.Positions) / 3
		if verts > 65536 {
			t.Errorf("band %d has %d vertices", i, verts)
		}
		for _, idx := range b.Indices {
			if int(idx) >= verts {
				t.Fatalf("band %d index %d out of range %d", i, idx, verts)
			}
		}
		triangles += len(b.Indices) / 3
	}
	if triangles != m.TriangleCount() {
		t.Errorf("bands hold %d triangles, want %d", triangles, m.TriangleCount())
	}
}

func TestCameraViewport(t *testing.T) {
	cam := Camera{FovY: 90, Distance: 10}
	vp := cam.Viewport(Surface{Width: 800, Height: 400})
	if math.Abs(vp.Height-20) > 1e-9 {
		t.Errorf("Height = %v, want 20", vp.Height)
	}
	if math.Abs(vp.Width-40) > 1e-9 {
		t.Errorf("Width = %v, want 40", vp.Width)
	}

	if cam.Viewport(Surface{Width: 0, Height: 600}).Valid() {
		t.Error("zero-width surface produced a valid viewport")
	}
}
