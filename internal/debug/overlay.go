package debug

import (
	"linux-aurora/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type DebugOverlay struct {
	Visible    bool
	ShowBounds bool

	fontHeight int32
	padding    int32
}

func NewDebugOverlay() *DebugOverlay {
	return &DebugOverlay{ShowBounds: true, fontHeight: 16, padding: 8}
}

// Update handles the overlay keys: F8 toggles the panel, B the outlines.
func (d *DebugOverlay) Update() {
	if rl.IsKeyPressed(rl.KeyF8) {
		d.Visible = !d.Visible
	}
	if d.Visible && rl.IsKeyPressed(rl.KeyB) {
		d.ShowBounds = !d.ShowBounds
	}
}

func (d *DebugOverlay) Draw(snap Snapshot, cam geometry.Camera) {
	if !d.Visible {
		return
	}
	if d.ShowBounds {
		d.drawLayerBounds(snap, cam)
	}

	lines := snap.Lines()
	width := int32(0)
	for _, l := range lines {
		width = max(width, rl.MeasureText(l, d.fontHeight))
	}
	lineHeight := d.fontHeight + 4
	rl.DrawRectangle(0, 0, width+2*d.padding, int32(len(lines))*lineHeight+2*d.padding, rl.NewColor(0, 0, 0, 170))
	for i, l := range lines {
		rl.DrawText(l, d.padding, d.padding+int32(i)*lineHeight, d.fontHeight, rl.White)
	}
}
