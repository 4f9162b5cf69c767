package engine

import (
	"math"
	"sync"
	"testing"
)

func TestMapToCameraY(t *testing.T) {
	m := NewScrollMapper(DefaultScrollFactor)
	if got := m.MapToCameraY(500); math.Abs(got+2.5) > 1e-12 {
		t.Errorf("MapToCameraY(500) = %v, want -2.5", got)
	}

	for _, off := range []float64{0, 1, 17.5, 500, -320, 1e6} {
		if got, want := m.MapToCameraY(2*off), 2*m.MapToCameraY(off); math.Abs(got-want) > 1e-9 {
			t.Errorf("MapToCameraY(2*%v) = %v, want %v", off, got, want)
		}
	}
}

func TestRecordLastWriteWins(t *testing.T) {
	m := NewScrollMapper(DefaultScrollFactor)
	m.Record(10)
	m.Record(20)
	m.Record(math.NaN())
	m.Record(math.Inf(1))
	if got := m.Offset(); got != 20 {
		t.Errorf("Offset() = %v, want 20", got)
	}
	if got := m.CameraY(); math.Abs(got+0.1) > 1e-12 {
		t.Errorf("CameraY() = %v, want -0.1", got)
	}
}

func TestRecordConcurrent(t *testing.T) {
	m := NewScrollMapper(DefaultScrollFactor)
	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			for k := 0; k < 1000; k++ {
				m.Record(v)
				_ = m.Offset()
			}
		}(float64(i))
	}
	wg.Wait()

	got := m.Offset()
	if got < 1 || got > 8 || got != math.Trunc(got) {
		t.Errorf("Offset() = %v, want one of the written values", got)
	}
}
