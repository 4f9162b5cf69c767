package engine

import (
	"math"
	"sync/atomic"
)

const DefaultScrollFactor = 0.005

// ScrollMapper holds the latest scroll offset. Writers and the tick may
// run on different goroutines; the last write wins.
type ScrollMapper struct {
	factor float64
	bits   atomic.Uint64
}

func NewScrollMapper(factor float64) *ScrollMapper {
	return &ScrollMapper{factor: factor}
}

// Record stores offset. Non-finite values are dropped.
func (m *ScrollMapper) Record(offset float64) {
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return
	}
	m.bits.Store(math.Float64bits(offset))
}

func (m *ScrollMapper) Offset() float64 {
	return math.Float64frombits(m.bits.Load())
}

// MapToCameraY moves the camera against the scroll direction, attenuated
// by the scroll factor.
func (m *ScrollMapper) MapToCameraY(offset float64) float64 {
	return offset * -m.factor
}

func (m *ScrollMapper) CameraY() float64 {
	return m.MapToCameraY(m.Offset())
}
