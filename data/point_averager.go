package data

import "time"

// PointAverager accumulates points and produces an average point. Used for
// trending noisy values like handler cycle times.
type PointAverager struct {
	total     float64
	count     int
	pointType string
	lastTime  time.Time
}

// NewPointAverager initializes and returns an averager
func NewPointAverager(pointType string) *PointAverager {
	return &PointAverager{pointType: pointType}
}

// AddPoint takes a point and includes it in the average
func (pa *PointAverager) AddPoint(p Point) {
	pa.total += p.Value
	pa.count++

	if p.Time.After(pa.lastTime) {
		pa.lastTime = p.Time
	}
}

// GetAverage returns the average of the points added since the last reset
func (pa *PointAverager) GetAverage() Point {
	avg := 0.0
	if pa.count > 0 {
		avg = pa.total / float64(pa.count)
	}

	return Point{
		Type:  pa.pointType,
		Time:  pa.lastTime,
		Value: avg,
	}
}

// ResetAverage clears the accumulated state
func (pa *PointAverager) ResetAverage() {
	pa.total = 0
	pa.count = 0
}
