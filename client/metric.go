package client

import (
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/safetycenter/safetycenter/data"
)

// Metric tracks a value and periodically reports the average as a point.
// The store uses these to trend how long its handlers take.
type Metric struct {
	// config
	nc           *nats.Conn
	streamID     string
	reportPeriod time.Duration

	// internal state
	lastReport time.Time
	lock       sync.Mutex
	avg        *data.PointAverager
}

// NewMetric creates a new metric
func NewMetric(nc *nats.Conn, streamID, pointType string, reportPeriod time.Duration) *Metric {
	return &Metric{
		nc:           nc,
		streamID:     streamID,
		reportPeriod: reportPeriod,
		lastReport:   time.Now(),
		avg:          data.NewPointAverager(pointType),
	}
}

// AddSample adds a sample and reports the average if reportPeriod has
// expired
func (m *Metric) AddSample(s float64) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	now := time.Now()
	m.avg.AddPoint(data.Point{
		Time:  now,
		Value: s,
	})

	if now.Sub(m.lastReport) > m.reportPeriod {
		p := m.avg.GetAverage()

		err := SendPoints(m.nc, SubjectPoints(m.streamID), data.Points{p})
		if err != nil {
			return err
		}

		m.avg.ResetAverage()
		m.lastReport = now
	}

	return nil
}
