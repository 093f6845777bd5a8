package data

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"
)

// Point is a flexible sample used for trending data that sits alongside the
// safety model: device-health readings, handler cycle metrics, etc.
// Type and Key uniquely identify a point within a stream.
type Point struct {
	// Type of point (sysDisk, sysMem, metricCycle, etc)
	Type string `json:"type,omitempty"`

	// Key allows a group of points to represent a map or array
	Key string `json:"key,omitempty"`

	// Time the point was taken
	Time time.Time `json:"time,omitempty"`

	// Instantaneous analog or digital value of the point.
	// 0 and 1 are used to represent digital values.
	Value float64 `json:"value,omitempty"`

	// Optional text value for data that is best represented as a string
	Text string `json:"text,omitempty"`

	// Origin identifies what generated the point
	Origin string `json:"origin,omitempty"`
}

func (p Point) String() string {
	t := ""

	if p.Type != "" {
		t += "T:" + p.Type + " "
	}

	if p.Text != "" {
		t += fmt.Sprintf("V:%v ", p.Text)
	} else {
		t += fmt.Sprintf("V:%.3f ", p.Value)
	}

	if p.Key != "" {
		t += fmt.Sprintf("K:%v ", p.Key)
	}

	if p.Origin != "" {
		t += fmt.Sprintf("O:%v ", p.Origin)
	}

	if !p.Time.IsZero() {
		t += p.Time.Format(time.RFC3339)
	}

	return t
}

// IsMatch returns true if the point matches the params passed in
func (p Point) IsMatch(typ, key string) bool {
	if typ != "" && typ != p.Type {
		return false
	}

	if key != "" && key != p.Key {
		return false
	}

	return true
}

// CRC returns a CRC for the point. Time is hashed on both ends so points
// that share a timestamp don't cancel out in a XOR checksum.
func (p Point) CRC() uint32 {
	h := crc32.NewIEEE()
	d := make([]byte, 8)
	binary.LittleEndian.PutUint64(d, uint64(p.Time.UnixNano()))
	h.Write(d)
	h.Write([]byte(p.Type))
	h.Write([]byte(p.Key))
	h.Write([]byte(p.Text))
	h.Write(d)

	return h.Sum32()
}

// Points is an array of Point
type Points []Point

func (ps Points) String() string {
	ret := ""
	for _, p := range ps {
		ret += p.String() + "\n"
	}

	return ret
}

// Find fetches a point given Type and Key and true if found
func (ps Points) Find(typ, key string) (Point, bool) {
	for _, p := range ps {
		if !p.IsMatch(typ, key) {
			continue
		}

		return p, true
	}

	return Point{}, false
}

// Value fetches a value given Type and Key. If either is "", it is ignored.
func (ps Points) Value(typ, key string) (float64, bool) {
	p, ok := ps.Find(typ, key)
	return p.Value, ok
}

// Text fetches a text value given Type and Key
func (ps Points) Text(typ, key string) (string, bool) {
	p, ok := ps.Find(typ, key)
	return p.Text, ok
}

// LatestTime returns the latest timestamp found in the points
func (ps Points) LatestTime() time.Time {
	ret := time.Time{}
	for _, p := range ps {
		if p.Time.After(ret) {
			ret = p.Time
		}
	}

	return ret
}

// Hash returns the hash of points
func (ps Points) Hash() uint32 {
	var ret uint32

	for _, p := range ps {
		ret = ret ^ p.CRC()
	}

	return ret
}

// Add takes a point and updates an existing array of points. An existing
// point is replaced if the timestamp in pIn is newer. If the pIn timestamp
// is zero, the current time is used.
func (ps *Points) Add(pIn Point) {
	if pIn.Time.IsZero() {
		pIn.Time = time.Now()
	}

	for i, p := range *ps {
		if p.Key == pIn.Key && p.Type == pIn.Type {
			if pIn.Time.After(p.Time) {
				(*ps)[i] = pIn
			}
			return
		}
	}

	*ps = append(*ps, pIn)
}

// Implement methods needed by sort.Interface

// Len returns the number of points
func (ps Points) Len() int {
	return len([]Point(ps))
}

// Less is required by sort.Interface
func (ps Points) Less(i, j int) bool {
	return ps[i].Time.Before(ps[j].Time)
}

// Swap is required by sort.Interface
func (ps Points) Swap(i, j int) {
	ps[i], ps[j] = ps[j], ps[i]
}
