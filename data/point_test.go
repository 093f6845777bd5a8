package data

import (
	"sort"
	"testing"
	"time"
)

func TestPointsFind(t *testing.T) {
	ps := Points{
		{Type: "sysDisk", Key: "/", Value: 82.5},
		{Type: "sysLoad", Value: 0.7},
		{Type: "sysMem", Text: "ok"},
	}

	if v, ok := ps.Value("sysDisk", "/"); !ok || v != 82.5 {
		t.Error("Find sysDisk failed")
	}

	if _, ok := ps.Value("sysDisk", "/home"); ok {
		t.Error("Should not match different key")
	}

	if txt, ok := ps.Text("sysMem", ""); !ok || txt != "ok" {
		t.Error("Find sysMem text failed")
	}

	if _, ok := ps.Find("bogus", ""); ok {
		t.Error("Should not find bogus type")
	}
}

func TestPointsAdd(t *testing.T) {
	var ps Points

	ps.Add(Point{Type: "sysLoad", Value: 1, Time: time.Now()})
	ps.Add(Point{Type: "sysDisk", Key: "/", Value: 50, Time: time.Now()})

	// same type and key replaces
	ps.Add(Point{Type: "sysLoad", Value: 2, Time: time.Now()})

	if len(ps) != 2 {
		t.Fatal("Expected 2 points, got: ", len(ps))
	}

	if v, _ := ps.Value("sysLoad", ""); v != 2 {
		t.Error("Add did not replace point, got: ", v)
	}
}

func TestPointsSort(t *testing.T) {
	now := time.Now()

	ps := Points{
		{Type: "c", Time: now.Add(2 * time.Second)},
		{Type: "a", Time: now},
		{Type: "b", Time: now.Add(time.Second)},
	}

	sort.Sort(ps)

	if ps[0].Type != "a" || ps[1].Type != "b" || ps[2].Type != "c" {
		t.Error("Sort order wrong: ", ps)
	}
}

func TestPointAverager(t *testing.T) {
	pa := NewPointAverager("sysLoad")

	for _, v := range []float64{1, 2, 3} {
		pa.AddPoint(Point{Time: time.Now(), Value: v})
	}

	avg := pa.GetAverage()

	if avg.Type != "sysLoad" {
		t.Error("Average has wrong type: ", avg.Type)
	}

	if avg.Value != 2 {
		t.Error("Expected average 2, got: ", avg.Value)
	}

	pa.ResetAverage()

	if pa.GetAverage().Value != 0 {
		t.Error("Reset did not clear average")
	}
}
