package data

import (
	"math"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// The wire format is standard protobuf, appended directly with protowire.
// Field numbers are listed next to each message below and are frozen.
// Encoding is canonical: fields are appended in field-number order and
// zero values are skipped, so deeply equal values always produce identical
// bytes. Times travel as zigzag-encoded ns since the Unix epoch.

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendInt(b []byte, num protowire.Number, v int) []byte {
	if v == 0 {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendFloat(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendTime(b []byte, num protowire.Number, v time.Time) []byte {
	if v.IsZero() {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v.UnixNano()))
}

func appendMsg(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// ToPb encodes a source status in protobuf format.
// Fields: title=1, summary=2, severity=3, enabled=4.
func (s SourceStatus) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, s.Title)
	b = appendString(b, 2, s.Summary)
	b = appendInt(b, 3, int(s.Severity))
	b = appendBool(b, 4, s.Enabled)
	return b
}

// ToPb encodes an issue action in protobuf format.
// Fields: id=1, label=2, resolving=3, successMessage=4.
func (a IssueAction) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, a.ID)
	b = appendString(b, 2, a.Label)
	b = appendBool(b, 3, a.Resolving)
	b = appendString(b, 4, a.SuccessMessage)
	return b
}

// ToPb encodes a source issue in protobuf format.
// Fields: id=1, title=2, summary=3, severity=4, category=5, dismissible=6,
// actions=7.
func (i SourceIssue) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, i.ID)
	b = appendString(b, 2, i.Title)
	b = appendString(b, 3, i.Summary)
	b = appendInt(b, 4, int(i.Severity))
	b = appendString(b, 5, i.Category)
	b = appendBool(b, 6, i.Dismissible)
	for _, a := range i.Actions {
		b = appendMsg(b, 7, a.ToPb())
	}
	return b
}

// ToPb encodes source data in protobuf format.
// Fields: status=1, issues=2.
func (sd SourceData) ToPb() []byte {
	var b []byte
	if sd.Status != nil {
		b = appendMsg(b, 1, sd.Status.ToPb())
	}
	for _, i := range sd.Issues {
		b = appendMsg(b, 2, i.ToPb())
	}
	return b
}

// ToPb encodes an event in protobuf format.
// Fields: type=1, refreshId=2, issueId=3, actionId=4.
func (e Event) ToPb() []byte {
	var b []byte
	b = appendInt(b, 1, int(e.Type))
	b = appendString(b, 2, e.RefreshID)
	b = appendString(b, 3, e.IssueID)
	b = appendString(b, 4, e.ActionID)
	return b
}

// ToPb encodes a source update in protobuf format.
// Fields: source=1, data=2, event=3.
func (u SourceUpdate) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, u.Source)
	b = appendMsg(b, 2, u.Data.ToPb())
	b = appendMsg(b, 3, u.Event.ToPb())
	return b
}

// ToPb encodes a center status in protobuf format.
// Fields: title=1, summary=2, severity=3, refreshing=4.
func (s CenterStatus) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, s.Title)
	b = appendString(b, 2, s.Summary)
	b = appendInt(b, 3, int(s.Severity))
	b = appendInt(b, 4, int(s.Refreshing))
	return b
}

// ToPb encodes an entry in protobuf format.
// Fields: sourceId=1, title=2, summary=3, severity=4, enabled=5.
func (e Entry) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, e.SourceID)
	b = appendString(b, 2, e.Title)
	b = appendString(b, 3, e.Summary)
	b = appendInt(b, 4, int(e.Severity))
	b = appendBool(b, 5, e.Enabled)
	return b
}

// ToPb encodes an entry group in protobuf format.
// Fields: id=1, title=2, summary=3, severity=4, entries=5.
func (g EntryGroup) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, g.ID)
	b = appendString(b, 2, g.Title)
	b = appendString(b, 3, g.Summary)
	b = appendInt(b, 4, int(g.Severity))
	for _, e := range g.Entries {
		b = appendMsg(b, 5, e.ToPb())
	}
	return b
}

// ToPb encodes a static entry in protobuf format.
// Fields: title=1, summary=2.
func (s StaticEntry) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, s.Title)
	b = appendString(b, 2, s.Summary)
	return b
}

// ToPb encodes a center issue in protobuf format.
// Fields: id=1, sourceId=2, title=3, summary=4, severity=5, dismissible=6,
// actions=7.
func (i CenterIssue) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, i.ID)
	b = appendString(b, 2, i.SourceID)
	b = appendString(b, 3, i.Title)
	b = appendString(b, 4, i.Summary)
	b = appendInt(b, 5, int(i.Severity))
	b = appendBool(b, 6, i.Dismissible)
	for _, a := range i.Actions {
		b = appendMsg(b, 7, a.ToPb())
	}
	return b
}

// ToPb encodes center data in protobuf format.
// Fields: status=1, issues=2, groups=3, staticEntries=4.
func (cd CenterData) ToPb() []byte {
	var b []byte
	b = appendMsg(b, 1, cd.Status.ToPb())
	for _, i := range cd.Issues {
		b = appendMsg(b, 2, i.ToPb())
	}
	for _, g := range cd.Groups {
		b = appendMsg(b, 3, g.ToPb())
	}
	for _, s := range cd.StaticEntries {
		b = appendMsg(b, 4, s.ToPb())
	}
	return b
}

// ToPb encodes a refresh request in protobuf format.
// Fields: id=1, type=2, reason=3, deadline=4.
func (r RefreshRequest) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, r.ID)
	b = appendInt(b, 2, int(r.Type))
	b = appendInt(b, 3, int(r.Reason))
	b = appendTime(b, 4, r.Deadline)
	return b
}

// ToPb encodes a telemetry record in protobuf format.
// Fields: time=1, kind=2, source=3, eventType=4, reason=5, result=6,
// severity=7, openIssues=8, dismissedIssues=9, dataChanged=10, duration=11.
func (t Telemetry) ToPb() []byte {
	var b []byte
	b = appendTime(b, 1, t.Time)
	b = appendString(b, 2, string(t.Kind))
	b = appendString(b, 3, t.Source)
	b = appendInt(b, 4, int(t.EventType))
	b = appendInt(b, 5, int(t.Reason))
	b = appendString(b, 6, t.Result)
	b = appendInt(b, 7, int(t.Severity))
	b = appendInt(b, 8, t.OpenIssues)
	b = appendInt(b, 9, t.DismissedIssues)
	b = appendBool(b, 10, t.DataChanged)
	b = appendInt(b, 11, int(t.Duration))
	return b
}

// ToPb encodes an array of telemetry records in protobuf format.
// Fields: records=1.
func (ts Telemetries) ToPb() []byte {
	var b []byte
	for _, t := range ts {
		b = appendMsg(b, 1, t.ToPb())
	}
	return b
}

// ToPb encodes a telemetry query in protobuf format.
// Fields: kind=1, since=2.
func (q TelemetryQuery) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, string(q.Kind))
	b = appendTime(b, 2, q.Since)
	return b
}

// ToPb encodes an error detail in protobuf format.
// Fields: message=1, source=2, refreshId=3.
func (e ErrorDetail) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, e.Message)
	b = appendString(b, 2, e.Source)
	b = appendString(b, 3, e.RefreshID)
	return b
}

// ToPb encodes a point in protobuf format.
// Fields: type=1, key=2, time=3, value=4, text=5, origin=6.
func (p Point) ToPb() []byte {
	var b []byte
	b = appendString(b, 1, p.Type)
	b = appendString(b, 2, p.Key)
	b = appendTime(b, 3, p.Time)
	b = appendFloat(b, 4, p.Value)
	b = appendString(b, 5, p.Text)
	b = appendString(b, 6, p.Origin)
	return b
}

// ToPb encodes an array of points in protobuf format.
// Fields: points=1.
func (ps Points) ToPb() []byte {
	var b []byte
	for _, p := range ps {
		b = appendMsg(b, 1, p.ToPb())
	}
	return b
}
