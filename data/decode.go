package data

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// decoder walks one protobuf message. Unknown fields are skipped so old
// readers keep working when new fields are added.
type decoder struct {
	b   []byte
	err error
}

// next returns the field number and wire type of the next field, and false
// when the message is exhausted or an error was hit
func (d *decoder) next() (protowire.Number, protowire.Type, bool) {
	if d.err != nil || len(d.b) == 0 {
		return 0, 0, false
	}

	num, typ, n := protowire.ConsumeTag(d.b)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return 0, 0, false
	}

	d.b = d.b[n:]
	return num, typ, true
}

func (d *decoder) skip(num protowire.Number, typ protowire.Type) {
	n := protowire.ConsumeFieldValue(num, typ, d.b)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return
	}

	d.b = d.b[n:]
}

func (d *decoder) varint() uint64 {
	v, n := protowire.ConsumeVarint(d.b)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return 0
	}

	d.b = d.b[n:]
	return v
}

func (d *decoder) string() string {
	v, n := protowire.ConsumeBytes(d.b)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return ""
	}

	d.b = d.b[n:]
	return string(v)
}

func (d *decoder) bytes() []byte {
	v, n := protowire.ConsumeBytes(d.b)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return nil
	}

	d.b = d.b[n:]
	return v
}

func (d *decoder) bool() bool {
	return d.varint() != 0
}

func (d *decoder) float() float64 {
	v, n := protowire.ConsumeFixed64(d.b)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return 0
	}

	d.b = d.b[n:]
	return math.Float64frombits(v)
}

func (d *decoder) time() time.Time {
	ns := protowire.DecodeZigZag(d.varint())
	if ns == 0 {
		return time.Time{}
	}

	return time.Unix(0, ns)
}

// PbDecodeSourceStatus decodes a protobuf encoded source status
func PbDecodeSourceStatus(b []byte) (SourceStatus, error) {
	var ret SourceStatus
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.Title = d.string()
		case 2:
			ret.Summary = d.string()
		case 3:
			ret.Severity = SeverityLevel(d.varint())
		case 4:
			ret.Enabled = d.bool()
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return SourceStatus{}, fmt.Errorf("decode source status: %w", d.err)
	}

	return ret, nil
}

// PbDecodeIssueAction decodes a protobuf encoded issue action
func PbDecodeIssueAction(b []byte) (IssueAction, error) {
	var ret IssueAction
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.ID = d.string()
		case 2:
			ret.Label = d.string()
		case 3:
			ret.Resolving = d.bool()
		case 4:
			ret.SuccessMessage = d.string()
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return IssueAction{}, fmt.Errorf("decode issue action: %w", d.err)
	}

	return ret, nil
}

// PbDecodeSourceIssue decodes a protobuf encoded source issue
func PbDecodeSourceIssue(b []byte) (SourceIssue, error) {
	var ret SourceIssue
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.ID = d.string()
		case 2:
			ret.Title = d.string()
		case 3:
			ret.Summary = d.string()
		case 4:
			ret.Severity = SeverityLevel(d.varint())
		case 5:
			ret.Category = d.string()
		case 6:
			ret.Dismissible = d.bool()
		case 7:
			a, err := PbDecodeIssueAction(d.bytes())
			if err != nil {
				return SourceIssue{}, err
			}
			ret.Actions = append(ret.Actions, a)
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return SourceIssue{}, fmt.Errorf("decode source issue: %w", d.err)
	}

	return ret, nil
}

// PbDecodeSourceData decodes protobuf encoded source data
func PbDecodeSourceData(b []byte) (SourceData, error) {
	var ret SourceData
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			s, err := PbDecodeSourceStatus(d.bytes())
			if err != nil {
				return SourceData{}, err
			}
			ret.Status = &s
		case 2:
			i, err := PbDecodeSourceIssue(d.bytes())
			if err != nil {
				return SourceData{}, err
			}
			ret.Issues = append(ret.Issues, i)
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return SourceData{}, fmt.Errorf("decode source data: %w", d.err)
	}

	return ret, nil
}

// PbDecodeEvent decodes a protobuf encoded event
func PbDecodeEvent(b []byte) (Event, error) {
	var ret Event
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.Type = EventType(d.varint())
		case 2:
			ret.RefreshID = d.string()
		case 3:
			ret.IssueID = d.string()
		case 4:
			ret.ActionID = d.string()
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return Event{}, fmt.Errorf("decode event: %w", d.err)
	}

	return ret, nil
}

// PbDecodeSourceUpdate decodes a protobuf encoded source update
func PbDecodeSourceUpdate(b []byte) (SourceUpdate, error) {
	var ret SourceUpdate
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.Source = d.string()
		case 2:
			sd, err := PbDecodeSourceData(d.bytes())
			if err != nil {
				return SourceUpdate{}, err
			}
			ret.Data = sd
		case 3:
			e, err := PbDecodeEvent(d.bytes())
			if err != nil {
				return SourceUpdate{}, err
			}
			ret.Event = e
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return SourceUpdate{}, fmt.Errorf("decode source update: %w", d.err)
	}

	return ret, nil
}

// PbDecodeCenterStatus decodes a protobuf encoded center status
func PbDecodeCenterStatus(b []byte) (CenterStatus, error) {
	var ret CenterStatus
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.Title = d.string()
		case 2:
			ret.Summary = d.string()
		case 3:
			ret.Severity = OverallSeverity(d.varint())
		case 4:
			ret.Refreshing = RefreshStatus(d.varint())
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return CenterStatus{}, fmt.Errorf("decode center status: %w", d.err)
	}

	return ret, nil
}

// PbDecodeEntry decodes a protobuf encoded entry
func PbDecodeEntry(b []byte) (Entry, error) {
	var ret Entry
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.SourceID = d.string()
		case 2:
			ret.Title = d.string()
		case 3:
			ret.Summary = d.string()
		case 4:
			ret.Severity = SeverityLevel(d.varint())
		case 5:
			ret.Enabled = d.bool()
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return Entry{}, fmt.Errorf("decode entry: %w", d.err)
	}

	return ret, nil
}

// PbDecodeEntryGroup decodes a protobuf encoded entry group
func PbDecodeEntryGroup(b []byte) (EntryGroup, error) {
	var ret EntryGroup
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.ID = d.string()
		case 2:
			ret.Title = d.string()
		case 3:
			ret.Summary = d.string()
		case 4:
			ret.Severity = SeverityLevel(d.varint())
		case 5:
			e, err := PbDecodeEntry(d.bytes())
			if err != nil {
				return EntryGroup{}, err
			}
			ret.Entries = append(ret.Entries, e)
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return EntryGroup{}, fmt.Errorf("decode entry group: %w", d.err)
	}

	return ret, nil
}

// PbDecodeStaticEntry decodes a protobuf encoded static entry
func PbDecodeStaticEntry(b []byte) (StaticEntry, error) {
	var ret StaticEntry
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.Title = d.string()
		case 2:
			ret.Summary = d.string()
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return StaticEntry{}, fmt.Errorf("decode static entry: %w", d.err)
	}

	return ret, nil
}

// PbDecodeCenterIssue decodes a protobuf encoded center issue
func PbDecodeCenterIssue(b []byte) (CenterIssue, error) {
	var ret CenterIssue
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.ID = d.string()
		case 2:
			ret.SourceID = d.string()
		case 3:
			ret.Title = d.string()
		case 4:
			ret.Summary = d.string()
		case 5:
			ret.Severity = SeverityLevel(d.varint())
		case 6:
			ret.Dismissible = d.bool()
		case 7:
			a, err := PbDecodeIssueAction(d.bytes())
			if err != nil {
				return CenterIssue{}, err
			}
			ret.Actions = append(ret.Actions, a)
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return CenterIssue{}, fmt.Errorf("decode center issue: %w", d.err)
	}

	return ret, nil
}

// PbDecodeCenterData decodes protobuf encoded center data
func PbDecodeCenterData(b []byte) (CenterData, error) {
	var ret CenterData
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			s, err := PbDecodeCenterStatus(d.bytes())
			if err != nil {
				return CenterData{}, err
			}
			ret.Status = s
		case 2:
			i, err := PbDecodeCenterIssue(d.bytes())
			if err != nil {
				return CenterData{}, err
			}
			ret.Issues = append(ret.Issues, i)
		case 3:
			g, err := PbDecodeEntryGroup(d.bytes())
			if err != nil {
				return CenterData{}, err
			}
			ret.Groups = append(ret.Groups, g)
		case 4:
			s, err := PbDecodeStaticEntry(d.bytes())
			if err != nil {
				return CenterData{}, err
			}
			ret.StaticEntries = append(ret.StaticEntries, s)
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return CenterData{}, fmt.Errorf("decode center data: %w", d.err)
	}

	return ret, nil
}

// PbDecodeRefreshRequest decodes a protobuf encoded refresh request
func PbDecodeRefreshRequest(b []byte) (RefreshRequest, error) {
	var ret RefreshRequest
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.ID = d.string()
		case 2:
			ret.Type = RequestType(d.varint())
		case 3:
			ret.Reason = RefreshReason(d.varint())
		case 4:
			ret.Deadline = d.time()
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return RefreshRequest{}, fmt.Errorf("decode refresh request: %w", d.err)
	}

	return ret, nil
}

// PbDecodeTelemetry decodes a protobuf encoded telemetry record
func PbDecodeTelemetry(b []byte) (Telemetry, error) {
	var ret Telemetry
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.Time = d.time()
		case 2:
			ret.Kind = TelemetryKind(d.string())
		case 3:
			ret.Source = d.string()
		case 4:
			ret.EventType = EventType(d.varint())
		case 5:
			ret.Reason = RefreshReason(d.varint())
		case 6:
			ret.Result = d.string()
		case 7:
			ret.Severity = SeverityLevel(d.varint())
		case 8:
			ret.OpenIssues = int(d.varint())
		case 9:
			ret.DismissedIssues = int(d.varint())
		case 10:
			ret.DataChanged = d.bool()
		case 11:
			ret.Duration = time.Duration(d.varint())
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return Telemetry{}, fmt.Errorf("decode telemetry: %w", d.err)
	}

	return ret, nil
}

// PbDecodeTelemetries decodes an array of protobuf encoded telemetry records
func PbDecodeTelemetries(b []byte) (Telemetries, error) {
	var ret Telemetries
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			t, err := PbDecodeTelemetry(d.bytes())
			if err != nil {
				return nil, err
			}
			ret = append(ret, t)
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return nil, fmt.Errorf("decode telemetries: %w", d.err)
	}

	return ret, nil
}

// PbDecodeTelemetryQuery decodes a protobuf encoded telemetry query
func PbDecodeTelemetryQuery(b []byte) (TelemetryQuery, error) {
	var ret TelemetryQuery
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.Kind = TelemetryKind(d.string())
		case 2:
			ret.Since = d.time()
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return TelemetryQuery{}, fmt.Errorf("decode telemetry query: %w", d.err)
	}

	return ret, nil
}

// PbDecodeErrorDetail decodes a protobuf encoded error detail
func PbDecodeErrorDetail(b []byte) (ErrorDetail, error) {
	var ret ErrorDetail
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.Message = d.string()
		case 2:
			ret.Source = d.string()
		case 3:
			ret.RefreshID = d.string()
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return ErrorDetail{}, fmt.Errorf("decode error detail: %w", d.err)
	}

	return ret, nil
}

// PbDecodePoint decodes a protobuf encoded point
func PbDecodePoint(b []byte) (Point, error) {
	var ret Point
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			ret.Type = d.string()
		case 2:
			ret.Key = d.string()
		case 3:
			ret.Time = d.time()
		case 4:
			ret.Value = d.float()
		case 5:
			ret.Text = d.string()
		case 6:
			ret.Origin = d.string()
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return Point{}, fmt.Errorf("decode point: %w", d.err)
	}

	return ret, nil
}

// PbDecodePoints decodes protobuf encoded points
func PbDecodePoints(b []byte) (Points, error) {
	var ret Points
	d := &decoder{b: b}

	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}

		switch num {
		case 1:
			p, err := PbDecodePoint(d.bytes())
			if err != nil {
				return nil, err
			}
			ret = append(ret, p)
		default:
			d.skip(num, typ)
		}
	}

	if d.err != nil {
		return nil, fmt.Errorf("decode points: %w", d.err)
	}

	return ret, nil
}
