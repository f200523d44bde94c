package censys

import (
	"testing"
	"time"

	"github.com/azeraturan/spiderfoot/internal/model"
)

type fakeClient struct {
	lookups []string
	kinds   []QueryKind
	recs    map[string]*Record
	errs    map[string]error
}

func (f *fakeClient) Lookup(addr string, kind QueryKind) (*Record, error) {
	f.lookups = append(f.lookups, addr)
	f.kinds = append(f.kinds, kind)
	if err, ok := f.errs[addr]; ok {
		return nil, err
	}
	return f.recs[addr], nil
}

type fakeSink struct {
	events []*model.Event
}

func (f *fakeSink) Emit(ev *model.Event) error {
	f.events = append(f.events, ev)
	return nil
}

type fakeRun struct {
	now    time.Time
	stopFn func() bool
}

func (f *fakeRun) ShouldStop() bool {
	if f.stopFn == nil {
		return false
	}
	return f.stopFn()
}

func (f *fakeRun) Now() time.Time {
	if f.now.IsZero() {
		return time.Now().UTC()
	}
	return f.now
}

func testModule(fc *fakeClient, fs *fakeSink, fr *fakeRun) *Module {
	return &Module{
		opts:   Options{APIKeyID: "id", APIKeySecret: "secret", AgeLimitDays: 90},
		client: fc,
		state:  NewRunState(),
		sink:   fs,
		run:    fr,
	}
}

func asRecord(ip string) *Record {
	return &Record{
		IP: ip,
		// a missing updated_at counts as the epoch and would be
		// age-filtered, so fixtures carry a fresh timestamp
		UpdatedAt:        time.Now().UTC().Format(updatedAtLayout),
		AutonomousSystem: &AutonomousSystem{ASN: 1234, RoutedPrefix: "192.0.2.0/24"},
		raw:              []byte(`{"ip":"` + ip + `"}`),
	}
}

func TestHandleEventIdempotent(t *testing.T) {
	fc := &fakeClient{recs: map[string]*Record{"198.51.100.7": asRecord("198.51.100.7")}}
	fs := &fakeSink{}
	m := testModule(fc, fs, &fakeRun{})

	ev := model.NewEvent(model.TypeIPAddress, "198.51.100.7", "test", nil)
	m.HandleEvent(ev)
	first := len(fs.events)

	m.HandleEvent(model.NewEvent(model.TypeIPAddress, "198.51.100.7", "test", nil))

	if len(fc.lookups) != 1 {
		t.Errorf("lookups = %d, want 1", len(fc.lookups))
	}
	if len(fs.events) != first {
		t.Errorf("repeat event produced findings: %d -> %d", first, len(fs.events))
	}
}

func TestHandleEventNetblockExpansion(t *testing.T) {
	recs := map[string]*Record{}
	for _, ip := range []string{"192.0.2.0", "192.0.2.1", "192.0.2.2", "192.0.2.3"} {
		recs[ip] = asRecord(ip)
	}
	fc := &fakeClient{recs: recs}
	fs := &fakeSink{}
	m := testModule(fc, fs, &fakeRun{})

	ev := model.NewEvent(model.TypeNetblockOwner, "192.0.2.0/30", "test", nil)
	m.HandleEvent(ev)

	if len(fc.lookups) != 4 {
		t.Fatalf("lookups = %d, want 4", len(fc.lookups))
	}
	for _, k := range fc.kinds {
		if k != KindIP {
			t.Errorf("netblock addresses must use the ip endpoint, got %q", k)
		}
	}

	// each address group: a synthesized IP_ADDRESS first, parented to
	// the netblock event, then its findings parented to the synthesized
	// event, raw record first
	var current *model.Event
	for _, got := range fs.events {
		if got.Type == model.TypeIPAddress {
			if got.ParentID != ev.ID {
				t.Errorf("intermediate event parent = %q, want netblock event", got.ParentID)
			}
			if got.Module != ModuleName {
				t.Errorf("intermediate event module = %q", got.Module)
			}
			current = got
			continue
		}
		if current == nil {
			t.Fatalf("finding %s emitted before its intermediate IP_ADDRESS event", got.Type)
		}
		if got.ParentID != current.ID {
			t.Errorf("finding %s parent = %q, want %q", got.Type, got.ParentID, current.ID)
		}
	}

	// 4 addresses x (IP_ADDRESS + RAW + AS + NETBLOCK)
	if len(fs.events) != 16 {
		t.Errorf("events = %d, want 16", len(fs.events))
	}
}

func TestHandleEventOverlappingNetblocks(t *testing.T) {
	recs := map[string]*Record{}
	for _, ip := range []string{"192.0.2.0", "192.0.2.1", "192.0.2.2", "192.0.2.3"} {
		recs[ip] = asRecord(ip)
	}
	fc := &fakeClient{recs: recs}
	m := testModule(fc, &fakeSink{}, &fakeRun{})

	m.HandleEvent(model.NewEvent(model.TypeNetblockOwner, "192.0.2.0/31", "test", nil))
	m.HandleEvent(model.NewEvent(model.TypeNetblockOwner, "192.0.2.0/30", "test", nil))

	// the second block only queries the two addresses the first one missed
	if len(fc.lookups) != 4 {
		t.Errorf("lookups = %v, want each address once", fc.lookups)
	}
}

func TestHandleEventErrorLatch(t *testing.T) {
	fc := &fakeClient{errs: map[string]error{"198.51.100.7": ErrRejected}}
	fs := &fakeSink{}
	m := testModule(fc, fs, &fakeRun{})

	m.HandleEvent(model.NewEvent(model.TypeIPAddress, "198.51.100.7", "test", nil))
	if !m.state.Errored() {
		t.Fatal("rejected lookup must latch the run")
	}

	// unrelated target, same run: no further queries
	m.HandleEvent(model.NewEvent(model.TypeIPAddress, "198.51.100.8", "test", nil))
	if len(fc.lookups) != 1 {
		t.Errorf("lookups = %v, want no queries after the latch", fc.lookups)
	}
	if len(fs.events) != 0 {
		t.Errorf("events = %d, want 0", len(fs.events))
	}
}

func TestHandleEventMissingCredentials(t *testing.T) {
	fc := &fakeClient{}
	m := testModule(fc, &fakeSink{}, &fakeRun{})
	m.opts.APIKeySecret = ""

	m.HandleEvent(model.NewEvent(model.TypeIPAddress, "198.51.100.7", "test", nil))

	if !m.state.Errored() {
		t.Error("missing credentials must latch the run")
	}
	if len(fc.lookups) != 0 {
		t.Errorf("lookups = %v, want none", fc.lookups)
	}
}

func TestHandleEventAPIErrorRecords(t *testing.T) {
	tests := []struct {
		name      string
		errorType string
	}{
		{"unknown means no data", "unknown"},
		{"unexpected error type", "quota_exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{recs: map[string]*Record{
				"198.51.100.7": {ErrorType: tt.errorType},
			}}
			fs := &fakeSink{}
			m := testModule(fc, fs, &fakeRun{})

			m.HandleEvent(model.NewEvent(model.TypeIPAddress, "198.51.100.7", "test", nil))

			if len(fs.events) != 0 {
				t.Errorf("events = %d, want 0", len(fs.events))
			}
			if m.state.Errored() {
				t.Error("an error record must not latch the run")
			}
		})
	}
}

func TestHandleEventStaleRecord(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	rec := asRecord("198.51.100.7")
	rec.UpdatedAt = now.Add(-91 * 24 * time.Hour).Format(updatedAtLayout)

	fc := &fakeClient{recs: map[string]*Record{"198.51.100.7": rec}}
	fs := &fakeSink{}
	m := testModule(fc, fs, &fakeRun{now: now})

	m.HandleEvent(model.NewEvent(model.TypeIPAddress, "198.51.100.7", "test", nil))

	if len(fs.events) != 0 {
		t.Errorf("stale record produced %d findings, want 0", len(fs.events))
	}
	if m.state.Errored() {
		t.Error("stale record must not latch the run")
	}
}

func TestHandleEventHostKind(t *testing.T) {
	fc := &fakeClient{recs: map[string]*Record{"example.com": {raw: []byte(`{}`)}}}
	m := testModule(fc, &fakeSink{}, &fakeRun{})

	m.HandleEvent(model.NewEvent(model.TypeInternetName, "example.com", "test", nil))

	if len(fc.kinds) != 1 || fc.kinds[0] != KindHost {
		t.Errorf("kinds = %v, want [host]", fc.kinds)
	}
}

func TestHandleEventInvalidNetblock(t *testing.T) {
	fc := &fakeClient{}
	m := testModule(fc, &fakeSink{}, &fakeRun{})

	m.HandleEvent(model.NewEvent(model.TypeNetblockOwner, "not-a-block", "test", nil))

	if len(fc.lookups) != 0 {
		t.Errorf("lookups = %v, want none", fc.lookups)
	}
	if m.state.Errored() {
		t.Error("a bad netblock is non-fatal to the run")
	}
}

func TestHandleEventCancellation(t *testing.T) {
	recs := map[string]*Record{}
	for _, ip := range []string{"192.0.2.0", "192.0.2.1", "192.0.2.2", "192.0.2.3"} {
		recs[ip] = asRecord(ip)
	}
	fc := &fakeClient{recs: recs}

	// stop after two queries have gone out
	fr := &fakeRun{stopFn: func() bool { return len(fc.lookups) >= 2 }}
	m := testModule(fc, &fakeSink{}, fr)

	m.HandleEvent(model.NewEvent(model.TypeNetblockOwner, "192.0.2.0/30", "test", nil))

	if len(fc.lookups) != 2 {
		t.Errorf("lookups = %v, want the expansion aborted after 2", fc.lookups)
	}
}
