package censys

import (
	"errors"
	"time"

	"github.com/azeraturan/spiderfoot/internal/logger"
	"github.com/azeraturan/spiderfoot/internal/model"
)

const ModuleName = "censys"

// Sink receives every event the module produces.
type Sink interface {
	Emit(ev *model.Event) error
}

// RunContext is the slice of the host run the module needs: a
// cooperative stop signal polled between addresses, and the clock.
type RunContext interface {
	ShouldStop() bool
	Now() time.Time
}

type lookupClient interface {
	Lookup(addr string, kind QueryKind) (*Record, error)
}

// Options are the recognized module options.
type Options struct {
	APIKeyID     string
	APIKeySecret string
	AgeLimitDays int // 0 disables the age filter
}

// Module enriches IP_ADDRESS, INTERNET_NAME and NETBLOCK_OWNER events
// with Censys data. One Module serves exactly one run and owns that
// run's RunState.
type Module struct {
	opts   Options
	client lookupClient
	state  *RunState
	sink   Sink
	run    RunContext
}

func NewModule(opts Options, client *Client, state *RunState, sink Sink, run RunContext) *Module {
	return &Module{opts: opts, client: client, state: state, sink: sink, run: run}
}

// WatchedEvents lists the input event types the module consumes.
func WatchedEvents() []string {
	return []string{model.TypeIPAddress, model.TypeInternetName, model.TypeNetblockOwner}
}

// ProducedEvents lists the event types the module can emit.
func ProducedEvents() []string {
	return []string{
		model.TypeBGPASMember, model.TypeTCPPortOpen, model.TypeOperatingSystem,
		model.TypeWebserverHTTPHeaders, model.TypeNetblockMember, model.TypeGeoInfo,
		model.TypeRawRIRData,
	}
}

// HandleEvent runs one input event through the pipeline. It never
// returns an error: every failure mode is either latched on the run
// state or logged and skipped.
func (m *Module) HandleEvent(ev *model.Event) {
	if m.state.Errored() {
		return
	}

	logger.Debugf("received event %s from %s", ev.Type, ev.Module)

	if m.opts.APIKeyID == "" || m.opts.APIKeySecret == "" {
		logger.Errorf("censys module enabled but api_key_id/api_key_secret not set")
		m.state.SetErrored()
		return
	}

	if !m.state.Once(ev.Data) {
		logger.Debugf("skipping %s, already checked", ev.Data)
		return
	}

	addrs := []string{ev.Data}
	expanded := false
	if ev.Type == model.TypeNetblockOwner {
		var err error
		addrs, err = ExpandNetblock(ev.Data)
		if err != nil {
			logger.Errorf("skipping target %s: %v", ev.Data, err)
			return
		}
		expanded = true
	}

	kind := KindHost
	if ev.Type == model.TypeIPAddress || ev.Type == model.TypeNetblockOwner {
		kind = KindIP
	}

	for _, addr := range addrs {
		if m.run.ShouldStop() {
			return
		}

		// an address reached through two owner blocks is queried once
		if expanded && !m.state.Once(addr) {
			logger.Debugf("skipping %s, already checked", addr)
			continue
		}

		rec, err := m.client.Lookup(addr, kind)
		if errors.Is(err, ErrRejected) {
			logger.Errorf("Censys API key rejected or usage limit exceeded, disabling for the rest of the run")
			m.state.SetErrored()
			return
		}
		if err != nil {
			logger.Errorf("lookup for %s failed: %v", addr, err)
			continue
		}
		if rec == nil {
			continue
		}

		if rec.ErrorType != "" || rec.Err != "" {
			if rec.ErrorType == "unknown" {
				logger.Debugf("Censys returned no data for %s", addr)
			} else {
				logger.Errorf("Censys returned an unexpected error: %s", rec.ErrorType)
			}
			continue
		}

		logger.Debugf("found results in Censys for %s", addr)

		// For netblocks, synthesize the per-address event first so
		// downstream consumers see a meaningful per-address chain.
		parent := ev
		if ev.Type == model.TypeNetblockOwner {
			parent = model.NewEvent(model.TypeIPAddress, addr, ModuleName, ev)
			m.emit(parent)
		}

		stale, err := Stale(rec, m.opts.AgeLimitDays, m.run.Now())
		if err != nil {
			logger.Errorf("error processing record for %s: %v", ev.Data, err)
			continue
		}
		if stale {
			logger.Debugf("record for %s found but too old, skipping", addr)
			continue
		}

		findings, errs := Classify(rec, addr)
		for _, cerr := range errs {
			logger.Errorf("error processing record for %s: %v", ev.Data, cerr)
		}
		for _, f := range findings {
			out := model.NewEvent(f.Type, f.Data, ModuleName, parent)
			out.ActualSource = f.ActualSource
			m.emit(out)
		}
	}
}

func (m *Module) emit(ev *model.Event) {
	if err := m.sink.Emit(ev); err != nil {
		logger.Errorf("emit %s failed: %v", ev.Type, err)
	}
}
