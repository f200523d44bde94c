package runner

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/azeraturan/spiderfoot/internal/censys"
	"github.com/azeraturan/spiderfoot/internal/config"
	"github.com/azeraturan/spiderfoot/internal/logger"
	"github.com/azeraturan/spiderfoot/internal/model"
)

// Runner drives one enrichment pass at a time over the configured
// targets. Per-run state (dedup set, error latch) is rebuilt on every
// pass; only configuration and the sink are shared.
type Runner struct {
	cfg  *config.Config
	sink censys.Sink
	mu   sync.Mutex

	muCancel cancelState
}

func New(cfg *config.Config, sink censys.Sink) *Runner {
	return &Runner{cfg: cfg, sink: sink}
}

// countingSink wraps the real sink to tally findings for the summary.
type countingSink struct {
	next  censys.Sink
	count int
}

func (c *countingSink) Emit(ev *model.Event) error {
	c.count++
	return c.next.Emit(ev)
}

// runContext adapts a context.Context to what the module polls.
type runContext struct {
	ctx context.Context
}

func (r runContext) ShouldStop() bool {
	return r.ctx.Err() != nil
}

func (r runContext) Now() time.Time {
	return time.Now().UTC()
}

func (r *Runner) RunOnce() (*model.EnrichmentRun, error) {
	return r.RunOnceCtx(context.Background())
}

func (r *Runner) RunOnceCtx(ctx context.Context) (*model.EnrichmentRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets specified")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.setCancel(cancel)
	defer r.clearCancel()

	run := &model.EnrichmentRun{
		ID:           uuid.NewString(),
		Name:         r.cfg.RunName,
		StartedAt:    time.Now().UTC(),
		TargetsCount: len(r.cfg.Targets),
	}

	sink := &countingSink{next: r.sink}

	client := censys.NewClient(&http.Client{Timeout: r.cfg.FetchTimeout()}, censys.ClientOptions{
		BaseURL:   r.cfg.APIBaseURL,
		KeyID:     r.cfg.APIKeyID,
		KeySecret: r.cfg.APIKeySecret,
		UserAgent: r.cfg.UserAgent,
		Delay:     r.cfg.RequestDelay(),
	})

	mod := censys.NewModule(censys.Options{
		APIKeyID:     r.cfg.APIKeyID,
		APIKeySecret: r.cfg.APIKeySecret,
		AgeLimitDays: r.cfg.AgeLimit(),
	}, client, censys.NewRunState(), sink, runContext{ctx: ctx})

	for _, target := range r.cfg.Targets {
		if ctx.Err() != nil {
			run.Notes = "run cancelled"
			logger.Infof("run cancelled, stopping")
			break
		}
		ev := model.NewEvent(model.DetectTargetType(target), target, "target-input", nil)
		mod.HandleEvent(ev)
	}

	run.FinishedAt = time.Now().UTC()
	run.Findings = sink.count

	return run, nil
}
