package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-api-probe/internal/config"
	"github.com/samvad-hq/samvad-api-probe/internal/domain"
	"github.com/samvad-hq/samvad-api-probe/internal/logger"
	"github.com/samvad-hq/samvad-api-probe/internal/probe"
	"github.com/samvad-hq/samvad-api-probe/internal/storage"
	"github.com/samvad-hq/samvad-api-probe/pkg/httpclient"
	"github.com/samvad-hq/samvad-api-probe/pkg/publishers"
)

const publishTimeout = 10 * time.Second

// Runner represents the probe runtime. It issues one request, logs the
// outcome, and then records and reports it through the optional history
// store and publishers.
type Runner struct {
	cfg    *config.Config
	prober *probe.Prober
	fanout *publishers.Fanout
	store  storage.Store
	log    logger.Logger
}

// NewRunner builds a probe runtime from config.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	return newRunner(ctx, cfg, log, httpclient.NewRestyClient(cfg.RequestTimeout))
}

func newRunner(ctx context.Context, cfg *config.Config, log logger.Logger, client httpclient.Client) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		OutcomeTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"outcome_ttl_seconds":      int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	req := domain.NewRequest(cfg.ProbeURL, cfg.ProbeHeaders)
	return &Runner{
		cfg:    cfg,
		prober: probe.New(client, req),
		fanout: fanout,
		store:  store,
		log:    log,
	}, nil
}

// buildFanout loads the publishers file; no file means no publishers.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run performs the probe once. Probe failures are logged, not returned, so the
// exit status never depends on the failure kind.
func (r *Runner) Run(ctx context.Context) error {
	if r == nil || r.prober == nil {
		return fmt.Errorf("runner is not initialized")
	}
	defer r.close()

	req := r.prober.Request()
	r.log.InfoObj("api probe starting", "probe_request", map[string]any{
		"method":  req.Method,
		"url":     req.URL,
		"timeout": r.cfg.RequestTimeout.String(),
	})

	start := time.Now()
	res, err := r.prober.Run(ctx, probe.NewLogHandler(r.log))
	out := probe.NewOutcome(req, res, err)
	if out.Elapsed == 0 {
		out.Elapsed = time.Since(start)
	}

	r.report(ctx, out)
	return nil
}

// report records and publishes the outcome. Failures here never change it.
func (r *Runner) report(ctx context.Context, out domain.Outcome) {
	r.compareWithPrevious(out)
	if err := r.store.Record(out); err != nil {
		r.log.WarnObj("probe history record failed", "error", err)
	}

	if r.fanout.Size() == 0 {
		return
	}
	// An interrupted probe still gets reported.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	delivered, err := r.fanout.Publish(pubCtx, publishers.NewEvent(r.cfg.AppName, out))
	if err != nil {
		r.log.WarnObj("probe outcome publish failed", "publish_error", map[string]any{
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	r.log.DebugObj("probe outcome published", "delivered", delivered)
}

// compareWithPrevious flags a flip between success and failure since the last recorded run.
func (r *Runner) compareWithPrevious(out domain.Outcome) {
	prev, err := r.store.Recent(1)
	if err != nil {
		r.log.WarnObj("probe history lookup failed", "error", err)
		return
	}
	if len(prev) == 0 || prev[0].Success == out.Success {
		return
	}
	r.log.WarnObj("probe state changed since last run", "probe_transition", map[string]any{
		"previous_success": prev[0].Success,
		"previous_at":      prev[0].CompletedAt,
		"current_success":  out.Success,
		"current_kind":     out.Kind,
	})
}

// close releases the store and publishers, logging any errors encountered.
func (r *Runner) close() {
	if err := errors.Join(r.store.Close(), r.fanout.Close()); err != nil {
		r.log.ErrorObj("runner close failed", "error", err)
	}
}
