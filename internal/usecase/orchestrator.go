package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"AnalystDesk/internal/domain/models"
	domrepo "AnalystDesk/internal/domain/repository"
	domsvc "AnalystDesk/internal/domain/service"
	"AnalystDesk/internal/registry"
	"AnalystDesk/internal/service/admission"
	xlogger "AnalystDesk/pkg/logger"
)

// DefaultQuorum is the minimum number of successful opinions required before
// synthesis may run, when the caller does not override it.
const DefaultQuorum = 2

// ProgressSink receives ordered, human-readable progress messages during a
// run. It may be called from multiple goroutines; the orchestrator serializes
// emission internally.
type ProgressSink func(message string)

// DisableSink instructs the caller to persist that a provider should be
// excluded from future settings. Called at most once per provider per run.
type DisableSink func(providerID string)

// RunSettings selects the provider set and quorum policy for one run.
type RunSettings struct {
	Providers        map[string]registry.ProviderSettings
	Quorum           int
	RequireMandatory bool
}

// RunRequest is the transient per-invocation state. It lives for the
// duration of one orchestration call and is discarded after.
type RunRequest struct {
	Subject  string
	Settings RunSettings
	Progress ProgressSink
	Disable  DisableSink
}

// CouncilOrchestrator drives the three-stage analysis pipeline: best-effort
// context collection, admission-gated concurrent fan-out over all enabled
// analysts, and a single synthesis call over the surviving opinions.
//
// One Run completes (success or failure) per invocation; runs for different
// subjects may overlap, sharing only the admission controller's persisted
// records.
type CouncilOrchestrator struct {
	logger      *xlogger.Logger
	registry    *registry.Registry
	admission   *admission.Controller
	contextProv domsvc.ContextProvider
	synth       domsvc.SynthesisProvider
	metrics     domrepo.Metrics
	publisher   domrepo.DecisionPublisher

	callTimeout    time.Duration
	contextTimeout time.Duration
}

// NewCouncilOrchestrator creates an orchestrator. contextProv and publisher
// may be nil; the context phase then reports absence and eventing is off.
func NewCouncilOrchestrator(
	logger *xlogger.Logger,
	reg *registry.Registry,
	adm *admission.Controller,
	contextProv domsvc.ContextProvider,
	synth domsvc.SynthesisProvider,
	metrics domrepo.Metrics,
	publisher domrepo.DecisionPublisher,
	callTimeout, contextTimeout time.Duration,
) *CouncilOrchestrator {
	if callTimeout <= 0 {
		callTimeout = 45 * time.Second
	}
	if contextTimeout <= 0 {
		contextTimeout = 15 * time.Second
	}
	return &CouncilOrchestrator{
		logger:         logger,
		registry:       reg,
		admission:      adm,
		contextProv:    contextProv,
		synth:          synth,
		metrics:        metrics,
		publisher:      publisher,
		callTimeout:    callTimeout,
		contextTimeout: contextTimeout,
	}
}

// Run executes one orchestration. Only three error kinds propagate:
// ErrNoProvidersConfigured, *QuorumError, and *SynthesisError. Everything
// else is absorbed into progress messages. A cancelled context makes the
// remainder of the run a no-op.
func (o *CouncilOrchestrator) Run(ctx context.Context, req RunRequest) (*models.CollaborativeReport, error) {
	rep := newRunReporter(ctx, req.Progress, req.Disable)

	quorum := req.Settings.Quorum
	if quorum <= 0 {
		quorum = DefaultQuorum
	}

	providers := o.registry.Resolve(req.Settings.Providers)
	if len(providers) == 0 {
		o.metrics.RecordRun("config_error")
		return nil, models.ErrNoProvidersConfigured
	}

	rep.Progress("collecting market context for %s", req.Subject)
	digest := o.collectContext(ctx, rep, req.Subject)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep.Progress("consulting %d analysts on %s", len(providers), req.Subject)
	start := time.Now()
	res := o.invokeAll(ctx, rep, providers, req.Subject, digest)
	o.metrics.RecordPhaseLatency("fanout", time.Since(start).Seconds())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep.Progress("quorum check: %d of %d analysts responded", len(res.opinions), len(providers))
	mandatoryMet := !req.Settings.RequireMandatory || res.mandatorySucceeded
	if len(res.opinions) < quorum || !mandatoryMet {
		o.metrics.RecordRun("quorum_failed")
		return nil, &models.QuorumError{
			Succeeded:    len(res.opinions),
			Required:     quorum,
			MandatoryMet: mandatoryMet,
		}
	}

	rep.Progress("synthesizing %d opinions into a decision", len(res.opinions))
	synthCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	start = time.Now()
	decision, err := o.synth.Synthesize(synthCtx, req.Subject, res.opinions, digest)
	o.metrics.RecordPhaseLatency("synthesis", time.Since(start).Seconds())
	if err != nil {
		o.metrics.RecordRun("synthesis_failed")
		return nil, &models.SynthesisError{Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &models.CollaborativeReport{
		Subject:           req.Subject,
		Decision:          decision,
		Opinions:          res.opinions,
		Context:           digest,
		DisabledProviders: res.disabled,
		GeneratedAt:       time.Now(),
	}

	rep.Progress("analysis complete: %s (%s confidence)", decision.Action, decision.Confidence)
	o.metrics.RecordRun("ok")
	o.publishEvents(ctx, report)
	return report, nil
}

// collectContext runs the best-effort context phase. Any failure is reported
// as progress and absorbed; the pipeline proceeds with no context.
func (o *CouncilOrchestrator) collectContext(ctx context.Context, rep *runReporter, subject string) *models.ContextDigest {
	if o.contextProv == nil {
		rep.Progress("no context provider configured, proceeding without context")
		return nil
	}

	cctx, cancel := context.WithTimeout(ctx, o.contextTimeout)
	defer cancel()

	start := time.Now()
	digest, err := o.contextProv.Collect(cctx, subject)
	o.metrics.RecordPhaseLatency("context", time.Since(start).Seconds())
	if err != nil {
		rep.Progress("context collection failed, proceeding without it: %v", err)
		o.logger.Warn("context collection failed",
			xlogger.String("subject", subject),
			xlogger.Error(err))
		return nil
	}
	return digest
}

// publishEvents emits the report and any disable events downstream.
// Best-effort: publish failures are logged, never surfaced to the caller.
func (o *CouncilOrchestrator) publishEvents(ctx context.Context, report *models.CollaborativeReport) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.PublishReport(ctx, report); err != nil {
		o.logger.Warn("report publish failed",
			xlogger.String("subject", report.Subject),
			xlogger.Error(err))
	}
	for _, id := range report.DisabledProviders {
		if err := o.publisher.PublishProviderDisabled(ctx, id); err != nil {
			o.logger.Warn("disable event publish failed",
				xlogger.String("provider", id),
				xlogger.Error(err))
		}
	}
}

// runReporter serializes sink emission across fan-out goroutines and makes a
// cancelled run's reporting a no-op. Both sinks are optional.
type runReporter struct {
	ctx      context.Context
	mu       sync.Mutex
	progress ProgressSink
	disable  DisableSink
	disabled map[string]bool
}

func newRunReporter(ctx context.Context, progress ProgressSink, disable DisableSink) *runReporter {
	return &runReporter{
		ctx:      ctx,
		progress: progress,
		disable:  disable,
		disabled: make(map[string]bool),
	}
}

func (r *runReporter) Progress(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil || r.progress == nil {
		return
	}
	r.progress(fmt.Sprintf(format, args...))
}

// DisableOnce fires the disable sink at most once per provider per run.
func (r *runReporter) DisableOnce(providerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil || r.disabled[providerID] {
		return
	}
	r.disabled[providerID] = true
	if r.disable != nil {
		r.disable(providerID)
	}
}
