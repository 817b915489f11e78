package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"AnalystDesk/internal/domain/models"
	domsvc "AnalystDesk/internal/domain/service"
	"AnalystDesk/internal/registry"
	internalrepo "AnalystDesk/internal/repository"
	"AnalystDesk/internal/service/admission"
	xlogger "AnalystDesk/pkg/logger"
)

type fakeAnalyst struct {
	id    string
	err   error
	delay time.Duration
}

func (f *fakeAnalyst) Analyze(ctx context.Context, subject string, _ *models.ContextDigest) (models.AnalystOpinion, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return models.AnalystOpinion{}, ctx.Err()
		}
	}
	if f.err != nil {
		return models.AnalystOpinion{}, f.err
	}
	return models.AnalystOpinion{
		ProviderID: f.id,
		Stance:     models.StanceBullish,
		Summary:    "looks fine",
	}, nil
}

type fakeContextProvider struct {
	digest *models.ContextDigest
	err    error
}

func (f *fakeContextProvider) Collect(context.Context, string) (*models.ContextDigest, error) {
	return f.digest, f.err
}

type fakeSynthesizer struct {
	mu       sync.Mutex
	calls    int
	opinions int
	err      error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _ string, opinions []models.AnalystOpinion, _ *models.ContextDigest) (*models.FinalDecision, error) {
	f.mu.Lock()
	f.calls++
	f.opinions = len(opinions)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &models.FinalDecision{
		CompositeScore: 72,
		Action:         models.ActionAct,
		Confidence:     models.ConfidenceMedium,
		Rationale:      "council agrees",
	}, nil
}

func (f *fakeSynthesizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type nopMetrics struct{}

func (nopMetrics) RecordRun(string)                  {}
func (nopMetrics) RecordProviderCall(string, string) {}
func (nopMetrics) RecordPhaseLatency(string, float64) {
}

// progressRecorder collects messages for assertions. Sinks are serialized by
// the orchestrator, so no extra locking is needed here.
type progressRecorder struct {
	messages []string
	disabled []string
}

func (p *progressRecorder) sinks() (ProgressSink, DisableSink) {
	return func(msg string) { p.messages = append(p.messages, msg) },
		func(id string) { p.disabled = append(p.disabled, id) }
}

func (p *progressRecorder) contains(substr string) bool {
	for _, m := range p.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func entryFor(a *fakeAnalyst, mandatory bool) registry.Entry {
	return registry.Entry{
		ID:          a.id,
		DisplayName: titleCase(a.id) + " Desk",
		Category:    models.CategoryFundamental,
		Mandatory:   mandatory,
		Configured:  true,
		Build:       func(string) domsvc.AnalystProvider { return a },
	}
}

func allEnabled(entries []registry.Entry) map[string]registry.ProviderSettings {
	settings := make(map[string]registry.ProviderSettings, len(entries))
	for _, e := range entries {
		settings[e.ID] = registry.ProviderSettings{Enabled: true}
	}
	return settings
}

func newTestOrchestrator(
	t *testing.T,
	entries []registry.Entry,
	limits map[string]admission.Limit,
	ctxProv domsvc.ContextProvider,
	synth domsvc.SynthesisProvider,
) (*CouncilOrchestrator, *admission.Controller) {
	t.Helper()
	adm := admission.New(internalrepo.NewMemoryRateLimitStore(), limits)
	orch := NewCouncilOrchestrator(
		testLogger(t),
		registry.New(entries),
		adm,
		ctxProv,
		synth,
		nopMetrics{},
		nil,
		5*time.Second,
		time.Second,
	)
	return orch, adm
}

func TestRunProducesReportInRegistryOrder(t *testing.T) {
	// Reverse completion order via delays; opinion order must still follow
	// the catalog.
	a := &fakeAnalyst{id: "valuation", delay: 30 * time.Millisecond}
	b := &fakeAnalyst{id: "technical", delay: 10 * time.Millisecond}
	c := &fakeAnalyst{id: "sentiment"}
	entries := []registry.Entry{entryFor(a, true), entryFor(b, false), entryFor(c, false)}

	synth := &fakeSynthesizer{}
	orch, _ := newTestOrchestrator(t, entries, nil, &fakeContextProvider{
		digest: &models.ContextDigest{Subject: "ACME", Sentiment: "positive", Score: 0.4},
	}, synth)

	rec := &progressRecorder{}
	progress, disable := rec.sinks()
	report, err := orch.Run(context.Background(), RunRequest{
		Subject:  "ACME",
		Settings: RunSettings{Providers: allEnabled(entries)},
		Progress: progress,
		Disable:  disable,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []string{"valuation", "technical", "sentiment"}
	if len(report.Opinions) != len(want) {
		t.Fatalf("got %d opinions, want %d", len(report.Opinions), len(want))
	}
	for i, id := range want {
		if report.Opinions[i].ProviderID != id {
			t.Fatalf("opinion %d: got %s, want %s", i, report.Opinions[i].ProviderID, id)
		}
	}
	if report.Context == nil || report.Context.Subject != "ACME" {
		t.Fatalf("context digest not carried into report: %+v", report.Context)
	}
	if report.Decision == nil || report.Decision.Action != models.ActionAct {
		t.Fatalf("unexpected decision: %+v", report.Decision)
	}
	if synth.callCount() != 1 {
		t.Fatalf("synthesizer called %d times, want 1", synth.callCount())
	}
	if len(rec.messages) == 0 {
		t.Fatalf("expected progress messages")
	}
	if len(rec.disabled) != 0 {
		t.Fatalf("no provider should be disabled, got %v", rec.disabled)
	}
}

func TestRunNoProvidersConfigured(t *testing.T) {
	a := &fakeAnalyst{id: "valuation"}
	orch, _ := newTestOrchestrator(t, []registry.Entry{entryFor(a, true)}, nil, nil, &fakeSynthesizer{})

	_, err := orch.Run(context.Background(), RunRequest{
		Subject:  "ACME",
		Settings: RunSettings{Providers: nil},
	})
	if !errors.Is(err, models.ErrNoProvidersConfigured) {
		t.Fatalf("got %v, want ErrNoProvidersConfigured", err)
	}
}

func TestRunQuorumFailureSkipsSynthesis(t *testing.T) {
	a := &fakeAnalyst{id: "valuation"}
	b := &fakeAnalyst{id: "technical", err: errors.New("upstream 500")}
	entries := []registry.Entry{entryFor(a, true), entryFor(b, false)}

	synth := &fakeSynthesizer{}
	orch, _ := newTestOrchestrator(t, entries, nil, nil, synth)

	rec := &progressRecorder{}
	progress, disable := rec.sinks()
	_, err := orch.Run(context.Background(), RunRequest{
		Subject:  "ACME",
		Settings: RunSettings{Providers: allEnabled(entries)},
		Progress: progress,
		Disable:  disable,
	})

	var qe *models.QuorumError
	if !errors.As(err, &qe) {
		t.Fatalf("got %v, want QuorumError", err)
	}
	if qe.Succeeded != 1 || qe.Required != DefaultQuorum {
		t.Fatalf("unexpected quorum counts: %+v", qe)
	}
	if synth.callCount() != 0 {
		t.Fatalf("synthesizer must not run below quorum, called %d times", synth.callCount())
	}
	if !rec.contains("Technical Desk failed") {
		t.Fatalf("progress should name the failing analyst: %v", rec.messages)
	}
}

func TestRunPartialFailureIsolated(t *testing.T) {
	a := &fakeAnalyst{id: "valuation", err: errors.New("timeout")}
	b := &fakeAnalyst{id: "technical"}
	c := &fakeAnalyst{id: "sentiment"}
	entries := []registry.Entry{entryFor(a, false), entryFor(b, false), entryFor(c, false)}

	synth := &fakeSynthesizer{}
	orch, _ := newTestOrchestrator(t, entries, nil, nil, synth)

	rec := &progressRecorder{}
	progress, disable := rec.sinks()
	report, err := orch.Run(context.Background(), RunRequest{
		Subject:  "ACME",
		Settings: RunSettings{Providers: allEnabled(entries)},
		Progress: progress,
		Disable:  disable,
	})
	if err != nil {
		t.Fatalf("one failure among three must not fail the run: %v", err)
	}
	if len(report.Opinions) != 2 {
		t.Fatalf("got %d opinions, want 2", len(report.Opinions))
	}
	if synth.opinions != 2 {
		t.Fatalf("synthesizer received %d opinions, want 2", synth.opinions)
	}
	if !rec.contains("Valuation Desk failed") {
		t.Fatalf("expected failure progress for valuation: %v", rec.messages)
	}
}

func TestRunRateLimitedProviderSkippedAndDisabledOnce(t *testing.T) {
	a := &fakeAnalyst{id: "valuation"}
	b := &fakeAnalyst{id: "technical"}
	c := &fakeAnalyst{id: "sentiment"}
	entries := []registry.Entry{entryFor(a, false), entryFor(b, false), entryFor(c, false)}

	limits := map[string]admission.Limit{"valuation": {PerDay: 1}}
	synth := &fakeSynthesizer{}
	orch, adm := newTestOrchestrator(t, entries, limits, nil, synth)

	// Exhaust valuation's daily budget before the run.
	if _, err := adm.Admit(context.Background(), "valuation", time.Now()); err != nil {
		t.Fatalf("seed admit: %v", err)
	}

	rec := &progressRecorder{}
	progress, disable := rec.sinks()
	report, err := orch.Run(context.Background(), RunRequest{
		Subject:  "ACME",
		Settings: RunSettings{Providers: allEnabled(entries)},
		Progress: progress,
		Disable:  disable,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(report.Opinions) != 2 {
		t.Fatalf("got %d opinions, want 2", len(report.Opinions))
	}
	if len(rec.disabled) != 1 || rec.disabled[0] != "valuation" {
		t.Fatalf("disable sink calls %v, want exactly [valuation]", rec.disabled)
	}
	if len(report.DisabledProviders) != 1 || report.DisabledProviders[0] != "valuation" {
		t.Fatalf("report disabled list %v, want [valuation]", report.DisabledProviders)
	}
	if !rec.contains("Valuation Desk skipped") {
		t.Fatalf("expected skip progress: %v", rec.messages)
	}
}

func TestRunMandatoryProviderPolicy(t *testing.T) {
	a := &fakeAnalyst{id: "valuation", err: errors.New("down")}
	b := &fakeAnalyst{id: "technical"}
	c := &fakeAnalyst{id: "sentiment"}
	entries := []registry.Entry{entryFor(a, true), entryFor(b, false), entryFor(c, false)}

	synth := &fakeSynthesizer{}
	orch, _ := newTestOrchestrator(t, entries, nil, nil, synth)

	_, err := orch.Run(context.Background(), RunRequest{
		Subject: "ACME",
		Settings: RunSettings{
			Providers:        allEnabled(entries),
			RequireMandatory: true,
		},
	})

	var qe *models.QuorumError
	if !errors.As(err, &qe) {
		t.Fatalf("got %v, want QuorumError", err)
	}
	if qe.MandatoryMet {
		t.Fatalf("mandatory provider failed, MandatoryMet must be false")
	}
	// Count quorum alone was satisfied.
	if qe.Succeeded < qe.Required {
		t.Fatalf("count quorum should have been met: %+v", qe)
	}
	if synth.callCount() != 0 {
		t.Fatalf("synthesizer must not run when mandatory policy fails")
	}
}

func TestRunContextFailureAbsorbed(t *testing.T) {
	a := &fakeAnalyst{id: "valuation"}
	b := &fakeAnalyst{id: "technical"}
	entries := []registry.Entry{entryFor(a, false), entryFor(b, false)}

	orch, _ := newTestOrchestrator(t, entries, nil,
		&fakeContextProvider{err: errors.New("news feed unreachable")},
		&fakeSynthesizer{})

	rec := &progressRecorder{}
	progress, disable := rec.sinks()
	report, err := orch.Run(context.Background(), RunRequest{
		Subject:  "ACME",
		Settings: RunSettings{Providers: allEnabled(entries)},
		Progress: progress,
		Disable:  disable,
	})
	if err != nil {
		t.Fatalf("context failure must not fail the run: %v", err)
	}
	if report.Context != nil {
		t.Fatalf("report context should be nil after collection failure")
	}
	if !rec.contains("context collection failed") {
		t.Fatalf("expected context failure progress: %v", rec.messages)
	}
}

func TestRunWithoutContextProvider(t *testing.T) {
	a := &fakeAnalyst{id: "valuation"}
	b := &fakeAnalyst{id: "technical"}
	entries := []registry.Entry{entryFor(a, false), entryFor(b, false)}

	orch, _ := newTestOrchestrator(t, entries, nil, nil, &fakeSynthesizer{})

	report, err := orch.Run(context.Background(), RunRequest{
		Subject:  "ACME",
		Settings: RunSettings{Providers: allEnabled(entries)},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if report.Context != nil {
		t.Fatalf("report context should be nil without a provider")
	}
}

func TestRunSynthesisFailure(t *testing.T) {
	a := &fakeAnalyst{id: "valuation"}
	b := &fakeAnalyst{id: "technical"}
	entries := []registry.Entry{entryFor(a, false), entryFor(b, false)}

	cause := errors.New("model overloaded")
	orch, _ := newTestOrchestrator(t, entries, nil, nil, &fakeSynthesizer{err: cause})

	_, err := orch.Run(context.Background(), RunRequest{
		Subject:  "ACME",
		Settings: RunSettings{Providers: allEnabled(entries)},
	})

	var se *models.SynthesisError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want SynthesisError", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("synthesis error should wrap the cause")
	}
}

func TestRunCancelledContextSilencesSinks(t *testing.T) {
	a := &fakeAnalyst{id: "valuation"}
	entries := []registry.Entry{entryFor(a, false)}

	orch, _ := newTestOrchestrator(t, entries, nil, nil, &fakeSynthesizer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &progressRecorder{}
	progress, disable := rec.sinks()
	_, err := orch.Run(ctx, RunRequest{
		Subject:  "ACME",
		Settings: RunSettings{Providers: allEnabled(entries)},
		Progress: progress,
		Disable:  disable,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if len(rec.messages) != 0 {
		t.Fatalf("cancelled run emitted progress: %v", rec.messages)
	}
	if len(rec.disabled) != 0 {
		t.Fatalf("cancelled run fired disable sink: %v", rec.disabled)
	}
}

func TestQuorumErrorMessage(t *testing.T) {
	qe := &models.QuorumError{Succeeded: 1, Required: 2, MandatoryMet: true}
	if !strings.Contains(qe.Error(), "1") || !strings.Contains(qe.Error(), "2") {
		t.Fatalf("quorum error should carry counts: %s", qe.Error())
	}
}
