package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"AnalystDesk/internal/domain/models"
	"AnalystDesk/internal/registry"
	xlogger "AnalystDesk/pkg/logger"
)

// outcome is one provider's settled fan-out result. Every provider gets a
// preallocated slot indexed by registry order, so classification after the
// join is a deterministic scan.
type outcome struct {
	opinion models.AnalystOpinion
	err     error
	skipped bool
	reason  string
}

type fanoutResult struct {
	opinions           []models.AnalystOpinion
	disabled           []string
	mandatorySucceeded bool
}

// invokeAll gates every provider through admission, dispatches all admitted
// calls concurrently, and waits for every one to settle. One provider's
// latency or failure never delays or cancels another's; there is no
// short-circuit on first failure.
func (o *CouncilOrchestrator) invokeAll(
	ctx context.Context,
	rep *runReporter,
	providers []registry.ResolvedProvider,
	subject string,
	digest *models.ContextDigest,
) fanoutResult {
	slots := make([]outcome, len(providers))
	var wg sync.WaitGroup
	now := time.Now()

	// All dispatches are issued before any is awaited. Admission checks run
	// synchronously here so the check-and-record pair for each provider
	// happens immediately before its dispatch.
	for i, p := range providers {
		id := p.Descriptor.ID

		d, err := o.admission.Admit(ctx, id, now)
		if err != nil {
			slots[i] = outcome{err: fmt.Errorf("admission check: %w", err)}
			continue
		}
		if !d.Allowed {
			slots[i] = outcome{skipped: true, reason: d.Reason}
			continue
		}

		wg.Add(1)
		go func(i int, p registry.ResolvedProvider) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
			defer cancel()

			op, err := p.Handle.Analyze(callCtx, subject, digest)
			if err != nil {
				slots[i] = outcome{err: err}
				return
			}
			slots[i] = outcome{opinion: op}
		}(i, p)
	}

	wg.Wait()

	// Classify in registry order so progress messages and the opinion list
	// are reproducible regardless of completion order.
	var res fanoutResult
	for i, p := range providers {
		id := p.Descriptor.ID
		s := slots[i]
		switch {
		case s.skipped:
			o.metrics.RecordProviderCall(id, "skipped")
			rep.Progress("%s skipped: %s", p.Descriptor.DisplayName, s.reason)
			rep.DisableOnce(id)
			res.disabled = append(res.disabled, id)
		case s.err != nil:
			o.metrics.RecordProviderCall(id, "failed")
			rep.Progress("%s failed: %v", p.Descriptor.DisplayName, s.err)
			o.logger.Warn("analyst call failed",
				xlogger.String("provider", id),
				xlogger.String("subject", subject),
				xlogger.Error(s.err))
		default:
			o.metrics.RecordProviderCall(id, "ok")
			rep.Progress("%s responded with a %s stance", p.Descriptor.DisplayName, s.opinion.Stance)
			res.opinions = append(res.opinions, s.opinion)
			if p.Mandatory {
				res.mandatorySucceeded = true
			}
		}
	}
	return res
}
