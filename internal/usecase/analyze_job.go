package usecase

import (
	"context"
	"fmt"

	xlogger "AnalystDesk/pkg/logger"
	"AnalystDesk/pkg/queue"
)

// AnalyzeJobType is the queue message type for asynchronous analysis runs.
const AnalyzeJobType = "analysis.run"

// AnalyzePayload is the queued request for one asynchronous run.
type AnalyzePayload struct {
	JobID   string `json:"job_id"`
	Subject string `json:"subject"`
}

// AnalyzeJob drains queued analysis requests through the orchestrator.
// Progress goes to the structured log; disable instructions and the final
// report reach callers through the decision event stream.
type AnalyzeJob struct {
	logger   *xlogger.Logger
	orch     *CouncilOrchestrator
	settings RunSettings
}

func NewAnalyzeJob(logger *xlogger.Logger, orch *CouncilOrchestrator, settings RunSettings) *AnalyzeJob {
	return &AnalyzeJob{logger: logger, orch: orch, settings: settings}
}

func (j *AnalyzeJob) Name() string { return "analyze-subject" }

func (j *AnalyzeJob) Type() string { return AnalyzeJobType }

func (j *AnalyzeJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[AnalyzePayload](payload)
	if err != nil {
		return fmt.Errorf("parse analyze payload: %w", err)
	}
	if p.Subject == "" {
		return fmt.Errorf("analyze payload missing subject")
	}

	report, err := j.orch.Run(ctx, RunRequest{
		Subject:  p.Subject,
		Settings: j.settings,
		Progress: func(msg string) {
			j.logger.Info("analysis progress",
				xlogger.String("job_id", p.JobID),
				xlogger.String("subject", p.Subject),
				xlogger.String("message", msg))
		},
		Disable: func(providerID string) {
			j.logger.Warn("provider disable requested",
				xlogger.String("job_id", p.JobID),
				xlogger.String("provider", providerID))
		},
	})
	if err != nil {
		return fmt.Errorf("analysis run for %s: %w", p.Subject, err)
	}

	j.logger.Info("analysis job complete",
		xlogger.String("job_id", p.JobID),
		xlogger.String("subject", p.Subject),
		xlogger.String("action", string(report.Decision.Action)),
		xlogger.Int("opinions", len(report.Opinions)))
	return nil
}
