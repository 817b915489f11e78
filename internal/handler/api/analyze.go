package api

import (
	"errors"
	"net/http"

	"AnalystDesk/internal/domain/models"
	"AnalystDesk/internal/registry"
	"AnalystDesk/internal/usecase"
	xhttp "AnalystDesk/pkg/http"
	xlogger "AnalystDesk/pkg/logger"
	"AnalystDesk/pkg/queue"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AnalyzeRequest is the caller's analysis request. Providers and quorum
// fields override the configured defaults when present.
type AnalyzeRequest struct {
	Subject          string                               `json:"subject" validate:"required,min=1,max=16"`
	Providers        map[string]registry.ProviderSettings `json:"providers,omitempty"`
	Quorum           int                                  `json:"quorum,omitempty" validate:"omitempty,gte=1,lte=10"`
	RequireMandatory *bool                                `json:"require_mandatory,omitempty"`
}

// AnalyzeResponse pairs the report with the run's progress log.
type AnalyzeResponse struct {
	Report   *models.CollaborativeReport `json:"report"`
	Progress []string                    `json:"progress"`
}

// AnalysisHandler exposes the orchestrator over HTTP.
type AnalysisHandler struct {
	logger   *xlogger.Logger
	orch     *usecase.CouncilOrchestrator
	reg      *registry.Registry
	queue    queue.QueueService // nil when async is disabled
	defaults usecase.RunSettings
}

func NewAnalysisHandler(
	logger *xlogger.Logger,
	orch *usecase.CouncilOrchestrator,
	reg *registry.Registry,
	q queue.QueueService,
	defaults usecase.RunSettings,
) *AnalysisHandler {
	return &AnalysisHandler{logger: logger, orch: orch, reg: reg, queue: q, defaults: defaults}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.GET("/analyze/live", h.AnalyzeLive)
	g.POST("/analyze/async", h.AnalyzeAsync)
	g.GET("/providers", h.Providers)
	e.GET("/healthz", h.Health)
}

// Analyze runs one synchronous orchestration and returns the report together
// with the accumulated progress log.
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	req := &AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var progress []string
	var disabled []string
	report, err := h.orch.Run(c.Request().Context(), usecase.RunRequest{
		Subject:  req.Subject,
		Settings: h.settingsFor(req),
		Progress: func(msg string) { progress = append(progress, msg) },
		Disable:  func(providerID string) { disabled = append(disabled, providerID) },
	})
	if err != nil {
		h.logger.Error("analysis run failed",
			xlogger.String("subject", req.Subject),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, runError(err))
	}

	if len(disabled) > 0 {
		h.logger.Warn("providers flagged for disabling",
			xlogger.String("subject", req.Subject),
			xlogger.Strings("providers", disabled))
	}
	return xhttp.SuccessResponse(c, AnalyzeResponse{Report: report, Progress: progress})
}

// AnalyzeAsync enqueues a run and returns a job id immediately.
func (h *AnalysisHandler) AnalyzeAsync(c echo.Context) error {
	if h.queue == nil {
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_ASYNC_DISABLED", "asynchronous analysis is not enabled", http.StatusServiceUnavailable))
	}

	req := &AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	jobID := uuid.NewString()
	payload := usecase.AnalyzePayload{JobID: jobID, Subject: req.Subject}
	if err := h.queue.PublishMessage(c.Request().Context(), usecase.AnalyzeJobType, payload); err != nil {
		h.logger.Error("enqueue analysis failed",
			xlogger.String("subject", req.Subject),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not enqueue analysis").WithError(err))
	}

	return xhttp.AcceptedResponse(c, map[string]string{"job_id": jobID, "subject": req.Subject})
}

// Providers lists the full catalog in declaration order.
func (h *AnalysisHandler) Providers(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.reg.Descriptors())
}

func (h *AnalysisHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *AnalysisHandler) settingsFor(req *AnalyzeRequest) usecase.RunSettings {
	s := h.defaults
	if req.Providers != nil {
		s.Providers = req.Providers
	}
	if req.Quorum > 0 {
		s.Quorum = req.Quorum
	}
	if req.RequireMandatory != nil {
		s.RequireMandatory = *req.RequireMandatory
	}
	return s
}

// runError maps orchestration failures to HTTP application errors. Only the
// three fatal error kinds ever reach here.
func runError(err error) error {
	var quorumErr *models.QuorumError
	var synthErr *models.SynthesisError
	switch {
	case errors.Is(err, models.ErrNoProvidersConfigured):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.As(err, &quorumErr):
		return xhttp.UnprocessableError(err.Error()).WithError(err)
	case errors.As(err, &synthErr):
		return xhttp.UpstreamError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}
