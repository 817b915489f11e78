package api

import (
	"net/http"
	"sync"

	"AnalystDesk/internal/domain/models"
	"AnalystDesk/internal/usecase"
	xhttp "AnalystDesk/pkg/http"
	xlogger "AnalystDesk/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard frontend is served from a different origin in dev.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveFrame is one streamed event on the live analysis socket.
type liveFrame struct {
	Type       string                      `json:"type"` // progress | disable_provider | report | error
	Message    string                      `json:"message,omitempty"`
	ProviderID string                      `json:"provider_id,omitempty"`
	Report     *models.CollaborativeReport `json:"report,omitempty"`
}

// AnalyzeLive streams progress frames over a WebSocket while the run is in
// flight, then the final report or a terminal error frame.
func (h *AnalysisHandler) AnalyzeLive(c echo.Context) error {
	subject := c.QueryParam("subject")
	if subject == "" {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code: "ERR_REQUIRED", Field: "subject", Message: "subject query parameter is required",
		}})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// gorilla connections support one concurrent writer only.
	var wmu sync.Mutex
	send := func(f liveFrame) {
		wmu.Lock()
		defer wmu.Unlock()
		if err := conn.WriteJSON(f); err != nil {
			h.logger.Warn("live frame write failed",
				xlogger.String("subject", subject),
				xlogger.Error(err))
		}
	}

	report, err := h.orch.Run(c.Request().Context(), usecase.RunRequest{
		Subject:  subject,
		Settings: h.defaults,
		Progress: func(msg string) { send(liveFrame{Type: "progress", Message: msg}) },
		Disable:  func(providerID string) { send(liveFrame{Type: "disable_provider", ProviderID: providerID}) },
	})
	if err != nil {
		send(liveFrame{Type: "error", Message: runError(err).Error()})
		return nil
	}

	send(liveFrame{Type: "report", Report: report})
	return nil
}
