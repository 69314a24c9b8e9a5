package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Takita08/Marko-Docu-Ai/internal/session"
	"github.com/Takita08/Marko-Docu-Ai/internal/viewstate"
)

// SessionHandler exposes one view-state controller per session. Every
// endpoint answers with the session's full view so clients can render it
// without keeping state of their own.
type SessionHandler struct {
	sessions       *session.Store
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *session.Store, maxUploadBytes int64, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:       sessions,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type sessionResponse struct {
	ID    string         `json:"id"`
	State viewstate.View `json:"state"`
}

func (h *SessionHandler) respond(c *gin.Context, status int, id string, s viewstate.State) {
	c.JSON(status, sessionResponse{ID: id, State: s.View()})
}

// controller resolves :id or writes a 404.
func (h *SessionHandler) controller(c *gin.Context) (string, *viewstate.Controller, bool) {
	id := c.Param("id")
	ctrl, err := h.sessions.Get(id)
	if err != nil {
		abortWithError(c, h.logger, err)
		return "", nil, false
	}
	return id, ctrl, true
}

// Create starts a new idle session. The body is optional.
// Route: POST /api/v1/sessions {"mode": "stock"}
func (h *SessionHandler) Create(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, h.logger, badRequest("request body must be JSON like {\"mode\": \"doc\"}"))
		return
	}

	mode := viewstate.ModeDoc
	if req.Mode != "" {
		m, err := viewstate.ParseMode(req.Mode)
		if err != nil {
			abortWithError(c, h.logger, badRequest(err.Error()))
			return
		}
		mode = m
	}

	id, ctrl := h.sessions.Create(mode)
	h.logger.Info("session created", zap.String("session_id", id), zap.String("mode", string(mode)))
	h.respond(c, http.StatusCreated, id, ctrl.State())
}

// Get returns the current view.
// Route: GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id, ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	h.respond(c, http.StatusOK, id, ctrl.State())
}

// SubmitDocument runs the document pipeline for the session. An adapter
// failure is part of the view (phase "failed"), so it still answers 200.
// Route: POST /api/v1/sessions/:id/document (multipart field "file")
func (h *SessionHandler) SubmitDocument(c *gin.Context) {
	id, ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	up, err := openUpload(c, h.maxUploadBytes)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	defer up.File.Close()

	s, err := ctrl.SubmitDocument(c.Request.Context(), up.Name, up.File, up.MIMEType)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, id, s)
}

// SubmitTicker runs the market pipeline for the session.
// Route: POST /api/v1/sessions/:id/ticker {"symbol": "NVDA"}
func (h *SessionHandler) SubmitTicker(c *gin.Context) {
	id, ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req tickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, h.logger, badRequest("request body must be JSON like {\"symbol\": \"NVDA\"}"))
		return
	}

	s, err := ctrl.SubmitTicker(c.Request.Context(), req.Symbol)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, id, s)
}

// Reset clears the result and error; the mode is kept.
// Route: POST /api/v1/sessions/:id/reset
func (h *SessionHandler) Reset(c *gin.Context) {
	id, ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	s, err := ctrl.Reset()
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, id, s)
}

// SwitchMode resets the session into another mode.
// Route: POST /api/v1/sessions/:id/mode {"mode": "stock"}
func (h *SessionHandler) SwitchMode(c *gin.Context) {
	id, ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, h.logger, badRequest("request body must be JSON like {\"mode\": \"stock\"}"))
		return
	}
	mode, err := viewstate.ParseMode(req.Mode)
	if err != nil {
		abortWithError(c, h.logger, badRequest(err.Error()))
		return
	}

	s, err := ctrl.SwitchMode(mode)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, id, s)
}

// Delete drops the session.
// Route: DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
