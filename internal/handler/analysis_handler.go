package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Takita08/Marko-Docu-Ai/internal/viewstate"
)

// AnalysisHandler serves the stateless endpoints: one request in, one
// result (or error) out, no session involved.
type AnalysisHandler struct {
	analyzer       viewstate.Adapter
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analyzer viewstate.Adapter, maxUploadBytes int64, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// tickerRequest is the JSON body for ticker submissions.
type tickerRequest struct {
	Symbol string `json:"symbol"`
}

// AnalyzeDocument analyzes one uploaded document.
// Route: POST /api/v1/documents/analyze (multipart field "file")
func (h *AnalysisHandler) AnalyzeDocument(c *gin.Context) {
	up, err := openUpload(c, h.maxUploadBytes)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	defer up.File.Close()

	data, err := io.ReadAll(up.File)
	if err != nil {
		h.logger.Warn("reading upload", zap.String("file", up.Name), zap.Error(err))
		abortWithError(c, h.logger, badRequest("could not read "+up.Name))
		return
	}

	analysis, err := h.analyzer.AnalyzeDocument(c.Request.Context(), up.Name, data, up.MIMEType)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// PredictMarket returns a grounded prediction for one ticker.
// Route: POST /api/v1/stocks/predict {"symbol": "NVDA"}
func (h *AnalysisHandler) PredictMarket(c *gin.Context) {
	var req tickerRequest
	// ShouldBindJSON decodes the body without writing a response on failure,
	// so we keep control of the error shape.
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, h.logger, badRequest("request body must be JSON like {\"symbol\": \"NVDA\"}"))
		return
	}

	prediction, err := h.analyzer.PredictMarket(c.Request.Context(), req.Symbol)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, prediction)
}
