package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
	"github.com/Takita08/Marko-Docu-Ai/internal/storage"
)

const (
	defaultRecentCalls = 20
	maxRecentCalls     = 200
)

// UsageHandler reports what the AI call ledger has recorded.
type UsageHandler struct {
	calls  storage.CallRepository
	logger *zap.Logger
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(calls storage.CallRepository, logger *zap.Logger) *UsageHandler {
	return &UsageHandler{
		calls:  calls,
		logger: logger,
	}
}

// Usage returns call counts per kind and failures, plus the latest calls.
// Route: GET /api/v1/usage?recent=20
func (h *UsageHandler) Usage(c *gin.Context) {
	ctx := c.Request.Context()

	limit := defaultRecentCalls
	if raw := c.Query("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxRecentCalls {
			abortWithError(c, h.logger, badRequest("recent must be a number between 0 and 200"))
			return
		}
		limit = n
	}

	usage, err := h.calls.Usage(ctx)
	if err != nil {
		h.logger.Error("aggregating usage", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	recent, err := h.calls.ListRecent(ctx, limit)
	if err != nil {
		h.logger.Error("listing recent calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if recent == nil {
		recent = []model.AnalysisCall{}
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     usage.Total,
		"documents": usage.Documents,
		"markets":   usage.Markets,
		"failed":    usage.Failed,
		"recent":    recent,
	})
}
