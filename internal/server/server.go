// Package server exposes the quota operations over HTTP using gin.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/hongyanca/coding-plan-quota-query/internal/errs"
	"github.com/hongyanca/coding-plan-quota-query/internal/models"
	"github.com/hongyanca/coding-plan-quota-query/internal/quota"
)

// QuotaService is the subset of *quota.Service the handlers call.
type QuotaService interface {
	AllQuota(ctx context.Context) (models.QuotaView, error)
	FamilyQuota(ctx context.Context, f models.Family) (models.QuotaView, error)
	Overview(ctx context.Context) (string, error)
	StatusLine(ctx context.Context) (string, error)
	GlmQuota(ctx context.Context) (models.QuotaView, error)
	GlmUsage(ctx context.Context, kind quota.UsageKind) (json.RawMessage, error)
}

// endpointIndex describes every route for the index handler.
var endpointIndex = map[string]string{
	"/quota":                 "This endpoint - lists all available endpoints",
	"/quota/overview":        "Quick summary (e.g., 'Pro 95% | Flash 90% | Claude 80%')",
	"/quota/status":          "Terminal status with nerdfont icons and colors",
	"/quota/all":             "All models with percentage and relative reset time",
	"/quota/pro":             "Gemini 3 Pro models (high, image, low)",
	"/quota/flash":           "Gemini 3 Flash model",
	"/quota/claude":          "Claude 4.5 models (opus, sonnet, thinking)",
	"/quota/glm":             "GLM coding plan quota from Z.ai / ZHIPU",
	"/quota/glm/model-usage": "GLM model usage for the last 24 hours",
	"/quota/glm/tool-usage":  "GLM tool usage for the last 24 hours",
}

type handler struct {
	svc QuotaService
}

// NewRouter builds the gin engine with request logging and all quota routes.
func NewRouter(svc QuotaService, logger *log.Logger) *gin.Engine {
	r := gin.New()
	r.Use(requestID(), requestLogger(logger), gin.Recovery())

	h := &handler{svc: svc}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	q := r.Group("/quota")
	q.GET("", h.index)
	q.GET("/usage", h.index)
	q.GET("/overview", h.overview)
	q.GET("/status", h.status)
	q.GET("/all", h.all)
	q.GET("/pro", h.family(models.FamilyPro))
	q.GET("/flash", h.family(models.FamilyFlash))
	q.GET("/claude", h.family(models.FamilyClaude))
	q.GET("/glm", h.glm)
	q.GET("/glm/model-usage", h.glmUsage(quota.ModelUsage))
	q.GET("/glm/tool-usage", h.glmUsage(quota.ToolUsage))
	return r
}

// fail answers with the status mapped from err and logs server-side
// failures.
func fail(c *gin.Context, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *handler) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Welcome to the Antigravity Quota API",
		"endpoints": endpointIndex,
	})
}

func (h *handler) overview(c *gin.Context) {
	s, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overview": s})
}

func (h *handler) status(c *gin.Context) {
	s, err := h.svc.StatusLine(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overview": s})
}

func (h *handler) all(c *gin.Context) {
	view, err := h.svc.AllQuota(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quota": view})
}

func (h *handler) family(f models.Family) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := h.svc.FamilyQuota(c.Request.Context(), f)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"quota": view})
	}
}

func (h *handler) glm(c *gin.Context) {
	view, err := h.svc.GlmQuota(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quota": view})
}

func (h *handler) glmUsage(kind quota.UsageKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := h.svc.GlmUsage(c.Request.Context(), kind)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": raw})
	}
}
