package httpapi

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"workshop-intake/internal/auth"
	"workshop-intake/internal/calls"
	"workshop-intake/internal/rbac"
	"workshop-intake/internal/reporting"
	"workshop-intake/internal/voiceai"
	"workshop-intake/internal/workshops"
	"workshop-intake/pkg/logger"
	"workshop-intake/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth     *auth.Manager
	Calls    *calls.Service
	Stats    *reporting.Service
	Verifier voiceai.SignatureVerifier

	// IntakeAPIKey is the shared secret exchanged for a JWT pair.
	IntakeAPIKey string

	DB    *sql.DB
	Redis *redis.Client
}

const maxWebhookBody = 1 << 20

// --- Auth ---

type tokenRequest struct {
	APIKey     string `json:"api_key"`
	UserID     string `json:"user_id"`
	WorkshopID string `json:"workshop_id"`
	Role       string `json:"role"`
}

// IssueToken exchanges the configured intake API key for a JWT pair scoped
// to a workshop and role.
func (h Handlers) IssueToken(c *gin.Context) {
	if h.Auth == nil || h.IntakeAPIKey == "" {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.IntakeAPIKey)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}
	if req.UserID == "" || req.WorkshopID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, workshop_id required"})
		return
	}
	switch req.Role {
	case rbac.RoleOwner, rbac.RoleStaff, rbac.RoleAdmin:
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.WorkshopID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Inbound calls ---

// InboundCall registers a new call for the workshop owning the dialed
// number and returns the assistant configuration to run it with.
func (h Handlers) InboundCall(c *gin.Context) {
	var ev voiceai.InboundCallEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.Calls.HandleInboundCall(c.Request.Context(), ev)
	switch {
	case err == nil:
	case errors.Is(err, workshops.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no active workshop for dialed number"})
		return
	case errors.Is(err, calls.ErrWorkshopBusy):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "workshop at call capacity"})
		return
	case errors.Is(err, calls.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from, to required"})
		return
	default:
		logger.FromGin(c).Error("inbound call failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"call_id":       res.CallID,
		"workshop_name": res.WorkshopName,
		"assistant":     res.Assistant,
		"status":        calls.StatusInitiated,
	})
}

// --- Voice platform webhooks ---

// Webhook endpoints answer 200 even on rejection so the platform does not
// retry deliveries we will never accept; the error rides in the body.

func (h Handlers) readVerifiedBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "unreadable body"})
		return nil, false
	}
	sig := c.GetHeader(voiceai.HeaderSignature)
	ts := c.GetHeader(voiceai.HeaderTimestamp)
	if err := h.Verifier.Verify(sig, ts, body); err != nil {
		logger.FromGin(c).Warn("webhook rejected", "err", err)
		c.JSON(http.StatusOK, gin.H{"error": "signature verification failed"})
		return nil, false
	}
	return body, true
}

func (h Handlers) CallStarted(c *gin.Context) {
	body, ok := h.readVerifiedBody(c)
	if !ok {
		return
	}
	ev, err := voiceai.ParseWebhookEvent(body)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "malformed event"})
		return
	}
	if err := h.Calls.HandleCallStarted(c.Request.Context(), ev.Metadata.CallID); err != nil {
		logger.FromGin(c).Warn("call-started failed", "call_id", ev.Metadata.CallID, "err", err)
		c.JSON(http.StatusOK, gin.H{"error": "call not updated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CallEnded acknowledges immediately and processes asynchronously; the
// platform's delivery timeout is shorter than our transaction under load.
func (h Handlers) CallEnded(c *gin.Context) {
	body, ok := h.readVerifiedBody(c)
	if !ok {
		return
	}
	ev, err := voiceai.ParseWebhookEvent(body)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "malformed event"})
		return
	}

	// WithoutCancel keeps the request logger attached while detaching the
	// request's cancellation from the background work.
	bg := context.WithoutCancel(c.Request.Context())
	go func() {
		if err := h.Calls.ProcessCallEnded(bg, ev.Metadata.CallID, ev.Result, ev.Analysis); err != nil {
			logger.From(bg).Error("call-ended processing failed", "call_id", ev.Metadata.CallID, "err", err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// --- Read API ---

func identity(c *gin.Context) (workshopID, role string, ok bool) {
	workshopID, err := auth.WorkshopID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workshop_id required"})
		return "", "", false
	}
	role, _ = auth.Role(c.Request.Context())
	return workshopID, role, true
}

func (h Handlers) GetCall(c *gin.Context) {
	tokenWorkshopID, role, ok := identity(c)
	if !ok {
		return
	}
	callID := c.Param("call_id")
	detail, err := h.Calls.GetCallDetail(c.Request.Context(), callID)
	switch {
	case err == nil:
	case errors.Is(err, calls.ErrNotFound), errors.Is(err, calls.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	default:
		logger.FromGin(c).Error("call lookup failed", "call_id", callID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	// Cross-workshop reads answer 404, not 403; existence is not disclosed.
	if !rbac.CanAccessWorkshop(tokenWorkshopID, role, detail.Call.WorkshopID) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h Handlers) ListWorkshopCalls(c *gin.Context) {
	tokenWorkshopID, role, ok := identity(c)
	if !ok {
		return
	}
	workshopID := c.Param("workshop_id")
	if !rbac.CanAccessWorkshop(tokenWorkshopID, role, workshopID) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	f := calls.ListFilter{Status: calls.CallStatus(c.Query("status"))}
	var err error
	if f.Limit, err = intQuery(c, "limit"); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	if f.Offset, err = intQuery(c, "offset"); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}

	page, err := h.Calls.ListWorkshopCalls(c.Request.Context(), workshopID, f)
	switch {
	case err == nil:
	case errors.Is(err, calls.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		return
	default:
		logger.FromGin(c).Error("call list failed", "workshop_id", workshopID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) WorkshopStats(c *gin.Context) {
	tokenWorkshopID, role, ok := identity(c)
	if !ok {
		return
	}
	workshopID := c.Param("workshop_id")
	if !rbac.CanAccessWorkshop(tokenWorkshopID, role, workshopID) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	from, err := timeQuery(c, "from")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
		return
	}
	to, err := timeQuery(c, "to")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
		return
	}

	stats, err := h.Stats.WorkshopStats(c.Request.Context(), workshopID, from, to)
	switch {
	case err == nil:
	case errors.Is(err, reporting.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid window"})
		return
	default:
		logger.FromGin(c).Error("stats failed", "workshop_id", workshopID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// --- Health ---

func (h Handlers) Healthz(c *gin.Context) {
	ctx := c.Request.Context()
	if h.DB != nil {
		if err := utils.HealthCheck(ctx, h.DB, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func timeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
