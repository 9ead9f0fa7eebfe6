package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"elitepay/internal/adapter/http/dto"
	"elitepay/internal/core/domain"
	"elitepay/internal/core/ports"
	"elitepay/pkg/apperror"
	"elitepay/pkg/response"
)

// LimitHandler serves the spending-limit configuration endpoints.
type LimitHandler struct {
	limits ports.LimitService
	log    zerolog.Logger
}

func NewLimitHandler(limits ports.LimitService, log zerolog.Logger) *LimitHandler {
	return &LimitHandler{limits: limits, log: log}
}

// SetLimit creates or replaces one spending limit on a card.
func (h *LimitHandler) SetLimit(c *gin.Context) {
	var req dto.SetLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if req.UID == "" {
			response.Error(c, apperror.ErrMissingUID())
			return
		}
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	kind, ok := domain.ParsePeriodKind(req.Kind)
	if !ok {
		response.Error(c, apperror.ErrInvalidPeriodKind(req.Kind))
		return
	}

	limit, err := h.limits.SetLimit(c.Request.Context(), req.UID, kind, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.log.Info().Str("uid", req.UID).Str("kind", string(kind)).Str("amount", limit.Amount.StringFixed(2)).Msg("limit set")
	response.OK(c, dto.LimitsResponse{
		UID: req.UID,
		Limits: map[string]dto.LimitEntry{
			string(kind): {
				Amount: limit.Amount.StringFixed(2),
				SetAt:  limit.SetAt.Format(time.RFC3339),
			},
		},
	})
}

// GetLimits lists the limits configured on a card.
func (h *LimitHandler) GetLimits(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		response.Error(c, apperror.ErrMissingUID())
		return
	}

	limits, err := h.limits.GetLimits(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make(map[string]dto.LimitEntry, len(limits))
	for kind, l := range limits {
		out[string(kind)] = dto.LimitEntry{
			Amount: l.Amount.StringFixed(2),
			SetAt:  l.SetAt.Format(time.RFC3339),
		}
	}

	response.OK(c, dto.LimitsResponse{UID: uid, Limits: out})
}

// RemoveLimit deletes one limit kind from a card. Removing a limit
// that was never set is not an error.
func (h *LimitHandler) RemoveLimit(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		response.Error(c, apperror.ErrMissingUID())
		return
	}

	kind, ok := domain.ParsePeriodKind(c.Param("kind"))
	if !ok {
		response.Error(c, apperror.ErrInvalidPeriodKind(c.Param("kind")))
		return
	}

	removed, err := h.limits.RemoveLimit(c.Request.Context(), uid, kind)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.RemoveLimitResponse{
		UID:     uid,
		Kind:    string(kind),
		Removed: removed,
	})
}
