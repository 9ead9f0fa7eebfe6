package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"elitepay/internal/adapter/http/dto"
	"elitepay/internal/core/ports"
	"elitepay/pkg/apperror"
	"elitepay/pkg/response"
)

// CardHandler serves the scan and cardholder profile endpoints.
type CardHandler struct {
	cards ports.CardService
	log   zerolog.Logger
}

func NewCardHandler(cards ports.CardService, log zerolog.Logger) *CardHandler {
	return &CardHandler{cards: cards, log: log}
}

// Scan records a card-seen event, creating the card on first sight,
// and returns the current balance for display at the reader.
func (h *CardHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrMissingUID())
		return
	}
	dto.SanitizeStruct(&req)

	res, err := h.cards.RecordScan(c.Request.Context(), req.UID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ScanResponse{
		UID:     res.UID,
		Balance: res.Balance.StringFixed(2),
	})
}

// LastScan returns the most recent scan event, for the kiosk display.
func (h *CardHandler) LastScan(c *gin.Context) {
	scan, err := h.cards.LastScan(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if scan == nil {
		response.OK(c, nil)
		return
	}

	response.OK(c, dto.LastScanResponse{
		ID:        scan.ID.String(),
		UID:       scan.UID,
		ScannedAt: scan.Time.Format(time.RFC3339),
	})
}

// GetBalance returns the balance for a uid. Unknown cards report a
// zero balance and are not created.
func (h *CardHandler) GetBalance(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		response.Error(c, apperror.ErrMissingUID())
		return
	}

	balance, err := h.cards.GetBalance(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		UID:     uid,
		Balance: balance.StringFixed(2),
	})
}

// Register creates or updates a cardholder profile. Fields absent from
// the request are left untouched.
func (h *CardHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if req.UID == "" {
			response.Error(c, apperror.ErrMissingUID())
			return
		}
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if req.Email == nil && req.PIN == nil {
		response.Error(c, apperror.ErrMissingField("email or pin"))
		return
	}

	if err := h.cards.SetProfile(c.Request.Context(), req.UID, req.Email, req.PIN); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.RegisterResponse{UID: req.UID})
}
