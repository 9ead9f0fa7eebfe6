package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"elitepay/internal/adapter/http/dto"
	"elitepay/internal/core/ports"
	"elitepay/pkg/apperror"
	"elitepay/pkg/response"
)

// LedgerHandler serves the money-movement endpoints.
type LedgerHandler struct {
	ledger ports.LedgerService
	log    zerolog.Logger
}

func NewLedgerHandler(ledger ports.LedgerService, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, log: log}
}

// TopUp credits a card, creating it on first reference.
func (h *LedgerHandler) TopUp(c *gin.Context) {
	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if req.UID == "" {
			response.Error(c, apperror.ErrMissingUID())
			return
		}
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	res, err := h.ledger.TopUp(c.Request.Context(), req.UID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.log.Info().Str("uid", req.UID).Str("amount", req.Amount.StringFixed(2)).Msg("top-up accepted")
	response.OK(c, dto.TopUpResponse{
		UID:        req.UID,
		NewBalance: res.NewBalance.StringFixed(2),
	})
}

// Deduct debits a card after the PIN, limit and balance gates pass.
func (h *LedgerHandler) Deduct(c *gin.Context) {
	var req dto.DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if req.UID == "" {
			response.Error(c, apperror.ErrMissingUID())
			return
		}
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	res, err := h.ledger.Deduct(c.Request.Context(), ports.DeductRequest{
		UID:    req.UID,
		Amount: req.Amount,
		PIN:    req.PIN,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DeductResponse{
		UID:            req.UID,
		NewBalance:     res.NewBalance.StringFixed(2),
		Fee:            res.Fee.StringFixed(2),
		RewardEligible: res.RewardEligible,
	})
}

// Convert credits a card from an external amount at a given rate.
func (h *LedgerHandler) Convert(c *gin.Context) {
	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if req.UID == "" {
			response.Error(c, apperror.ErrMissingUID())
			return
		}
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	res, err := h.ledger.ConvertExternalCredit(c.Request.Context(), ports.ConvertRequest{
		UID:            req.UID,
		ExternalAmount: req.ExternalAmount,
		Rate:           req.Rate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ConvertResponse{
		UID:            req.UID,
		ExternalAmount: res.ExternalAmount.String(),
		CreditedAmount: res.CreditedAmount.StringFixed(2),
		NewBalance:     res.NewBalance.StringFixed(2),
	})
}
