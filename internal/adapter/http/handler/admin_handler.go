package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"elitepay/internal/adapter/http/dto"
	"elitepay/internal/adapter/http/middleware"
	"elitepay/internal/core/ports"
	"elitepay/pkg/apperror"
	"elitepay/pkg/response"
)

// AdminHandler serves login and the authenticated dashboard endpoints.
type AdminHandler struct {
	auth   ports.AuthService
	ledger ports.LedgerService
	log    zerolog.Logger
}

func NewAdminHandler(auth ports.AuthService, ledger ports.LedgerService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{auth: auth, ledger: ledger, log: log}
}

// Login exchanges the admin credential for a JWT.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation("username and password are required"))
		return
	}

	token, expiry, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.log.Warn().Str("username", req.Username).Str("client_ip", c.ClientIP()).Msg("admin login rejected")
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{Token: token, Expiry: expiry.Unix()})
}

// ListFees returns every collected platform fee.
func (h *AdminHandler) ListFees(c *gin.Context) {
	fees, err := h.ledger.ListFees(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.FeeResponse, 0, len(fees))
	for _, f := range fees {
		out = append(out, dto.FeeResponse{
			ID:        f.ID.String(),
			UID:       f.UID,
			Email:     f.Email,
			Fee:       f.Fee.StringFixed(2),
			ChargedAt: f.Time.Format(time.RFC3339),
		})
	}

	response.OK(c, out)
}

// ListTransactions returns the ledger, optionally filtered to one
// card's payments with ?uid=.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	txns, err := h.ledger.ListTransactions(c.Request.Context(), c.Query("uid"))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, dto.TransactionResponse{
			ID:          t.ID.String(),
			Type:        string(t.Type),
			UID:         t.UID,
			Amount:      t.Amount.StringFixed(2),
			Fee:         t.Fee.StringFixed(2),
			FinalAmount: t.FinalAmount.StringFixed(2),
			CreatedAt:   t.Time.Format(time.RFC3339),
		})
	}

	response.OK(c, out)
}

// Reconcile recomputes a card's totalSpent from the payment log and
// repairs the counter when it has drifted.
func (h *AdminHandler) Reconcile(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		response.Error(c, apperror.ErrMissingUID())
		return
	}

	res, err := h.ledger.ReconcileTotalSpent(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}

	if res.Repaired {
		h.log.Warn().
			Str("uid", uid).
			Str("recorded", res.Recorded.StringFixed(2)).
			Str("recomputed", res.Recomputed.StringFixed(2)).
			Str("admin", c.GetString(middleware.CtxAdminUser)).
			Msg("total spent counter repaired")
	}

	response.OK(c, dto.ReconcileResponse{
		UID:        res.UID,
		Recorded:   res.Recorded.StringFixed(2),
		Recomputed: res.Recomputed.StringFixed(2),
		Repaired:   res.Repaired,
	})
}
