package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jasdeace/webapp/internal/auth"
	"github.com/jasdeace/webapp/internal/payment"
	"github.com/jasdeace/webapp/internal/services/credits"
)

// HandlerProvider wraps the credit coordinator and payment gateway and
// exposes HTTP handlers.
type HandlerProvider struct {
	svc     *credits.Coordinator
	gateway payment.Gateway
}

// NewHandler returns a new handler provider.
func NewHandler(svc *credits.Coordinator, gateway payment.Gateway) *HandlerProvider {
	return &HandlerProvider{svc: svc, gateway: gateway}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	// Unknown fields are ignored: existing clients send extra bookkeeping
	// fields (e.g. credit_balance) alongside the ones we read.
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}

		return errors.New("invalid JSON")
	}

	return nil
}

// verifiedUserID checks the asserted userId against the identity the auth
// middleware verified. A mismatch is rejected before any store access.
func verifiedUserID(r *http.Request, asserted string) (uuid.UUID, error) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		return uuid.Nil, auth.ErrUnauthorized
	}

	if asserted == "" {
		// No asserted id: trust the verified credential alone.
		return identity.UserID, nil
	}

	userID, err := uuid.Parse(asserted)
	if err != nil || userID != identity.UserID {
		return uuid.Nil, auth.ErrUnauthorized
	}

	return userID, nil
}

// --- Requests ---

type submitRequest struct {
	UserID   string `json:"userId"`
	FormData string `json:"formData"`
}

type topupRequest struct {
	UserID string `json:"userId"`
	Amount *int64 `json:"amount"`
}

type paymentSessionRequest struct {
	Amount int64 `json:"amount"`
}

// --- Handlers ---

// SubmitHandler handles POST /submit: charge one submission's cost and
// persist the form payload.
func (h *HandlerProvider) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	var req submitRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.UserID == "" || req.FormData == "" {
		writeError(w, http.StatusBadRequest, "missing userId or formData")
		return
	}

	userID, err := verifiedUserID(r, req.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "user id does not match credential")
		return
	}

	outcome, err := h.svc.Charge(r.Context(), userID, req.FormData)
	if err != nil {
		h.writeChargeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result":        "Form submitted successfully",
		"creditBalance": outcome.NewBalance,
		"submissionId":  outcome.SubmissionID,
	})
}

func (h *HandlerProvider) writeChargeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, credits.ErrNoCreditRecord):
		writeError(w, http.StatusBadRequest, "no credit record found")
	case errors.Is(err, credits.ErrInsufficientCredit):
		writeError(w, http.StatusBadRequest, "insufficient credit")
	case errors.Is(err, credits.ErrCreditUpdateFailed):
		// No partial effect; the client may retry.
		writeError(w, http.StatusConflict, "credit update failed, retry")
	case errors.Is(err, credits.ErrCompensationFailed):
		slog.Error("charge left ledger inconsistent", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":                  "submission failed and balance could not be restored",
			"reconciliationRequired": true,
		})
	case errors.Is(err, credits.ErrSubmissionFailed):
		writeError(w, http.StatusInternalServerError, "submission failed, balance unchanged")
	default:
		slog.Error("charge failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// TopUpHandler handles POST /topup: add credit to the caller's balance,
// creating the balance row on first use.
func (h *HandlerProvider) TopUpHandler(w http.ResponseWriter, r *http.Request) {
	var req topupRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.UserID == "" || req.Amount == nil {
		writeError(w, http.StatusBadRequest, "missing userId or amount")
		return
	}

	userID, err := verifiedUserID(r, req.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "user id does not match credential")
		return
	}

	newBalance, err := h.svc.TopUp(r.Context(), userID, *req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, credits.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "amount must be a positive integer")
		case errors.Is(err, credits.ErrCreditUpdateFailed):
			writeError(w, http.StatusConflict, "credit update failed, retry")
		default:
			slog.Error("top-up failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"newCreditBalance": newBalance})
}

// GetBalanceHandler handles GET /balance for the authenticated user.
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := verifiedUserID(r, "")
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, credits.ErrNoCreditRecord) {
			writeError(w, http.StatusBadRequest, "no credit record found")
			return
		}

		slog.Error("get balance failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":        userID,
		"creditBalance": balance,
	})
}

type submissionResponse struct {
	ID            uuid.UUID `json:"id"`
	FormData      string    `json:"formData"`
	CreditBalance int64     `json:"creditBalance"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ListSubmissionsHandler handles GET /submissions, newest first.
func (h *HandlerProvider) ListSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := verifiedUserID(r, "")
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recs, err := h.svc.Submissions(r.Context(), userID)
	if err != nil {
		slog.Error("list submissions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	out := make([]submissionResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, submissionResponse{
			ID:            rec.ID,
			FormData:      rec.FormData,
			CreditBalance: rec.CreditBalance,
			CreatedAt:     rec.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"submissions": out})
}

// PaymentSessionHandler handles POST /payment/session: start a (stubbed)
// checkout session for a top-up.
func (h *HandlerProvider) PaymentSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req paymentSessionRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be a positive integer")
		return
	}

	userID, err := verifiedUserID(r, "")
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, err := h.gateway.CreateSession(r.Context(), userID, req.Amount)
	if err != nil {
		slog.Error("create payment session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"sessionId":   session.SessionID,
		"redirectUrl": session.RedirectURL,
	})
}
