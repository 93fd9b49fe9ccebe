package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go-deposit-api/common"
	"go-deposit-api/model"
	"go-deposit-api/observability"
	"go-deposit-api/service"
	"go-deposit-api/session"
)

// Transferer is the subset of service.TransferService used by DepositHandler.
type Transferer interface {
	Transfer(ctx context.Context, accountID int64, toAccount string, amount float64) (float64, error)
	Destination() string
}

// DepositHandler holds dependencies for the deposit endpoint.
type DepositHandler struct {
	service Transferer
}

func NewDepositHandler(s Transferer) *DepositHandler {
	return &DepositHandler{service: s}
}

// Deposit godoc
// @Summary      Transfer to the designated account
// @Description  Moves amount from the logged-in account to the single designated destination account.
// @Tags         deposits
// @Accept       json
// @Produce      json
// @Param        deposit body model.DepositRequest true "Destination and amount"
// @Success      200  {object}  model.BalanceResponse "New balance of the logged-in account"
// @Failure      400  {object}  common.AppError "Invalid destination, invalid amount or insufficient balance"
// @Failure      401  {object}  common.AppError "Not logged in"
// @Failure      500  {object}  common.AppError
// @Router       /api/deposit [post]
func (h *DepositHandler) Deposit(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, ok := session.AccountIDFromContext(r.Context())
	if !ok {
		observability.Transfers.WithLabelValues("unauthenticated").Inc()
		return common.NewAppError(http.StatusUnauthorized, "Not logged in", nil)
	}

	var req model.DepositRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		observability.Transfers.WithLabelValues("invalid_request").Inc()
		return err
	}

	balance, err := h.service.Transfer(r.Context(), accountID, req.ToAccount, req.Amount.Float64())
	if err != nil {
		// Map specific business logic errors to appropriate HTTP status codes.
		switch err {
		case service.ErrUnauthenticated:
			observability.Transfers.WithLabelValues("unauthenticated").Inc()
			return common.NewAppError(http.StatusUnauthorized, "Not logged in", nil)
		case service.ErrInvalidDestination:
			observability.Transfers.WithLabelValues("invalid_destination").Inc()
			msg := fmt.Sprintf("Deposits can only be made to account %s", h.service.Destination())
			return common.NewAppError(http.StatusBadRequest, msg, nil)
		case service.ErrInvalidAmount:
			observability.Transfers.WithLabelValues("invalid_amount").Inc()
			return common.NewAppError(http.StatusBadRequest, "Invalid amount", nil)
		case service.ErrInsufficientBalance:
			observability.Transfers.WithLabelValues("insufficient_balance").Inc()
			return common.NewAppError(http.StatusBadRequest, "Insufficient balance", nil)
		default:
			observability.Transfers.WithLabelValues("error").Inc()
			return common.NewAppError(http.StatusInternalServerError, "Could not process deposit", err)
		}
	}

	observability.Transfers.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(model.BalanceResponse{Balance: balance})
	return nil
}

