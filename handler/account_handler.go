package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go-deposit-api/common"
	"go-deposit-api/logger"
	"go-deposit-api/model"
	"go-deposit-api/service"
)

// CredentialStore is the subset of service.CredentialService used by AccountHandler.
type CredentialStore interface {
	Create(ctx context.Context, username, password string) (*model.Account, error)
	Verify(ctx context.Context, username, password string) (*model.Account, error)
}

// SessionStarter binds an account to the client after a successful login.
type SessionStarter interface {
	Login(ctx context.Context, w http.ResponseWriter, accountID int64) error
}

type AccountHandler struct {
	credentials CredentialStore
	sessions    SessionStarter
}

func NewAccountHandler(credentials CredentialStore, sessions SessionStarter) *AccountHandler {
	return &AccountHandler{credentials: credentials, sessions: sessions}
}

// Signup godoc
// @Summary      Create an account
// @Description  Registers a new account with a zero balance.
// @Tags         accounts
// @Accept       json
// @Produce      plain
// @Param        account body model.SignupRequest true "Username and password"
// @Success      201  {string}  string "User created successfully"
// @Failure      400  {object}  common.AppError "Invalid body or username already exists"
// @Failure      500  {object}  common.AppError
// @Router       /api/signup [post]
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.SignupRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	if _, err := h.credentials.Create(r.Context(), req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateUsername):
			return common.NewAppError(http.StatusBadRequest, "User already exists", nil)
		case errors.Is(err, service.ErrPasswordTooLong):
			return common.NewAppError(http.StatusBadRequest, "Password must be at most 72 bytes", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not create user", err)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte("User created successfully"))
	return nil
}

// Login godoc
// @Summary      Log in
// @Description  Verifies the credentials, starts a session cookie and returns the balance.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        credentials body model.LoginRequest true "Username and password"
// @Success      200  {object}  model.BalanceResponse
// @Failure      400  {object}  common.AppError "Invalid body"
// @Failure      401  {object}  common.AppError "Login failed"
// @Failure      500  {object}  common.AppError
// @Router       /api/login [post]
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	account, err := h.credentials.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logger.Log.WithField("username", req.Username).Info("Login failed")
			return common.NewAppError(http.StatusUnauthorized, "Login failed", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not log in", err)
	}

	if err := h.sessions.Login(r.Context(), w, account.ID); err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not start session", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(model.BalanceResponse{Balance: account.Balance})
	return nil
}
