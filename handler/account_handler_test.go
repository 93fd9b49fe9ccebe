package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-deposit-api/model"
	"go-deposit-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func newAccountHandler() (*AccountHandler, *MockCredentialStore, *MockSessionStarter) {
	creds := new(MockCredentialStore)
	sessions := new(MockSessionStarter)
	return NewAccountHandler(creds, sessions), creds, sessions
}

func TestAccountHandler_Signup(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		h, creds, _ := newAccountHandler()
		creds.On("Create", mock.Anything, "alice", "secret").
			Return(&model.Account{ID: 1, Username: "alice"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(`{"username":"alice","password":"secret"}`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Signup).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "User created successfully", rr.Body.String())
		creds.AssertExpectations(t)
	})

	t.Run("duplicate username", func(t *testing.T) {
		h, creds, _ := newAccountHandler()
		creds.On("Create", mock.Anything, "alice", "secret").Return(nil, service.ErrDuplicateUsername).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(`{"username":"alice","password":"secret"}`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Signup).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"code":400,"message":"User already exists"}`, rr.Body.String())
	})

	t.Run("storage failure", func(t *testing.T) {
		h, creds, _ := newAccountHandler()
		creds.On("Create", mock.Anything, "alice", "secret").Return(nil, errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(`{"username":"alice","password":"secret"}`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Signup).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("multibyte password over 72 bytes", func(t *testing.T) {
		repo := new(MockAccountRepository)
		h := NewAccountHandler(service.NewCredentialService(repo, bcrypt.MinCost), new(MockSessionStarter))
		body := fmt.Sprintf(`{"username":"alice","password":%q}`, strings.Repeat("é", 72))

		req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Signup).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"code":400,"message":"Password must be at most 72 bytes"}`, rr.Body.String())
		repo.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
	})

	t.Run("missing password", func(t *testing.T) {
		h, creds, _ := newAccountHandler()

		req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(`{"username":"alice"}`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Signup).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		creds.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		h, creds, _ := newAccountHandler()

		req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(`{"username":`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Signup).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		creds.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAccountHandler_Login(t *testing.T) {
	t.Run("success returns balance and starts session", func(t *testing.T) {
		h, creds, sessions := newAccountHandler()
		creds.On("Verify", mock.Anything, "user1", "password1").
			Return(&model.Account{ID: 1, Username: "user1", Balance: 100000000000}, nil).Once()
		sessions.On("Login", mock.Anything, mock.Anything, int64(1)).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"user1","password":"password1"}`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Login).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"balance":100000000000}`, rr.Body.String())
		creds.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		h, creds, sessions := newAccountHandler()
		creds.On("Verify", mock.Anything, "user1", "nope").Return(nil, service.ErrInvalidCredentials).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"user1","password":"nope"}`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Login).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"code":401,"message":"Login failed"}`, rr.Body.String())
		sessions.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("session cannot be started", func(t *testing.T) {
		h, creds, sessions := newAccountHandler()
		creds.On("Verify", mock.Anything, "user1", "password1").
			Return(&model.Account{ID: 1, Username: "user1"}, nil).Once()
		sessions.On("Login", mock.Anything, mock.Anything, int64(1)).Return(errors.New("redis down")).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"user1","password":"password1"}`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Login).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		h, creds, _ := newAccountHandler()

		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(h.Login).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		creds.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
	})
}
