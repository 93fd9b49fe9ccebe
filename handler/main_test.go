package handler

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"os"
	"testing"

	"go-deposit-api/logger"
	"go-deposit-api/model"

	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.Log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Create(ctx context.Context, username, password string) (*model.Account, error) {
	args := m.Called(ctx, username, password)
	acc, _ := args.Get(0).(*model.Account)
	return acc, args.Error(1)
}

func (m *MockCredentialStore) Verify(ctx context.Context, username, password string) (*model.Account, error) {
	args := m.Called(ctx, username, password)
	acc, _ := args.Get(0).(*model.Account)
	return acc, args.Error(1)
}

type MockSessionStarter struct {
	mock.Mock
}

func (m *MockSessionStarter) Login(ctx context.Context, w http.ResponseWriter, accountID int64) error {
	args := m.Called(ctx, w, accountID)
	return args.Error(0)
}

type MockTransferer struct {
	mock.Mock
}

func (m *MockTransferer) Transfer(ctx context.Context, accountID int64, toAccount string, amount float64) (float64, error) {
	args := m.Called(ctx, accountID, toAccount, amount)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockTransferer) Destination() string {
	return "1976278463"
}


// MockAccountRepository lets handler tests run a real CredentialService.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) account(args mock.Arguments) (*model.Account, error) {
	acc, _ := args.Get(0).(*model.Account)
	return acc, args.Error(1)
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, account *model.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) SeedAccount(ctx context.Context, account *model.Account) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	return m.account(m.Called(ctx, id))
}

func (m *MockAccountRepository) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return m.account(m.Called(ctx, username))
}

func (m *MockAccountRepository) GetAccountForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Account, error) {
	return m.account(m.Called(ctx, tx, id))
}

func (m *MockAccountRepository) GetOrCreateByUsername(ctx context.Context, tx *sql.Tx, username string) (*model.Account, error) {
	return m.account(m.Called(ctx, tx, username))
}

func (m *MockAccountRepository) WithdrawFromAccount(ctx context.Context, tx *sql.Tx, id int64, amount float64) (float64, error) {
	args := m.Called(ctx, tx, id, amount)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockAccountRepository) DepositToAccount(ctx context.Context, tx *sql.Tx, id int64, amount float64) (float64, error) {
	args := m.Called(ctx, tx, id, amount)
	return args.Get(0).(float64), args.Error(1)
}
