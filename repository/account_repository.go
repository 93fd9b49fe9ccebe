package repository

import (
	"context"
	"database/sql"
	"errors"

	"go-deposit-api/logger"
	"go-deposit-api/model"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

const uniqueViolation = "23505"

// IAccountRepository defines the contract for account database operations.
// Methods taking a *sql.Tx run inside the caller's transaction.
type IAccountRepository interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	SeedAccount(ctx context.Context, account *model.Account) (bool, error)
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	GetAccountForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Account, error)
	// GetOrCreateByUsername resolves the account or creates it with a zero
	// balance and no password hash. Such an account cannot authenticate.
	GetOrCreateByUsername(ctx context.Context, tx *sql.Tx, username string) (*model.Account, error)
	WithdrawFromAccount(ctx context.Context, tx *sql.Tx, id int64, amount float64) (float64, error)
	DepositToAccount(ctx context.Context, tx *sql.Tx, id int64, amount float64) (float64, error)
}

// AccountRepository implements IAccountRepository on Postgres.
type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var (
		acc  model.Account
		hash sql.NullString
	)
	if err := row.Scan(&acc.ID, &acc.Username, &hash, &acc.Balance, &acc.CreatedAt); err != nil {
		return nil, err
	}
	acc.PasswordHash = hash.String
	return &acc, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// CreateAccount inserts a new account with a zero balance.
func (r *AccountRepository) CreateAccount(ctx context.Context, account *model.Account) error {
	log := logger.Log.WithField("username", account.Username)
	log.Info("Executing query to create a new account")

	query := `INSERT INTO accounts (username, password_hash) VALUES ($1, $2) RETURNING id, balance, created_at`
	err := r.DB.QueryRowContext(ctx, query, account.Username, account.PasswordHash).
		Scan(&account.ID, &account.Balance, &account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Info("Username is already taken")
			return ErrDuplicateUsername
		}
		log.WithError(err).Error("Failed to execute create account query")
		return err
	}
	return nil
}

// SeedAccount inserts the account with its balance unless the username exists.
// It reports whether a row was created; an existing account is left untouched.
func (r *AccountRepository) SeedAccount(ctx context.Context, account *model.Account) (bool, error) {
	log := logger.Log.WithField("username", account.Username)
	log.Info("Executing query to seed account")

	query := `
		INSERT INTO accounts (username, password_hash, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
		RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query, account.Username, account.PasswordHash, account.Balance).
		Scan(&account.ID, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		log.WithError(err).Error("Failed to execute seed account query")
		return false, err
	}
	return true, nil
}

func (r *AccountRepository) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	query := `SELECT id, username, password_hash, balance, created_at FROM accounts WHERE id = $1`
	acc, err := scanAccount(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		logger.Log.WithError(err).WithField("account_id", id).Error("Failed to get account by ID")
		return nil, err
	}
	return acc, nil
}

func (r *AccountRepository) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	query := `SELECT id, username, password_hash, balance, created_at FROM accounts WHERE username = $1`
	acc, err := scanAccount(r.DB.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		logger.Log.WithError(err).WithField("username", username).Error("Failed to get account by username")
		return nil, err
	}
	return acc, nil
}

// GetAccountForUpdate reads the account and locks its row until tx ends.
func (r *AccountRepository) GetAccountForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Account, error) {
	log := logger.Log.WithField("account_id", id)
	log.Info("Executing query to get account for update")

	query := `SELECT id, username, password_hash, balance, created_at FROM accounts WHERE id = $1 FOR UPDATE`
	acc, err := scanAccount(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("Account not found for update")
			return nil, ErrAccountNotFound
		}
		log.WithError(err).Error("Failed to execute get account for update query")
		return nil, err
	}
	return acc, nil
}

func (r *AccountRepository) GetOrCreateByUsername(ctx context.Context, tx *sql.Tx, username string) (*model.Account, error) {
	log := logger.Log.WithField("username", username)

	res, err := tx.ExecContext(ctx, `INSERT INTO accounts (username) VALUES ($1) ON CONFLICT (username) DO NOTHING`, username)
	if err != nil {
		log.WithError(err).Error("Failed to execute resolve-or-create insert")
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		log.Info("Created password-less destination account")
	}

	query := `SELECT id, username, password_hash, balance, created_at FROM accounts WHERE username = $1 FOR UPDATE`
	acc, err := scanAccount(tx.QueryRowContext(ctx, query, username))
	if err != nil {
		log.WithError(err).Error("Failed to load resolved account")
		return nil, err
	}
	return acc, nil
}

// WithdrawFromAccount decrements the balance only if it covers amount and
// returns the new balance. ErrInsufficientFunds is returned otherwise.
func (r *AccountRepository) WithdrawFromAccount(ctx context.Context, tx *sql.Tx, id int64, amount float64) (float64, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": id,
		"amount":     amount,
	})
	log.Info("Executing query to withdraw from account")

	var balance float64
	query := `UPDATE accounts SET balance = balance - $1 WHERE id = $2 AND balance >= $1 RETURNING balance`
	err := tx.QueryRowContext(ctx, query, amount, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInsufficientFunds
		}
		log.WithError(err).Error("Failed to execute withdraw query")
		return 0, err
	}
	return balance, nil
}

func (r *AccountRepository) DepositToAccount(ctx context.Context, tx *sql.Tx, id int64, amount float64) (float64, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": id,
		"amount":     amount,
	})
	log.Info("Executing query to deposit to account")

	var balance float64
	query := `UPDATE accounts SET balance = balance + $1 WHERE id = $2 RETURNING balance`
	err := tx.QueryRowContext(ctx, query, amount, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		log.WithError(err).Error("Failed to execute deposit query")
		return 0, err
	}
	return balance, nil
}
