package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"go-deposit-api/logger"
	"go-deposit-api/repository"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// TransferService moves funds from the logged-in account to the single
// designated destination account.
type TransferService struct {
	db          *sql.DB
	accountRepo repository.IAccountRepository
	destination string
}

func NewTransferService(db *sql.DB, accountRepo repository.IAccountRepository, destination string) *TransferService {
	return &TransferService{
		db:          db,
		accountRepo: accountRepo,
		destination: destination,
	}
}

// Destination returns the only username transfers may target.
func (s *TransferService) Destination() string {
	return s.destination
}

// Transfer debits amount from accountID and credits the destination account,
// creating it when absent. Both updates commit together or not at all.
// It returns the source account's new balance.
func (s *TransferService) Transfer(ctx context.Context, accountID int64, toAccount string, amount float64) (float64, error) {
	ctx, span := tracer.Start(ctx, "TransferService.Transfer")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("account.id", accountID),
		attribute.String("transfer.to", toAccount),
		attribute.Float64("transfer.amount", amount),
	)

	log := logger.Log.WithFields(logrus.Fields{
		"from_account_id": accountID,
		"to_account":      toAccount,
		"amount":          amount,
	})

	if accountID <= 0 {
		return 0, ErrUnauthenticated
	}
	if toAccount != s.destination {
		return 0, ErrInvalidDestination
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}

	log.Info("Starting transfer")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		spanError(span, err)
		return 0, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	from, err := s.accountRepo.GetAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return 0, ErrUnauthenticated
		}
		spanError(span, err)
		return 0, err
	}
	if from.Balance < amount {
		return 0, ErrInsufficientBalance
	}

	newBalance, err := s.accountRepo.WithdrawFromAccount(ctx, tx, from.ID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return 0, ErrInsufficientBalance
		}
		spanError(span, err)
		return 0, fmt.Errorf("could not update sender balance: %w", err)
	}

	to, err := s.accountRepo.GetOrCreateByUsername(ctx, tx, toAccount)
	if err != nil {
		spanError(span, err)
		return 0, fmt.Errorf("could not resolve destination account: %w", err)
	}

	toBalance, err := s.accountRepo.DepositToAccount(ctx, tx, to.ID, amount)
	if err != nil {
		spanError(span, err)
		return 0, fmt.Errorf("could not update receiver balance: %w", err)
	}
	if to.ID == from.ID {
		newBalance = toBalance
	}

	if err := tx.Commit(); err != nil {
		spanError(span, err)
		return 0, fmt.Errorf("could not commit transaction: %w", err)
	}

	log.WithField("new_balance", newBalance).Info("Transfer completed successfully")
	return newBalance, nil
}

