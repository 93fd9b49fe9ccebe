package service

import (
	"context"
	"errors"
	"fmt"

	"go-deposit-api/logger"
	"go-deposit-api/model"
	"go-deposit-api/repository"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// CredentialService owns account records: signup, password verification and seeding.
type CredentialService struct {
	repo repository.IAccountRepository
	cost int
	// dummyHash is compared against when the username is unknown so that
	// unknown users and wrong passwords take the same time to reject.
	dummyHash []byte
}

func NewCredentialService(repo repository.IAccountRepository, cost int) *CredentialService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("no-such-account"), cost)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to prepare dummy password hash")
	}
	return &CredentialService{repo: repo, cost: cost, dummyHash: dummy}
}

func (s *CredentialService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (s *CredentialService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Create registers a new account with a zero balance.
func (s *CredentialService) Create(ctx context.Context, username, password string) (*model.Account, error) {
	ctx, span := tracer.Start(ctx, "CredentialService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("account.username", username))

	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		spanError(span, err)
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	account := &model.Account{Username: username, PasswordHash: hash}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		spanError(span, err)
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"account_id": account.ID,
		"username":   account.Username,
	}).Info("Account created")
	return account, nil
}

// Verify returns the account when password matches its stored hash.
// Every failure, including an unknown username, is ErrInvalidCredentials.
func (s *CredentialService) Verify(ctx context.Context, username, password string) (*model.Account, error) {
	ctx, span := tracer.Start(ctx, "CredentialService.Verify")
	defer span.End()

	account, err := s.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		spanError(span, err)
		return nil, err
	}

	if !account.CanAuthenticate() {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if !s.CheckPasswordHash(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

func (s *CredentialService) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	return s.repo.GetAccountByID(ctx, id)
}

// Seed creates the bootstrap account unless it already exists. Running it
// again never resets the balance or password of an existing account.
func (s *CredentialService) Seed(ctx context.Context, username, password string, balance float64) (bool, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("could not hash seed password: %w", err)
	}

	created, err := s.repo.SeedAccount(ctx, &model.Account{
		Username:     username,
		PasswordHash: hash,
		Balance:      balance,
	})
	if err != nil {
		return false, fmt.Errorf("could not seed account %q: %w", username, err)
	}

	log := logger.Log.WithField("username", username)
	if created {
		log.WithField("balance", balance).Info("Seed account created")
	} else {
		log.Info("Seed account already present")
	}
	return created, nil
}
