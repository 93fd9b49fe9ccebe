package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go-deposit-api/model"
	"go-deposit-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newCredentialService() (*CredentialService, *MockAccountRepository) {
	repo := new(MockAccountRepository)
	return NewCredentialService(repo, bcrypt.MinCost), repo
}

func TestCredentialService_HashAndCheckPassword(t *testing.T) {
	svc, _ := newCredentialService()
	password := "mySecretPassword123"

	hashed, err := svc.HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hashed)

	assert.True(t, svc.CheckPasswordHash(password, hashed))
	assert.False(t, svc.CheckPasswordHash("notMyPassword", hashed))
}

func TestCredentialService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, repo := newCredentialService()

		repo.On("CreateAccount", mock.Anything, mock.MatchedBy(func(acc *model.Account) bool {
			return acc.Username == "alice" &&
				acc.Balance == 0 &&
				bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("secret")) == nil
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.Account).ID = 11
		}).Return(nil).Once()

		acc, err := svc.Create(ctx, "alice", "secret")

		require.NoError(t, err)
		assert.Equal(t, int64(11), acc.ID)
		assert.NotEqual(t, "secret", acc.PasswordHash)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, repo := newCredentialService()
		repo.On("CreateAccount", mock.Anything, mock.Anything).Return(repository.ErrDuplicateUsername).Once()

		_, err := svc.Create(ctx, "alice", "other")

		assert.ErrorIs(t, err, ErrDuplicateUsername)
		repo.AssertExpectations(t)
	})

	t.Run("password longer than 72 bytes", func(t *testing.T) {
		svc, repo := newCredentialService()
		password := strings.Repeat("é", 72)

		_, err := svc.Create(ctx, "alice", password)

		assert.ErrorIs(t, err, ErrPasswordTooLong)
		repo.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
	})

	t.Run("password of exactly 72 bytes", func(t *testing.T) {
		svc, repo := newCredentialService()
		repo.On("CreateAccount", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := svc.Create(ctx, "alice", strings.Repeat("é", 36))

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		svc, repo := newCredentialService()
		dbErr := errors.New("db down")
		repo.On("CreateAccount", mock.Anything, mock.Anything).Return(dbErr).Once()

		_, err := svc.Create(ctx, "alice", "secret")

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestCredentialService_Verify(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCredentialService()

	hash, err := svc.HashPassword("password1")
	require.NoError(t, err)

	alice := &model.Account{ID: 1, Username: "alice", PasswordHash: hash, Balance: 25}
	sink := &model.Account{ID: 2, Username: destination, Balance: 1000}

	repo.On("GetAccountByUsername", mock.Anything, "alice").Return(alice, nil)
	repo.On("GetAccountByUsername", mock.Anything, destination).Return(sink, nil)
	repo.On("GetAccountByUsername", mock.Anything, "ghost").Return(nil, repository.ErrAccountNotFound)

	t.Run("correct password", func(t *testing.T) {
		acc, err := svc.Verify(ctx, "alice", "password1")
		require.NoError(t, err)
		assert.Equal(t, alice, acc)
	})

	wrongPassword, errWrong := svc.Verify(ctx, "alice", "nope")
	unknownUser, errUnknown := svc.Verify(ctx, "ghost", "password1")
	noCredential, errNoCredential := svc.Verify(ctx, destination, "")

	t.Run("failures are indistinguishable", func(t *testing.T) {
		assert.Nil(t, wrongPassword)
		assert.Nil(t, unknownUser)
		assert.Nil(t, noCredential)
		assert.Equal(t, ErrInvalidCredentials, errWrong)
		assert.Equal(t, errWrong, errUnknown)
		assert.Equal(t, errWrong, errNoCredential)
	})

	t.Run("repository error surfaces", func(t *testing.T) {
		svc, repo := newCredentialService()
		dbErr := errors.New("db down")
		repo.On("GetAccountByUsername", mock.Anything, "alice").Return(nil, dbErr)

		_, err := svc.Verify(ctx, "alice", "password1")
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestCredentialService_Seed(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCredentialService()

	matchSeed := mock.MatchedBy(func(acc *model.Account) bool {
		return acc.Username == "user1" &&
			acc.Balance == 100000000000 &&
			bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("password1")) == nil
	})
	repo.On("SeedAccount", mock.Anything, matchSeed).Return(true, nil).Once()
	repo.On("SeedAccount", mock.Anything, matchSeed).Return(false, nil).Once()

	created, err := svc.Seed(ctx, "user1", "password1", 100000000000)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Seed(ctx, "user1", "password1", 100000000000)
	require.NoError(t, err)
	assert.False(t, created)

	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "SeedAccount", 2)
	repo.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}

func TestCredentialService_GetByID(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCredentialService()
	alice := &model.Account{ID: 1, Username: "alice"}
	repo.On("GetAccountByID", mock.Anything, int64(1)).Return(alice, nil).Once()
	repo.On("GetAccountByID", mock.Anything, int64(2)).Return(nil, repository.ErrAccountNotFound).Once()

	acc, err := svc.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, alice, acc)

	_, err = svc.GetByID(ctx, 2)
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}
