package model

// SignupRequest defines the payload for creating a new account.
type SignupRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest defines the payload for authentication.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// DepositRequest moves Amount from the logged-in account to ToAccount.
// Amount is checked by the transfer service, not by the validator, so that
// zero and negative values surface as an invalid amount.
type DepositRequest struct {
	ToAccount string `json:"toAccount" validate:"required"`
	Amount    Amount `json:"amount"`
}

// BalanceResponse is returned by login and deposit.
type BalanceResponse struct {
	Balance float64 `json:"balance"`
}
