package ports

import "context"

// WalletUpdate is a single chip change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort manages the chip currency.
type EconomyPort interface {
	// GetBalance retrieves a user's current chip balance.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies the match settlement: the winner collects the
	// stakes the losing seats pay out.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
