package ports

import "context"

// AccountPort updates player profiles.
type AccountPort interface {
	// UpdateProfile applies the username and display name to an account.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
