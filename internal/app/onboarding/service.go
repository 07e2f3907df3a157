package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"liverpool/internal/ports"
)

const (
	// defaultWelcomeChips seeds a new player's stack so they can cover a few
	// match stakes before winning one.
	defaultWelcomeChips = 1000
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding
	// continued.
	ProfileUpdateErr error
	// WelcomeChipsGranted is false when the grant had already happened.
	WelcomeChipsGranted bool
}

// Service handles post-auth onboarding for new players: a table name and a
// one-time starting chip stack.
type Service struct {
	accounts ports.AccountPort
	bonus    ports.WelcomeBonusPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service. accounts/bonus must be
// non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, bonus ports.WelcomeBonusPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{accounts: accounts, bonus: bonus, rng: rng}
}

// OnboardNewUser initializes the profile and chip stack for a newly created
// account. Profile updates are best-effort; the chip grant is the part that
// must not silently fail.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.bonus == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	name := s.generateTableName()
	if err := s.accounts.UpdateProfile(ctx, userID, name, name); err != nil {
		result.ProfileUpdateErr = err
	}

	granted, err := s.bonus.GrantWelcomeBonusOnce(ctx, userID, defaultWelcomeChips, map[string]interface{}{
		"reason": "welcome_chips",
	})
	if err != nil {
		return result, fmt.Errorf("failed to grant welcome chips: %w", err)
	}
	result.WelcomeChipsGranted = granted
	return result, nil
}

func (s *Service) generateTableName() string {
	adjectives := []string{"Lucky", "Quiet", "Bold", "Patient", "Sharp", "Steady", "Sly", "Keen", "Cool", "Dapper"}
	nouns := []string{"Dealer", "Joker", "Shuffler", "Melder", "Runner", "Counter", "Caller", "Holder", "Drawer", "Ace"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000
	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
