package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// LedgerService awards the fixed recycle credit. All crediting goes through
// this one entry point, keyed by submission id so retries cannot
// double-credit.
type LedgerService struct {
	store  LedgerStore
	amount int
}

// NewLedgerService creates a new ledger service
func NewLedgerService(store LedgerStore, amount int) *LedgerService {
	return &LedgerService{
		store:  store,
		amount: amount,
	}
}

// Amount returns the fixed credit awarded per recycled submission
func (s *LedgerService) Amount() int {
	return s.amount
}

// Credit awards the fixed amount to userID for submissionID. A repeat call
// with the same submission id is a no-op returning the already-credited
// state.
func (s *LedgerService) Credit(ctx context.Context, userID, submissionID string) (bool, error) {
	credited, err := s.store.Credit(ctx, userID, submissionID, s.amount)
	if err != nil {
		return false, fmt.Errorf("failed to credit points: %w", err)
	}

	if credited {
		log.Info().
			Str("user_id", userID).
			Str("submission_id", submissionID).
			Int("amount", s.amount).
			Msg("Points credited")
	} else {
		log.Debug().
			Str("submission_id", submissionID).
			Msg("Points already credited, skipping")
	}

	return credited, nil
}

// TotalFor returns the sum of credits for a user
func (s *LedgerService) TotalFor(ctx context.Context, userID string) (int, error) {
	total, err := s.store.TotalFor(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get point total: %w", err)
	}
	return total, nil
}
