package storage

import (
	"context"

	"github.com/rvallim/raffle-allocation/pkg/models"
)

// RaffleStore defines the interface for managing raffles.
type RaffleStore interface {
	// CreateRaffle creates a new raffle. At most one raffle may be active at a
	// time; creating a second active raffle fails with ErrInvalidInput.
	CreateRaffle(ctx context.Context, raffle *models.Raffle) (*models.Raffle, error)

	// GetRaffle retrieves a raffle by its ID. Returns ErrNotFound if missing.
	GetRaffle(ctx context.Context, raffleID string) (*models.Raffle, error)

	// GetActiveRaffle retrieves the currently active raffle, or ErrNotFound.
	GetActiveRaffle(ctx context.Context) (*models.Raffle, error)
}
