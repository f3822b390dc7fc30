package workflow

import (
	"context"
	"errors"

	"github.com/jgoulah/callcharts/pkg/models"
)

// Store is the chart value store collaborator, keyed by (email, chart).
type Store interface {
	// Get returns the saved entry, or nil with a nil error when none exists.
	Get(ctx context.Context, email string, chart models.ChartID) (*models.SavedEntry, error)
	// Upsert inserts or replaces the entry for (entry.Email, entry.ChartID).
	Upsert(ctx context.Context, entry *models.SavedEntry) error
}

var (
	// ErrInvalidEmail is returned before any store access when the email is malformed
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrUnknownChart is returned before any store access for an unrecognized chart id
	ErrUnknownChart = errors.New("unknown chart")
	// ErrStoreUnavailable wraps any lookup or upsert failure
	ErrStoreUnavailable = errors.New("chart value store unavailable")
	// ErrBusy is returned while another load or save is in flight
	ErrBusy = errors.New("another operation is in progress")
	// ErrNoPendingSave is returned by Confirm when no save awaits a decision
	ErrNoPendingSave = errors.New("no save awaiting confirmation")
)
