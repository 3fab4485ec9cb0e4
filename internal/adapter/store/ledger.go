package store

import (
	"context"
	"fmt"

	"github.com/repomind-ai/repomind/internal/port"
)

// CreditLedger meters paid AI calls against a project's credit balance.
// Implements port.CreditLedger.
type CreditLedger struct {
	store *PostgresStore
}

// NewCreditLedger creates a ledger backed by the given Postgres store.
func NewCreditLedger(store *PostgresStore) *CreditLedger {
	return &CreditLedger{store: store}
}

// Charge deducts amount credits from a project. The conditional update makes
// the check and the deduction one atomic statement, so concurrent charges
// cannot drive the balance negative.
func (l *CreditLedger) Charge(ctx context.Context, projectID string, amount int) error {
	query := `UPDATE projects SET credits = credits - $1
	          WHERE id = $2 AND deleted_at IS NULL AND credits >= $1`

	res, err := l.store.db.ExecContext(ctx, query, amount, projectID)
	if err != nil {
		return fmt.Errorf("charge credits: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrInsufficientCredits
	}
	return nil
}

// Balance returns the project's remaining credits.
func (l *CreditLedger) Balance(ctx context.Context, projectID string) (int, error) {
	query := `SELECT credits FROM projects WHERE id = $1`

	var credits int
	if err := l.store.db.QueryRowContext(ctx, query, projectID).Scan(&credits); err != nil {
		return 0, fmt.Errorf("credit balance: %w", err)
	}
	return credits, nil
}
