package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountDataRepo removes every product-data row a user owns. It runs in a
// single transaction so a half-purged account never survives a crash.
type AccountDataRepo struct {
	pool *pgxpool.Pool
}

func NewAccountDataRepo(pool *pgxpool.Pool) *AccountDataRepo {
	return &AccountDataRepo{pool: pool}
}

// PurgeUserData deletes the user's price alerts and watches. Alerts cascade
// from watches, but both are deleted explicitly so alerts without a live
// watch row cannot linger either.
func (r *AccountDataRepo) PurgeUserData(ctx context.Context, userID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin purge transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	alerts, err := tx.Exec(ctx, "DELETE FROM price_alerts WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to delete price alerts: %w", err)
	}

	watches, err := tx.Exec(ctx, "DELETE FROM watches WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to delete watches: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit purge transaction: %w", err)
	}

	slog.InfoContext(ctx, "Purged user data", "user_id", userID,
		"alerts_deleted", alerts.RowsAffected(), "watches_deleted", watches.RowsAffected())
	return nil
}
