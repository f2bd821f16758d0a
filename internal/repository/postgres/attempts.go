package postgres

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/domain"
	"github.com/Triple-C-BE/wimood/pkg/errors"
)

type submissionAttemptRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubmissionAttemptRepository creates a new submission attempt repository
func NewSubmissionAttemptRepository(db *sql.DB, logger *zap.Logger) *submissionAttemptRepository {
	return &submissionAttemptRepository{
		db:     db,
		logger: logger,
	}
}

func (r *submissionAttemptRepository) Get(ctx context.Context, shopifyOrderID int64) (*domain.SubmissionAttempt, error) {
	query := `
		SELECT shopify_order_id, attempt_key, attempted_at
		FROM submission_attempts
		WHERE shopify_order_id = $1
	`

	var a domain.SubmissionAttempt
	err := r.db.QueryRowContext(ctx, query, shopifyOrderID).Scan(
		&a.ShopifyOrderID,
		&a.AttemptKey,
		&a.AttemptedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "submission_attempt", ID: formatOrderID(shopifyOrderID)}
	}
	if err != nil {
		r.logger.Error("Failed to get submission attempt", zap.Error(err))
		return nil, err
	}

	return &a, nil
}

func (r *submissionAttemptRepository) Record(ctx context.Context, attempt *domain.SubmissionAttempt) error {
	query := `
		INSERT INTO submission_attempts (shopify_order_id, attempt_key, attempted_at)
		VALUES ($1, $2, now())
		ON CONFLICT (shopify_order_id) DO UPDATE SET
			attempt_key = EXCLUDED.attempt_key,
			attempted_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, attempt.ShopifyOrderID, attempt.AttemptKey); err != nil {
		r.logger.Error("Failed to record submission attempt",
			zap.Int64("shopify_order_id", attempt.ShopifyOrderID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *submissionAttemptRepository) Clear(ctx context.Context, shopifyOrderID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM submission_attempts WHERE shopify_order_id = $1`, shopifyOrderID); err != nil {
		r.logger.Error("Failed to clear submission attempt",
			zap.Int64("shopify_order_id", shopifyOrderID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
