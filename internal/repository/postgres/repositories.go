package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Mapping:           NewMappingRepository(db, logger),
		Order:             NewOrderRepository(db, logger),
		SubmissionAttempt: NewSubmissionAttemptRepository(db, logger),
	}
}
