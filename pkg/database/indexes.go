package database

import (
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sessionIndexes are the indexes gorm tags cannot express.
var sessionIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_sessions_profile_email ON sessions ((profile->>'email'));",
	"CREATE INDEX IF NOT EXISTS idx_sessions_last_seen_at ON sessions (last_seen_at DESC);",
}

// EnsureIndexes creates the extra session indexes. Failures are logged and
// skipped; the service works without them.
func EnsureIndexes(db *gorm.DB) error {
	for _, indexSQL := range sessionIndexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			logger.GetLogger().Warn("Failed to create index",
				zap.String("sql", indexSQL),
				zap.Error(err),
			)
		}
	}
	return nil
}
