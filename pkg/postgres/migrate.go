package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_expenses",
		SQL: `CREATE TABLE IF NOT EXISTS expenses (
  id         UUID           PRIMARY KEY,
  user_id    UUID           NOT NULL,
  icon       TEXT           NOT NULL DEFAULT '',
  amount     NUMERIC(12, 2) NOT NULL CHECK (amount > 0),
  category   TEXT           NOT NULL,
  date       DATE           NOT NULL,
  source     TEXT           NOT NULL DEFAULT 'manual',
  merchant   TEXT           NOT NULL DEFAULT '',
  items      JSONB          NOT NULL DEFAULT '[]'::jsonb,
  created_at TIMESTAMPTZ    NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_expenses_user_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses (user_id, date DESC);`,
	},
}

// Migrate applies every schema step in order. Steps are idempotent.
func Migrate(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	start := time.Now()
	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logger.Error("Migration step failed",
				zap.String("step", step.Name),
				zap.Error(err),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		logger.Info("Migration step applied",
			zap.String("step", step.Name),
			zap.Duration("duration", time.Since(stepStart)),
		)
	}

	logger.Info("Migrations complete", zap.Int("steps", len(steps)), zap.Duration("duration", time.Since(start)))
	return nil
}
