package decisionmigrations

import (
	"context"
	"fmt"

	decisiondb "github.com/Black-And-White-Club/truthtable/app/modules/decision/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating decisions table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().Model((*decisiondb.Decision)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create decisions table: %w", err)
			}
			stmts := []string{
				`ALTER TABLE decisions DROP CONSTRAINT IF EXISTS chk_decisions_choice`,
				`ALTER TABLE decisions ADD CONSTRAINT chk_decisions_choice CHECK (choice IN ('true', 'false', 'unknown'))`,
				`ALTER TABLE decisions DROP CONSTRAINT IF EXISTS chk_decisions_confidence`,
				`ALTER TABLE decisions ADD CONSTRAINT chk_decisions_confidence CHECK (confidence BETWEEN 0 AND 100)`,
				`CREATE INDEX IF NOT EXISTS idx_decisions_statement ON decisions (statement_id)`,
				`CREATE INDEX IF NOT EXISTS idx_decisions_team_submitted ON decisions (team_id, submitted_at DESC)`,
			}
			for _, stmt := range stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to apply %q: %w", stmt, err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping decisions table...")
		_, err := db.NewDropTable().Model((*decisiondb.Decision)(nil)).IfExists().Cascade().Exec(ctx)
		return err
	})
}
