package statementmigrations

import (
	"context"
	"fmt"

	statementdb "github.com/Black-And-White-Club/truthtable/app/modules/statement/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating statement, evaluation and item tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			models := []any{
				(*statementdb.Statement)(nil),
				(*statementdb.Item)(nil),
				(*statementdb.Evaluation)(nil),
				(*statementdb.RecommendedItem)(nil),
			}
			for _, m := range models {
				if _, err := tx.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("failed to create table for %T: %w", m, err)
				}
			}

			constraints := []string{
				`ALTER TABLE statement_evaluations DROP CONSTRAINT IF EXISTS chk_statement_evaluations_choice`,
				`ALTER TABLE statement_evaluations ADD CONSTRAINT chk_statement_evaluations_choice CHECK (choice IN ('true', 'false', 'unknown'))`,
				`ALTER TABLE items DROP CONSTRAINT IF EXISTS chk_items_cost`,
				`ALTER TABLE items ADD CONSTRAINT chk_items_cost CHECK (cost >= 0)`,
				`CREATE INDEX IF NOT EXISTS idx_statements_position ON statements (position)`,
				`CREATE INDEX IF NOT EXISTS idx_recommended_items_statement ON statement_recommended_items (statement_id, position)`,
			}
			for _, stmt := range constraints {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to apply %q: %w", stmt, err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping statement, evaluation and item tables...")

		for _, table := range []string{"statement_recommended_items", "statement_evaluations", "items", "statements"} {
			if _, err := db.NewRaw("DROP TABLE IF EXISTS ? CASCADE", bun.Ident(table)).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
