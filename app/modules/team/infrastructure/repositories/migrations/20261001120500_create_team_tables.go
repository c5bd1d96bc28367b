package teammigrations

import (
	"context"
	"fmt"

	teamdb "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating teams, purchases and hint_purchases tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			models := []any{
				(*teamdb.Team)(nil),
				(*teamdb.Purchase)(nil),
				(*teamdb.HintPurchase)(nil),
			}
			for _, m := range models {
				if _, err := tx.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("failed to create table for %T: %w", m, err)
				}
			}

			stmts := []string{
				`ALTER TABLE teams DROP CONSTRAINT IF EXISTS chk_teams_budget_non_negative`,
				`ALTER TABLE teams ADD CONSTRAINT chk_teams_budget_non_negative CHECK (budget >= 0)`,
				`ALTER TABLE purchases DROP CONSTRAINT IF EXISTS chk_purchases_cost`,
				`ALTER TABLE purchases ADD CONSTRAINT chk_purchases_cost CHECK (cost >= 0)`,
				`CREATE INDEX IF NOT EXISTS idx_purchases_team ON purchases (team_id)`,
				`CREATE INDEX IF NOT EXISTS idx_hint_purchases_team ON hint_purchases (team_id)`,
			}
			for _, stmt := range stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to apply %q: %w", stmt, err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping team ledger tables...")

		for _, table := range []string{"hint_purchases", "purchases", "teams"} {
			if _, err := db.NewRaw("DROP TABLE IF EXISTS ? CASCADE", bun.Ident(table)).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
