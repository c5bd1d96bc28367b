package sessionmigrations

import (
	"context"
	"fmt"

	sessiondb "github.com/Black-And-White-Club/truthtable/app/modules/session/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating game_config table...")
		_, err := db.NewCreateTable().Model((*sessiondb.GameConfig)(nil)).IfNotExists().Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping game_config table...")
		_, err := db.NewDropTable().Model((*sessiondb.GameConfig)(nil)).IfExists().Exec(ctx)
		return err
	})
}
