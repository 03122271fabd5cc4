package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// DBMigrateAction はスキーマを適用するコマンドのアクション
func DBMigrateAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if err := appCtx.Container.Migrate(ctx); err != nil {
		appCtx.Logger().Error("スキーマの適用に失敗しました", "error", err)
		return err
	}

	fmt.Fprintf(output(cmd), "✓ スキーマを適用しました（%s）\n", appCtx.Container.Config.StoreDriver)
	return nil
}
