package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// StatsAction は保存件数と埋め込みプロバイダの状態を表示するコマンドのアクション
func StatsAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	c := appCtx.Container
	out := output(cmd)

	optOuts, err := c.OptOuts.Count(ctx)
	if err != nil {
		appCtx.Logger().Warn("オプトアウト件数の取得に失敗しました", "error", err)
	}

	fmt.Fprintf(out, "\n=== 取り込み統計 ===\n\n")
	fmt.Fprintf(out, "Messages:            %d\n", c.Store.Count(ctx))
	if cmd.IsSet("user") {
		senderID := cmd.Int64("user")
		fmt.Fprintf(out, "Messages (user %d): %d\n", senderID, c.Store.CountBySender(ctx, senderID))
	}
	fmt.Fprintf(out, "Opted-out senders:   %d\n", optOuts)
	fmt.Fprintf(out, "Embedding provider:  %s\n", c.Registry.ProviderLabel())
	fmt.Fprintf(out, "Embedding available: %t\n", c.Registry.IsAvailable())
	if c.Registry.IsAvailable() {
		fmt.Fprintf(out, "Embedding dimension: %d\n", c.Registry.Dimension())
	}

	return nil
}
