package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jinford/chat-ingest/internal/interface/webhook"
)

// ServeAction は Webhook サーバと取り込みディスパッチャを起動するコマンドのアクション
func ServeAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	c := appCtx.Container
	logger := appCtx.Logger()

	dispatcher, err := c.NewDispatcher(ctx)
	if err != nil {
		return fmt.Errorf("ディスパッチャの初期化に失敗: %w", err)
	}
	defer func() {
		if err := dispatcher.Close(); err != nil {
			logger.Warn("処理中の取り込みタスクの待機がタイムアウトしました", "error", err)
		}
	}()

	handler := webhook.NewHandler(dispatcher,
		webhook.WithHandlerLogger(logger),
		webhook.WithStatus(func() (string, bool) {
			return c.Registry.ProviderLabel(), c.Registry.IsAvailable()
		}),
	)
	server := webhook.NewServer(c.Config.Webhook.Port, handler, c.Config.Webhook.Path, c.Config.Webhook.SecretToken, logger)

	logger.Info("取り込みサービスを開始",
		"store", c.Config.StoreDriver,
		"embedding_provider", c.Registry.ProviderLabel(),
		"workers", c.Config.IngestWorkers,
	)

	return server.Run(ctx)
}
