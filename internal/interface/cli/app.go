package cli

import (
	"github.com/urfave/cli/v3"
)

// NewCommand はルートコマンドを作成する
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat-ingest",
		Usage: "グループチャットのメッセージを埋め込みベクトル付きで保存する取り込みサービス",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Webhookサーバを起動してメッセージを取り込む",
				Flags:  []cli.Flag{envFlag()},
				Action: ServeAction,
			},
			{
				Name:  "optout",
				Usage: "オプトアウト管理コマンド",
				Commands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "送信者をオプトアウト登録",
						Flags:  []cli.Flag{envFlag(), userFlag(true)},
						Action: OptOutAddAction,
					},
					{
						Name:   "remove",
						Usage:  "オプトアウトを解除",
						Flags:  []cli.Flag{envFlag(), userFlag(true)},
						Action: OptOutRemoveAction,
					},
					{
						Name:   "status",
						Usage:  "オプトアウト状態を表示",
						Flags:  []cli.Flag{envFlag(), userFlag(true)},
						Action: OptOutStatusAction,
					},
					{
						Name:   "purge",
						Usage:  "送信者の保存済みメッセージを削除",
						Flags:  []cli.Flag{envFlag(), userFlag(true)},
						Action: OptOutPurgeAction,
					},
					{
						Name:   "forget",
						Usage:  "オプトアウト登録と削除を同時に実行",
						Flags:  []cli.Flag{envFlag(), userFlag(true)},
						Action: OptOutForgetAction,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "保存件数と埋め込みプロバイダの状態を表示",
				Flags:  []cli.Flag{envFlag(), userFlag(false)},
				Action: StatsAction,
			},
			{
				Name:  "db",
				Usage: "データベース管理コマンド",
				Commands: []*cli.Command{
					{
						Name:   "migrate",
						Usage:  "スキーマを適用",
						Flags:  []cli.Flag{envFlag()},
						Action: DBMigrateAction,
					},
				},
			},
		},
	}
}
