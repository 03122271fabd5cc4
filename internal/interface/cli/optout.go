package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// OptOutAddAction は送信者をオプトアウト登録するコマンドのアクション
func OptOutAddAction(ctx context.Context, cmd *cli.Command) error {
	senderID := cmd.Int64("user")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if !appCtx.Container.PrivacyGate.OptOut(ctx, senderID) {
		return fmt.Errorf("failed to opt out sender %d", senderID)
	}

	fmt.Fprintf(output(cmd), "✓ 送信者 %d をオプトアウトしました（以降のメッセージは保存されません）\n", senderID)
	return nil
}

// OptOutRemoveAction はオプトアウトを解除するコマンドのアクション
func OptOutRemoveAction(ctx context.Context, cmd *cli.Command) error {
	senderID := cmd.Int64("user")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if !appCtx.Container.PrivacyGate.OptIn(ctx, senderID) {
		return fmt.Errorf("failed to opt in sender %d", senderID)
	}

	fmt.Fprintf(output(cmd), "✓ 送信者 %d のオプトアウトを解除しました\n", senderID)
	return nil
}

// OptOutStatusAction はオプトアウト状態を表示するコマンドのアクション
func OptOutStatusAction(ctx context.Context, cmd *cli.Command) error {
	senderID := cmd.Int64("user")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if appCtx.Container.PrivacyGate.IsOptedOut(ctx, senderID) {
		fmt.Fprintf(output(cmd), "送信者 %d: オプトアウト済み\n", senderID)
	} else {
		fmt.Fprintf(output(cmd), "送信者 %d: 収集対象\n", senderID)
	}
	return nil
}

// OptOutPurgeAction は送信者のメッセージを削除するコマンドのアクション
func OptOutPurgeAction(ctx context.Context, cmd *cli.Command) error {
	senderID := cmd.Int64("user")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	deleted, ok := appCtx.Container.PrivacyGate.PurgeMessages(ctx, senderID)
	if !ok {
		return fmt.Errorf("failed to purge messages of sender %d", senderID)
	}

	fmt.Fprintf(output(cmd), "✓ 送信者 %d のメッセージを %d 件削除しました\n", senderID, deleted)
	return nil
}

// OptOutForgetAction はオプトアウト登録とメッセージ削除をまとめて行うコマンドのアクション
func OptOutForgetAction(ctx context.Context, cmd *cli.Command) error {
	senderID := cmd.Int64("user")

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	deleted, ok := appCtx.Container.PrivacyGate.Forget(ctx, senderID)
	if !ok {
		return fmt.Errorf("failed to forget sender %d", senderID)
	}

	fmt.Fprintf(output(cmd), "✓ 送信者 %d をオプトアウトし、メッセージを %d 件削除しました\n", senderID, deleted)
	return nil
}
