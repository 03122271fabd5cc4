package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	// DefaultWorkerCount は同時に処理するメッセージ数のデフォルト値
	DefaultWorkerCount = 16
	// DefaultShutdownTimeout は Close 時に処理中タスクを待つ最大時間
	DefaultShutdownTimeout = 30 * time.Second
	// DefaultTaskTimeout は1メッセージの取り込みにかける最大時間
	DefaultTaskTimeout = 60 * time.Second
	// DefaultMaxPending はワーカーの空きを待てる投入数の上限
	DefaultMaxPending = 256
)

// Dispatcher は受信メッセージごとに独立したタスクとして Pipeline.Ingest を実行する
// 異なるメッセージ間の完了順序は保証しない
type Dispatcher struct {
	pipeline        *Pipeline
	pool            *ants.Pool
	baseCtx         context.Context
	taskTimeout     time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	onDone          func(IncomingMessage, State)
}

type dispatcherOptions struct {
	workers         int
	maxPending      int
	taskTimeout     time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	onDone          func(IncomingMessage, State)
}

// DispatcherOption は Dispatcher のオプション設定
type DispatcherOption func(*dispatcherOptions)

// WithWorkerCount は同時実行数を設定する
func WithWorkerCount(n int) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.workers = n
	}
}

// WithTaskTimeout は1メッセージの取り込みの期限を設定する
// 期限を過ぎた埋め込み生成や保存は打ち切られ、ワーカーは次のメッセージに移る
func WithTaskTimeout(d time.Duration) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.taskTimeout = d
	}
}

// WithMaxPending はワーカーの空きを待てる投入数を設定する
// 0以下の場合は待たずに ErrDispatcherOverloaded を返す
func WithMaxPending(n int) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.maxPending = n
	}
}

// WithShutdownTimeout は Close 時の待機時間を設定する
func WithShutdownTimeout(d time.Duration) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.shutdownTimeout = d
	}
}

// WithDispatcherLogger はロガーを差し替える
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.logger = logger
	}
}

// WithCompletionHook は各メッセージの終端状態を受け取るフックを設定する
func WithCompletionHook(fn func(IncomingMessage, State)) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.onDone = fn
	}
}

// NewDispatcher は新しい Dispatcher を作成する
// ctx はタスクに値を引き継ぐために使い、キャンセルは伝播しない
func NewDispatcher(ctx context.Context, pipeline *Pipeline, opts ...DispatcherOption) (*Dispatcher, error) {
	options := dispatcherOptions{
		workers:         DefaultWorkerCount,
		maxPending:      DefaultMaxPending,
		taskTimeout:     DefaultTaskTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.workers <= 0 {
		options.workers = DefaultWorkerCount
	}
	if options.taskTimeout <= 0 {
		options.taskTimeout = DefaultTaskTimeout
	}

	poolOpts := []ants.Option{
		ants.WithPanicHandler(func(p any) {
			options.logger.Error("取り込みタスクでpanicが発生しました", "panic", fmt.Sprint(p))
		}),
	}
	if options.maxPending > 0 {
		poolOpts = append(poolOpts, ants.WithMaxBlockingTasks(options.maxPending))
	} else {
		poolOpts = append(poolOpts, ants.WithNonblocking(true))
	}

	pool, err := ants.NewPool(options.workers, poolOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Dispatcher{
		pipeline:        pipeline,
		pool:            pool,
		baseCtx:         context.WithoutCancel(ctx),
		taskTimeout:     options.taskTimeout,
		shutdownTimeout: options.shutdownTimeout,
		logger:          options.logger,
		onDone:          options.onDone,
	}, nil
}

// Submit はメッセージの取り込みタスクを投入する
// 空きワーカーがない場合は待機し、待機数が上限に達していれば ErrDispatcherOverloaded を返す
func (d *Dispatcher) Submit(msg IncomingMessage) error {
	err := d.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(d.baseCtx, d.taskTimeout)
		defer cancel()

		state := d.pipeline.Ingest(ctx, msg)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			d.logger.Warn("取り込みタスクが期限を超過しました",
				"external_message_id", msg.ExternalMessageID,
				"conversation_id", msg.ConversationID,
				"state", state,
				"timeout", d.taskTimeout,
			)
		}
		if d.onDone != nil {
			d.onDone(msg, state)
		}
	})
	if errors.Is(err, ants.ErrPoolOverload) {
		d.logger.Warn("取り込みワーカーが飽和しているため投入を拒否しました",
			"external_message_id", msg.ExternalMessageID,
		)
		return fmt.Errorf("%w: %w", ErrDispatcherOverloaded, err)
	}
	if err != nil {
		d.logger.Error("取り込みタスクの投入に失敗しました",
			"external_message_id", msg.ExternalMessageID,
			"error", err,
		)
		return fmt.Errorf("failed to submit ingestion task: %w", err)
	}
	return nil
}

// Running は稼働中のワーカー数を返す
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Close は新規投入を止め、処理中のタスクの完了を待つ
func (d *Dispatcher) Close() error {
	if err := d.pool.ReleaseTimeout(d.shutdownTimeout); err != nil {
		return fmt.Errorf("failed to release worker pool: %w", err)
	}
	return nil
}
