package webhook

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinford/chat-ingest/internal/core/ingestion"
)

const (
	// SecretTokenHeader は Webhook 登録時に指定した共有シークレットを運ぶヘッダ
	SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

	// DefaultMaxBodyBytes は受け付ける更新イベントの最大サイズ
	DefaultMaxBodyBytes int64 = 1 << 20
)

// Submitter は取り込みタスクを非同期に投入する
type Submitter interface {
	Submit(msg ingestion.IncomingMessage) error
}

// StatusFunc はヘルスチェックで返すプロバイダ名と利用可否を返す
type StatusFunc func() (provider string, available bool)

// Handler は Webhook リクエストを処理する
type Handler struct {
	submitter    Submitter
	status       StatusFunc
	maxBodyBytes int64
	logger       *slog.Logger
}

// HandlerOption は Handler のオプション設定
type HandlerOption func(*Handler)

// WithHandlerLogger はロガーを差し替える
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMaxBodyBytes はリクエストボディの上限を設定する
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handler) {
		h.maxBodyBytes = n
	}
}

// WithStatus はヘルスチェックの状態取得関数を設定する
func WithStatus(fn StatusFunc) HandlerOption {
	return func(h *Handler) {
		h.status = fn
	}
}

// NewHandler は新しい Handler を作成する
func NewHandler(submitter Submitter, opts ...HandlerOption) *Handler {
	h := &Handler{
		submitter:    submitter,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = DefaultMaxBodyBytes
	}
	return h
}

// Receive は更新イベントを受け取り、取り込みタスクを投入する
// 処理の完了は待たずに応答する
// POST {WEBHOOK_PATH}
func (h *Handler) Receive(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var update Update
	if err := c.ShouldBindJSON(&update); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("Webhookリクエストが上限サイズを超えています", "limit", tooLarge.Limit)
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "update payload too large"})
			return
		}
		h.logger.Warn("Webhookリクエストの解析に失敗しました", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}

	msg, ok := update.toIncoming()
	if !ok {
		h.logger.Debug("取り込み対象外の更新を無視します", "update_id", update.UpdateID)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err := h.submitter.Submit(msg); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingestion is not accepting messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// Health は稼働状態を返す
// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.status != nil {
		provider, available := h.status()
		resp["embedding_provider"] = provider
		resp["embedding_available"] = available
	}
	c.JSON(http.StatusOK, resp)
}

// SecretTokenMiddleware は共有シークレットを定数時間で比較する
// secret が空の場合は検証しない
func SecretTokenMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		token := c.GetHeader(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// SetupRoutes はルーティングを登録する
func SetupRoutes(r *gin.Engine, h *Handler, path, secret string) {
	r.GET("/healthz", h.Health)
	r.POST(path, SecretTokenMiddleware(secret), h.Receive)
}
