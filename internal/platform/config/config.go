package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jinford/chat-ingest/internal/core/embedding"
)

// StoreDriver は永続化先の種別
type StoreDriver string

const (
	// StoreDriverPostgres は PostgreSQL + pgvector
	StoreDriverPostgres StoreDriver = "postgres"
	// StoreDriverSQLite は単一ファイルの SQLite
	StoreDriverSQLite StoreDriver = "sqlite"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// 永続化先
	StoreDriver StoreDriver

	// Database設定（postgres）
	Database DatabaseConfig

	// SQLite設定
	SQLite SQLiteConfig

	// OpenAI設定（第1候補の埋め込みプロバイダ）
	OpenAI OpenAIConfig

	// Gemini設定（フォールバックの埋め込みプロバイダ）
	Gemini GeminiConfig

	// Webhook受信設定
	Webhook WebhookConfig

	// 取り込みワーカー数
	IngestWorkers int

	// 1メッセージの取り込み期限
	IngestTimeout time.Duration

	// ワーカーの空きを待てる投入数（0以下なら待たずに拒否）
	IngestMaxPending int

	// ログ設定
	Log LogConfig
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SQLiteConfig は SQLite 設定
type SQLiteConfig struct {
	Path string
}

// OpenAIConfig はOpenAI Embeddings API設定
type OpenAIConfig struct {
	APIKey             string
	EmbeddingModel     string
	EmbeddingDimension int
	MaxInputTokens     int // 0以下ならトークン数で切り詰めない
}

// GeminiConfig は Gemini Embedding API設定
type GeminiConfig struct {
	APIKey         string
	EmbeddingModel string
}

// WebhookConfig はWebhookサーバ設定
type WebhookConfig struct {
	Port        int
	Path        string
	SecretToken string // 空の場合は検証しない
}

// LogConfig はログ設定
type LogConfig struct {
	Level  string
	Format string
}

// ConfigurationError は必須設定の不足を表します
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

var (
	// ErrUnknownStoreDriver は STORE_DRIVER が不正な場合のエラー
	ErrUnknownStoreDriver = errors.New("unknown store driver")

	// ErrInvalidEmbeddingDimension は OPENAI_EMBEDDING_DIMENSION が保存先の列次元と一致しない場合のエラー
	ErrInvalidEmbeddingDimension = errors.New("invalid embedding dimension")

	// ErrInvalidIngestTimeout は INGEST_TIMEOUT が正の期間でない場合のエラー
	ErrInvalidIngestTimeout = errors.New("invalid ingest timeout")
)

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		StoreDriver: StoreDriver(strings.ToLower(getEnv("STORE_DRIVER", string(StoreDriverPostgres)))),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "chatingest"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "chatingest"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "chat-ingest.db"),
		},
		OpenAI: OpenAIConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel:     getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension: getEnvAsInt("OPENAI_EMBEDDING_DIMENSION", 1536),
			MaxInputTokens:     getEnvAsInt("OPENAI_MAX_INPUT_TOKENS", 8191),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		},
		Webhook: WebhookConfig{
			Port:        getEnvAsInt("WEBHOOK_PORT", 8080),
			Path:        getEnv("WEBHOOK_PATH", "/webhook"),
			SecretToken: getEnv("WEBHOOK_SECRET_TOKEN", ""),
		},
		IngestWorkers:    getEnvAsInt("INGEST_WORKERS", 16),
		IngestTimeout:    getEnvAsDuration("INGEST_TIMEOUT", 60*time.Second),
		IngestMaxPending: getEnvAsInt("INGEST_MAX_PENDING", 256),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate は必須設定を検証します
// 埋め込みプロバイダの認証情報は任意（なければベクトルなしで動作する）
func (c *Config) Validate() error {
	var missing []string

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.Database.Host == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.Database.User == "" {
			missing = append(missing, "DB_USER")
		}
		if c.Database.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
	case StoreDriverSQLite:
		if c.SQLite.Path == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreDriver, c.StoreDriver)
	}

	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}

	// OpenAI のベクトルは固定次元の列に保存するため、それ以外の次元は受け付けない
	if c.OpenAI.EmbeddingDimension != embedding.OpenAIDimension {
		return fmt.Errorf("%w: OPENAI_EMBEDDING_DIMENSION=%d (want %d)",
			ErrInvalidEmbeddingDimension, c.OpenAI.EmbeddingDimension, embedding.OpenAIDimension)
	}
	if c.IngestTimeout <= 0 {
		return fmt.Errorf("%w: INGEST_TIMEOUT=%s", ErrInvalidIngestTimeout, c.IngestTimeout)
	}
	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は環境変数を time.ParseDuration 形式の期間として取得します
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
