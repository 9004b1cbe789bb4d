package api

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config はバックエンドAPIサービスの設定。環境変数から読み込む。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string `env:"PORT,default=8081"`
	// DBPath はSQLiteデータベースファイルのパス（DSN）。
	DBPath string `env:"API_DB_PATH,default=/data/api.db?_journal_mode=WAL&_busy_timeout=5000"`
	// JWTSecret はBearerトークン署名用の秘密鍵。
	JWTSecret string `env:"JWT_SECRET,default=dev-secret-key"`
	// TokenTTL は発行するBearerトークンの有効期間。
	TokenTTL time.Duration `env:"TOKEN_TTL,default=2h"`
	// SeedDemo はデモデータを投入するかどうか。
	SeedDemo bool `env:"API_SEED_DEMO,default=true"`
}

// LoadConfig は環境変数からConfigを読み込む。
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return Config{}, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	return cfg, nil
}
