package bff

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config はBFFゲートウェイサービスの設定。環境変数から読み込む。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string `env:"PORT,default=8080"`
	// APIURL はバックエンドAPIのベースURL。
	APIURL string `env:"API_URL,default=http://localhost:8081"`
	// FrontendURL はCORSで許可するフロントエンドのオリジン。
	FrontendURL string `env:"FRONTEND_URL,default=http://localhost:5173"`
	// APITimeout はバックエンドAPI呼び出し1回あたりの最大待機時間。
	APITimeout time.Duration `env:"API_TIMEOUT,default=10s"`
	// SessionTTL はセッションCookieの有効期間。
	// 発行時に固定され、アクセスによる延長は行わない。
	SessionTTL time.Duration `env:"SESSION_TTL,default=2h"`
}

// LoadConfig は環境変数からConfigを読み込む。
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return Config{}, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	return cfg, nil
}
