// バックエンドデータAPIサービスのエントリポイント。
// 認証情報の検証とBearerトークンの発行、顧客・注文・商品データの
// 提供を担当する。BFFゲートウェイからのみ呼び出される想定で、
// ブラウザから直接アクセスされることはない。
package main

import (
	"log"

	"github.com/nao1215/ordergate/internal/api"
)

func main() {
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("APIサーバーの設定読み込みに失敗: %v", err)
	}

	server, err := api.NewServer(cfg)
	if err != nil {
		log.Fatalf("APIサーバーの初期化に失敗: %v", err)
	}

	log.Printf("APIサービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("APIサービスの起動に失敗: %v", err)
	}
}
