// セッション仲介ゲートウェイ（BFF）サービスのエントリポイント。
// ブラウザのセッションをHttpOnly Cookieで終端し、バックエンドAPIの
// Bearerトークンをサーバー側にのみ保持する。外部からアクセス可能な
// 唯一のサービスであり、セキュリティの境界線となる。
package main

import (
	"log"

	"github.com/nao1215/ordergate/internal/bff"
)

func main() {
	cfg, err := bff.LoadConfig()
	if err != nil {
		log.Fatalf("BFFサーバーの設定読み込みに失敗: %v", err)
	}

	// セッションストアの生存期間はプロセスの生存期間と同じ。
	// 再起動するとすべてのセッションが失われ、再ログインが必要になる。
	sessions := bff.NewSessionStore()
	server := bff.NewServer(cfg, sessions)

	log.Printf("BFFサービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("BFFサービスの起動に失敗: %v", err)
	}
}
