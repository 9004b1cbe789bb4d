// Package bff はセッション仲介ゲートウェイ（BFF）の内部実装を提供する。
//
// ブラウザとの間はHttpOnlyのセッションCookieのみで対話し、バックエンドAPIの
// Bearerトークンはサーバー側のセッションレコードにのみ保持する。トークンが
// クライアントに渡ることはない。保護されたデータエンドポイントは、役割に
// 応じた実効スコープ識別子を解決してからバックエンドAPIへ転送し、
// レスポンスをステータス・ボディともにそのまま中継する。
package bff
