// Package httpclient はゲートウェイからバックエンドAPIへのHTTP通信を行う
// クライアントを提供する。
//
// すべての外部呼び出しにタイムアウトを設定し、バックエンドのレスポンスを
// ステータスコード・ボディともにそのまま中継できる形で返す。
// Bearerトークンの付与はこのパッケージに集約し、呼び出し側が
// Authorizationヘッダーを直接組み立てることはない。
package httpclient
