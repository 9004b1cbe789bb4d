// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// バックエンドAPIのBearerトークン検証、パニックリカバリ、
// Cookie送信を許可するCORS設定など、両サービスで共通して使用する
// ミドルウェアを含む。
package middleware
