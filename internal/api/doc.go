// Package api はバックエンドデータAPIサービスの内部実装を提供する。
//
// ユーザー名とパスワードを検証してBearerトークン（JWT）を発行し、
// 顧客・注文・商品のデータエンドポイントをトークン認証の下で公開する。
// 各データエンドポイントはゲートウェイから渡されるスコープ識別子
// （customer_id / agent_id）でアクセス範囲を制約する。
package api
