package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client はバックエンドAPI通信用のHTTPクライアント。
// すべてのリクエストにタイムアウトが適用される。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先サービスのベースURL。
	baseURL string
}

// New は新しいバックエンドAPI通信用HTTPクライアントを生成する。
// baseURLには接続先サービスのベースURL（例: "http://api:8081"）を指定する。
// timeoutは1リクエストあたりの最大待機時間で、応答しない相手に
// ハンドラを占有させないための上限となる。
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信し、
// ステータスコードを返す。2xxの場合のみレスポンスボディをresultに
// デシリアライズする。非2xxはエラーではなくステータスコードで通知され、
// 通信断・タイムアウト・不正なレスポンス形式のみがエラーとなる。
func (c *Client) PostJSON(ctx context.Context, path string, body any, result any) (int, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 失敗時のボディは読み捨てる。判断はステータスコードで行う。
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// RelayResponse はバックエンドAPIのレスポンスをそのまま中継するための形。
type RelayResponse struct {
	// StatusCode はバックエンドが返したHTTPステータスコード。
	StatusCode int
	// ContentType はレスポンスのContent-Typeヘッダー。
	ContentType string
	// Body はレスポンスボディ。
	Body []byte
}

// Relay は指定パスにBearerトークン付きのリクエストを送信し、
// レスポンスを加工せずに返す。バックエンドが成功・失敗どちらを返しても
// そのまま中継できるよう、非2xxもエラーにはしない。
// エラーになるのは通信断・タイムアウトの場合のみ。
func (c *Client) Relay(ctx context.Context, method, path string, query url.Values, bearer string, body io.Reader) (*RelayResponse, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	return &RelayResponse{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        respBody,
	}, nil
}
