package bff

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/ordergate/pkg/middleware"
)

var (
	// errNoCustomerKey は顧客セッションにスコープ識別子が無いことを表す。
	errNoCustomerKey = errors.New("セッションに顧客のスコープ識別子がありません")
	// errNoAgentKey は営業担当者セッションにスコープ識別子が無いことを表す。
	errNoAgentKey = errors.New("セッションに営業担当者のスコープ識別子がありません")
	// errUnknownRole はセッションの役割が未知であることを表す。
	errUnknownRole = errors.New("セッションの役割が不正です")
)

// scope は1リクエストに適用する実効スコープ識別子。
// バックエンドAPIへのクエリパラメータはこの構造からのみ組み立てる。
type scope struct {
	// customerID は「誰のデータか」を指定する顧客識別子。
	customerID *int64
	// agentID は営業担当者の制約パラメータ。営業担当者のセッションでのみ設定される。
	agentID *int64
}

// query はスコープをバックエンドAPIのクエリパラメータに変換する。
func (sc scope) query() url.Values {
	q := url.Values{}
	if sc.customerID != nil {
		q.Set("customer_id", strconv.FormatInt(*sc.customerID, 10))
	}
	if sc.agentID != nil {
		q.Set("agent_id", strconv.FormatInt(*sc.agentID, 10))
	}
	return q
}

// resolveScope は役割に応じた実効スコープ識別子を解決する。
// 認可規則はこの関数に集約されており、各エンドポイントが個別に
// 役割分岐を持つことはない。
//
//   - 顧客: クライアントが指定した識別子は破棄し、常にセッション自身の
//     顧客識別子を使う。顧客はリクエストを細工しても他の顧客のデータに
//     到達できない。
//   - 営業担当者: 「誰のデータか」はクライアント指定の識別子を使い、
//     セッションの営業担当者識別子を制約として必ず付与する。
//
// スコープ識別子を持たないセッションは不正とみなしエラーを返す。
// エラーの場合、リクエストはバックエンドAPIに到達してはならない。
func resolveScope(session Session, requestedID *int64) (scope, error) {
	switch session.Role {
	case middleware.RoleCustomer:
		if session.CustomerID == nil {
			return scope{}, errNoCustomerKey
		}
		return scope{customerID: session.CustomerID}, nil
	case middleware.RoleAgent:
		if session.AgentID == nil {
			return scope{}, errNoAgentKey
		}
		return scope{customerID: requestedID, agentID: session.AgentID}, nil
	default:
		return scope{}, errUnknownRole
	}
}

// sessionOrAbort はセッションを復元し、無い場合は401で中断する。
func (s *Server) sessionOrAbort(c *gin.Context) (Session, bool) {
	session, ok := s.currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "有効なセッションがありません"})
	}
	return session, ok
}

// scopeOrAbort は実効スコープを解決し、失敗した場合は403で中断する。
func (s *Server) scopeOrAbort(c *gin.Context, session Session, requestedID *int64) (scope, bool) {
	sc, err := resolveScope(session, requestedID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "この操作を実行する権限がありません"})
		log.Printf("スコープ解決エラー: username=%s, role=%s: %v", session.Username, session.Role, err)
		return scope{}, false
	}
	return sc, true
}

// relay はバックエンドAPIを呼び出し、レスポンスをステータス・ボディともに
// そのままクライアントへ中継する。Bearerトークンはここで付与され、
// レスポンス側に現れることはない。通信断やタイムアウトは502として応答する。
func (s *Server) relay(c *gin.Context, session Session, method, path string, query url.Values) {
	resp, err := s.api.Relay(c.Request.Context(), method, path, query, session.Token, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "バックエンドAPIとの通信に失敗しました"})
		log.Printf("プロキシエラー: path=%s: %v", path, err)
		return
	}

	c.Data(resp.StatusCode, resp.ContentType, resp.Body)
}

// handleCustomer は顧客情報の取得を処理するハンドラを返す。
func (s *Server) handleCustomer() gin.HandlerFunc {
	return s.handleScopedFetch("/system/customer")
}

// handleBalance は顧客残高の取得を処理するハンドラを返す。
func (s *Server) handleBalance() gin.HandlerFunc {
	return s.handleScopedFetch("/system/balance")
}

// handleOrders は注文一覧の取得を処理するハンドラを返す。
func (s *Server) handleOrders() gin.HandlerFunc {
	return s.handleScopedFetch("/system/orders")
}

// handleScopedFetch は「顧客1人分のデータ取得」を処理する共通ハンドラを返す。
// 対象の顧客識別子はクエリパラメータidで受け取るが、顧客セッションでは
// 無視され常にセッション自身の識別子に置き換わる。
func (s *Server) handleScopedFetch(apiPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := s.sessionOrAbort(c)
		if !ok {
			return
		}

		requestedID, err := idQuery(c, "id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id が不正です"})
			return
		}

		sc, ok := s.scopeOrAbort(c, session, requestedID)
		if !ok {
			return
		}
		if sc.customerID == nil {
			// 営業担当者が対象の顧客を指定しなかった場合。
			c.JSON(http.StatusBadRequest, gin.H{"error": "id が必要です"})
			return
		}

		s.relay(c, session, http.MethodGet, apiPath, sc.query())
	}
}

// handleAgentCustomers は営業担当者の担当顧客一覧を処理するハンドラを返す。
// 顧客セッションからの呼び出しはバックエンドAPIに到達する前に拒否される。
func (s *Server) handleAgentCustomers() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := s.sessionOrAbort(c)
		if !ok {
			return
		}

		if session.Role != middleware.RoleAgent {
			c.JSON(http.StatusForbidden, gin.H{"error": "この操作は営業担当者のみ実行できます"})
			return
		}

		sc, ok := s.scopeOrAbort(c, session, nil)
		if !ok {
			return
		}

		s.relay(c, session, http.MethodGet, "/system/agent-customers", sc.query())
	}
}

// handleOrderDetail は注文明細の取得を処理するハンドラを返す。
// 対象の注文IDはそのまま通すが、所有関係の制約（顧客本人、または
// 担当顧客の注文）はスコープ識別子としてバックエンドAPIに渡る。
func (s *Server) handleOrderDetail() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := s.sessionOrAbort(c)
		if !ok {
			return
		}

		orderID, err := idQuery(c, "orderId")
		if err != nil || orderID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderId が必要です"})
			return
		}

		sc, ok := s.scopeOrAbort(c, session, nil)
		if !ok {
			return
		}

		q := sc.query()
		q.Set("order_id", strconv.FormatInt(*orderID, 10))

		s.relay(c, session, http.MethodGet, "/system/order-detail", q)
	}
}

// handleProducts は商品一覧の取得を処理するハンドラを返す。
// スコープ制約は無く、有効なセッションを持つ全ユーザーが参照できる。
func (s *Server) handleProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := s.sessionOrAbort(c)
		if !ok {
			return
		}

		s.relay(c, session, http.MethodGet, "/system/products", nil)
	}
}

// handleUpdateOrder は注文の更新を処理するハンドラを返す。
// リクエストボディは変更せずに通し、所有関係の制約は注文明細の取得と
// 同じ規則でスコープ識別子として付与する。
func (s *Server) handleUpdateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := s.sessionOrAbort(c)
		if !ok {
			return
		}

		orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "注文IDが不正です"})
			return
		}

		sc, ok := s.scopeOrAbort(c, session, nil)
		if !ok {
			return
		}

		s.relay(c, session, http.MethodPut, fmt.Sprintf("/system/orders/%d", orderID), sc.query())
	}
}

// idQuery は整数のクエリパラメータを解析する。
// 未指定の場合はnilを返し、数値として解析できない場合はエラーを返す。
func idQuery(c *gin.Context, name string) (*int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("クエリパラメータ %s の解析に失敗: %w", name, err)
	}
	return &v, nil
}
