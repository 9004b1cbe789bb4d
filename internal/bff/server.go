package bff

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nao1215/ordergate/pkg/httpclient"
	"github.com/nao1215/ordergate/pkg/middleware"
)

// sessionCookieName はブラウザに発行するセッションCookieの名前。
// 値はセッションIDのみで、意味のある情報は一切含まない。
const sessionCookieName = "bff_session"

// Server はセッション仲介ゲートウェイのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はサービス設定。
	cfg Config
	// sessions はメモリ上のセッションストア。
	sessions *SessionStore
	// api はバックエンドAPIへのHTTPクライアント。
	api *httpclient.Client
}

// NewServer は新しいゲートウェイサーバーを生成する。
// セッションストアは呼び出し側が生成して注入する。
func NewServer(cfg Config, sessions *SessionStore) *Server {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))

	s := &Server{
		router:   router,
		cfg:      cfg,
		sessions: sessions,
		api:      httpclient.New(cfg.APIURL, cfg.APITimeout),
	}
	s.setupRoutes()

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	bff := s.router.Group("/bff")
	{
		// セッションの確立・参照・破棄
		bff.POST("/login", s.handleLogin())
		bff.GET("/user", s.handleGetUser())
		bff.POST("/logout", s.handleLogout())

		// セッションCookie必須のデータエンドポイント
		data := bff.Group("/data")
		{
			data.GET("/customer", s.handleCustomer())
			data.GET("/balance", s.handleBalance())
			data.GET("/agent-customers", s.handleAgentCustomers())
			data.GET("/orders", s.handleOrders())
			data.GET("/order-detail", s.handleOrderDetail())
			data.GET("/products", s.handleProducts())
			data.PUT("/orders/:id", s.handleUpdateOrder())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "bff"})
	})
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Username はユーザー名。
	Username string `json:"username" binding:"required"`
	// Password はパスワード。
	Password string `json:"password" binding:"required"`
}

// apiLoginResponse はバックエンドAPIのログインレスポンスのJSON構造。
type apiLoginResponse struct {
	// Token は発行されたBearerトークン。
	Token string `json:"token"`
	// Username は認証済みユーザーのユーザー名。
	Username string `json:"username"`
	// Role はユーザーの役割。
	Role middleware.Role `json:"role"`
	// CustomerID は顧客のスコープ識別子。
	CustomerID *int64 `json:"customer_id"`
	// AgentID は営業担当者のスコープ識別子。
	AgentID *int64 `json:"agent_id"`
}

// sessionResponse はクライアントへ返すセッション情報のJSON構造。
// Bearerトークンはこの構造に含まれず、クライアントに渡ることはない。
type sessionResponse struct {
	// Username はユーザー名。
	Username string `json:"username"`
	// Role はユーザーの役割。
	Role middleware.Role `json:"role"`
	// CustomerID は顧客のスコープ識別子。顧客以外はnull。
	CustomerID *int64 `json:"customer_id,omitempty"`
	// AgentID は営業担当者のスコープ識別子。営業担当者以外はnull。
	AgentID *int64 `json:"agent_id,omitempty"`
}

// handleLogin はログインを処理するハンドラを返す。
// 認証情報をバックエンドAPIに転送し、成功した場合のみセッションを作成して
// HttpOnlyのセッションCookieを発行する。認証失敗（401）と認証サービス自体の
// 障害（502）は呼び出し側が区別できるよう別のステータスで応答する。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		var apiResp apiLoginResponse
		status, err := s.api.PostJSON(c.Request.Context(), "/auth/login", req, &apiResp)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "認証サービスへの接続に失敗しました"})
			log.Printf("ログインプロキシエラー: %v", err)
			return
		}
		if status == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名またはパスワードが違います"})
			return
		}
		if status < 200 || status >= 300 {
			c.JSON(http.StatusBadGateway, gin.H{"error": "認証サービスがエラーを返しました"})
			log.Printf("ログインプロキシエラー: status=%d", status)
			return
		}
		if apiResp.Token == "" || !apiResp.Role.Valid() {
			c.JSON(http.StatusBadGateway, gin.H{"error": "認証サービスが不正なレスポンスを返しました"})
			log.Printf("ログインプロキシエラー: トークンまたは役割が欠落")
			return
		}

		session := Session{
			Username:   apiResp.Username,
			Role:       apiResp.Role,
			CustomerID: normalizeKey(apiResp.CustomerID),
			AgentID:    normalizeKey(apiResp.AgentID),
			Token:      apiResp.Token,
		}

		sessionID := uuid.New().String()
		s.sessions.Put(sessionID, session)

		// Cookieの値はセッションIDのみ。SameSite=NoneのためSecureは必須。
		c.SetSameSite(http.SameSiteNoneMode)
		c.SetCookie(sessionCookieName, sessionID, int(s.cfg.SessionTTL.Seconds()), "/", "", true, true)

		c.JSON(http.StatusOK, sessionResponse{
			Username:   session.Username,
			Role:       session.Role,
			CustomerID: session.CustomerID,
			AgentID:    session.AgentID,
		})
	}
}

// handleGetUser は現在のセッション情報の取得を処理するハンドラを返す。
func (s *Server) handleGetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := s.currentSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "有効なセッションがありません"})
			return
		}

		c.JSON(http.StatusOK, sessionResponse{
			Username:   session.Username,
			Role:       session.Role,
			CustomerID: session.CustomerID,
			AgentID:    session.AgentID,
		})
	}
}

// handleLogout はログアウトを処理するハンドラを返す。
// セッションレコードの削除とCookieの破棄を行う。セッションが存在しない
// 場合でも常に成功する（冪等）。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID, err := c.Cookie(sessionCookieName); err == nil {
			s.sessions.Remove(sessionID)
		}

		// Cookieはセッションの有無に関わらずクライアント側から削除する。
		c.SetSameSite(http.SameSiteNoneMode)
		c.SetCookie(sessionCookieName, "", -1, "/", "", true, true)

		c.JSON(http.StatusOK, gin.H{"message": "ログアウトしました"})
	}
}

// currentSession はリクエストのCookieからセッションレコードを復元する。
// Cookieが無い場合と未知のセッションIDの場合は区別せずfalseを返し、
// セッションの存在有無を外部に漏らさない。
func (s *Server) currentSession(c *gin.Context) (Session, bool) {
	sessionID, err := c.Cookie(sessionCookieName)
	if err != nil {
		return Session{}, false
	}
	return s.sessions.Get(sessionID)
}

// normalizeKey はスコープ識別子を正規化する。
// スコープ識別子は常に正の整数であり、0以下は「識別子なし」として
// nilに変換する。以降の処理でゼロ値の番兵判定は行わない。
func normalizeKey(key *int64) *int64 {
	if key == nil || *key <= 0 {
		return nil
	}
	return key
}
