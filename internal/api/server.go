package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	apidb "github.com/nao1215/ordergate/internal/api/db"
	"github.com/nao1215/ordergate/pkg/middleware"
)

// Server はバックエンドデータAPIサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はサービス設定。
	cfg Config
	// queries はクエリ実行オブジェクト。
	queries *apidb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewServer は新しいバックエンドAPIサーバーを生成する。
// SQLiteデータベースの初期化とスキーマ適用を行う。
func NewServer(cfg Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	if cfg.SeedDemo {
		if err := applyDemoSeed(sqlDB); err != nil {
			return nil, fmt.Errorf("デモデータ初期化に失敗: %w", err)
		}
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:  router,
		cfg:     cfg,
		queries: apidb.New(sqlDB),
		db:      sqlDB,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証エンドポイント（トークン不要）
	auth := s.router.Group("/auth")
	{
		auth.POST("/login", s.handleLogin())
	}

	// Bearerトークン必須のデータエンドポイント
	system := s.router.Group("/system")
	system.Use(middleware.RequireAuth(s.cfg.JWTSecret))
	{
		// 顧客情報の取得
		system.GET("/customer", s.handleGetCustomer())
		// 顧客の残高（注文合計）の取得
		system.GET("/balance", s.handleGetBalance())
		// 営業担当者の担当顧客一覧
		system.GET("/agent-customers", s.handleAgentCustomers())
		// 注文一覧
		system.GET("/orders", s.handleListOrders())
		// 注文明細
		system.GET("/order-detail", s.handleOrderDetail())
		// 商品一覧
		system.GET("/products", s.handleListProducts())
		// 注文の更新
		system.PUT("/orders/:id", s.handleUpdateOrder())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "api"})
	})
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Username はユーザー名。
	Username string `json:"username" binding:"required"`
	// Password はパスワード。
	Password string `json:"password" binding:"required"`
}

// loginResponse はログイン成功時のJSONレスポンス構造。
type loginResponse struct {
	// Token は発行されたBearerトークン。
	Token string `json:"token"`
	// Username は認証済みユーザーのユーザー名。
	Username string `json:"username"`
	// Role はユーザーの役割。
	Role middleware.Role `json:"role"`
	// CustomerID は顧客のスコープ識別子。顧客以外はnull。
	CustomerID *int64 `json:"customer_id,omitempty"`
	// AgentID は営業担当者のスコープ識別子。営業担当者以外はnull。
	AgentID *int64 `json:"agent_id,omitempty"`
}

// handleLogin はユーザー名とパスワードを検証してBearerトークンを発行する
// ハンドラを返す。存在しないユーザーとパスワード不一致は、ユーザーの存在を
// 漏らさないために同じ401で応答する。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		user, err := s.queries.GetUserByUsername(c.Request.Context(), req.Username)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名またはパスワードが違います"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの取得に失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		if user.Password != req.Password {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名またはパスワードが違います"})
			return
		}

		role := middleware.Role(user.Role)
		customerID := nullToPtr(user.CustomerID)
		agentID := nullToPtr(user.AgentID)

		token, err := middleware.GenerateToken(s.cfg.JWTSecret, user.Username, role, customerID, agentID, s.cfg.TokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークン生成に失敗しました"})
			log.Printf("トークン生成エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, loginResponse{
			Token:      token,
			Username:   user.Username,
			Role:       role,
			CustomerID: customerID,
			AgentID:    agentID,
		})
	}
}

// customerResponse は顧客情報のJSONレスポンス構造。
type customerResponse struct {
	// CustomerID は顧客の識別番号。
	CustomerID int64 `json:"customer_id"`
	// Name は顧客名。
	Name string `json:"name"`
}

// handleGetCustomer は顧客情報の取得を処理するハンドラを返す。
// agent_idが指定された場合、その営業担当者の担当顧客に限定して検索する。
func (s *Server) handleGetCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, err := int64Query(c, "customer_id")
		if err != nil || customerID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id が必要です"})
			return
		}
		agentID, err := int64Query(c, "agent_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "agent_id が不正です"})
			return
		}

		var customer apidb.Customer
		if agentID != nil {
			customer, err = s.queries.GetCustomerOfAgent(c.Request.Context(), apidb.GetCustomerOfAgentParams{
				CustomerID: *customerID,
				AgentID:    *agentID,
			})
		} else {
			customer, err = s.queries.GetCustomerByID(c.Request.Context(), *customerID)
		}
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("顧客 %d が見つかりません", *customerID)})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "顧客の取得に失敗しました"})
			log.Printf("顧客取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, customerResponse{
			CustomerID: customer.CustomerID,
			Name:       customer.Name,
		})
	}
}

// balanceResponse は顧客残高のJSONレスポンス構造。
type balanceResponse struct {
	// CustomerID は顧客の識別番号。
	CustomerID int64 `json:"customer_id"`
	// Name は顧客名。
	Name string `json:"name"`
	// Balance は全注文の合計金額。
	Balance float64 `json:"balance"`
}

// handleGetBalance は顧客の残高（全注文の合計金額）の取得を処理するハンドラを返す。
// 顧客が存在しない場合は残高0・空の名前で200を返す。
func (s *Server) handleGetBalance() gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, err := int64Query(c, "customer_id")
		if err != nil || customerID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id が必要です"})
			return
		}
		agentID, err := int64Query(c, "agent_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "agent_id が不正です"})
			return
		}

		var customer apidb.Customer
		if agentID != nil {
			customer, err = s.queries.GetCustomerOfAgent(c.Request.Context(), apidb.GetCustomerOfAgentParams{
				CustomerID: *customerID,
				AgentID:    *agentID,
			})
		} else {
			customer, err = s.queries.GetCustomerByID(c.Request.Context(), *customerID)
		}
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusOK, balanceResponse{CustomerID: *customerID})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "顧客の取得に失敗しました"})
			log.Printf("顧客取得エラー: %v", err)
			return
		}

		balance, err := s.queries.SumOrderTotals(c.Request.Context(), customer.CustomerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "残高の集計に失敗しました"})
			log.Printf("残高集計エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, balanceResponse{
			CustomerID: customer.CustomerID,
			Name:       customer.Name,
			Balance:    balance,
		})
	}
}

// handleAgentCustomers は営業担当者の担当顧客一覧を処理するハンドラを返す。
// 各顧客の残高も併せて返す。
func (s *Server) handleAgentCustomers() gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID, err := int64Query(c, "agent_id")
		if err != nil || agentID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "agent_id が必要です"})
			return
		}

		customers, err := s.queries.ListCustomersByAgent(c.Request.Context(), *agentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "担当顧客の取得に失敗しました"})
			log.Printf("担当顧客取得エラー: %v", err)
			return
		}

		responses := make([]balanceResponse, 0, len(customers))
		for _, customer := range customers {
			balance, err := s.queries.SumOrderTotals(c.Request.Context(), customer.CustomerID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "残高の集計に失敗しました"})
				log.Printf("残高集計エラー: %v", err)
				return
			}
			responses = append(responses, balanceResponse{
				CustomerID: customer.CustomerID,
				Name:       customer.Name,
				Balance:    balance,
			})
		}

		c.JSON(http.StatusOK, responses)
	}
}

// orderResponse は注文のJSONレスポンス構造。
type orderResponse struct {
	// ID は注文の一意識別子。
	ID int64 `json:"id"`
	// Date は注文日（YYYY-MM-DD形式）。
	Date string `json:"date"`
	// Total は注文の合計金額。
	Total float64 `json:"total"`
	// CustomerID は注文した顧客の識別番号。
	CustomerID int64 `json:"customer_id"`
	// Username は注文を登録したユーザー名。
	Username string `json:"username"`
}

// toOrderResponse はDB行をJSONレスポンスに変換する。
func toOrderResponse(o apidb.Order) orderResponse {
	return orderResponse{
		ID:         o.ID,
		Date:       o.Date,
		Total:      o.Total,
		CustomerID: o.CustomerID,
		Username:   o.Username,
	}
}

// handleListOrders は注文一覧の取得を処理するハンドラを返す。
// agent_idが指定された場合、顧客がその営業担当者の担当であるときのみ
// 注文が返る。
func (s *Server) handleListOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, err := int64Query(c, "customer_id")
		if err != nil || customerID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id が必要です"})
			return
		}
		agentID, err := int64Query(c, "agent_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "agent_id が不正です"})
			return
		}

		var orders []apidb.Order
		if agentID != nil {
			orders, err = s.queries.ListOrdersByCustomerForAgent(c.Request.Context(), apidb.ListOrdersByCustomerForAgentParams{
				CustomerID: *customerID,
				AgentID:    *agentID,
			})
		} else {
			orders, err = s.queries.ListOrdersByCustomer(c.Request.Context(), *customerID)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "注文一覧の取得に失敗しました"})
			log.Printf("注文一覧取得エラー: %v", err)
			return
		}

		responses := make([]orderResponse, 0, len(orders))
		for _, o := range orders {
			responses = append(responses, toOrderResponse(o))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// orderItemResponse は注文明細のJSONレスポンス構造。
type orderItemResponse struct {
	// ID は明細行の一意識別子。
	ID int64 `json:"id"`
	// OrderID は明細が属する注文のID。
	OrderID int64 `json:"order_id"`
	// Product は商品の説明。
	Product string `json:"product"`
	// Quantity は数量。
	Quantity int64 `json:"quantity"`
	// Price は単価。
	Price float64 `json:"price"`
	// Subtotal は小計。
	Subtotal float64 `json:"subtotal"`
}

// handleOrderDetail は注文明細の取得を処理するハンドラを返す。
// customer_idまたはagent_idのどちらかが必須で、所有関係はSQLの結合で
// 強制される。所有していない注文の明細は空の一覧になる。
func (s *Server) handleOrderDetail() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := int64Query(c, "order_id")
		if err != nil || orderID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order_id が必要です"})
			return
		}
		customerID, err := int64Query(c, "customer_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id が不正です"})
			return
		}
		agentID, err := int64Query(c, "agent_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "agent_id が不正です"})
			return
		}
		if customerID == nil && agentID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id または agent_id が必要です"})
			return
		}

		var items []apidb.OrderItem
		if customerID != nil {
			items, err = s.queries.ListOrderItemsForCustomer(c.Request.Context(), apidb.ListOrderItemsForCustomerParams{
				OrderID:    *orderID,
				CustomerID: *customerID,
			})
		} else {
			items, err = s.queries.ListOrderItemsForAgent(c.Request.Context(), apidb.ListOrderItemsForAgentParams{
				OrderID: *orderID,
				AgentID: *agentID,
			})
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "注文明細の取得に失敗しました"})
			log.Printf("注文明細取得エラー: %v", err)
			return
		}

		responses := make([]orderItemResponse, 0, len(items))
		for _, it := range items {
			responses = append(responses, orderItemResponse{
				ID:       it.ID,
				OrderID:  it.OrderID,
				Product:  it.Product,
				Quantity: it.Quantity,
				Price:    it.Price,
				Subtotal: it.Subtotal,
			})
		}

		c.JSON(http.StatusOK, responses)
	}
}

// productResponse は商品のJSONレスポンス構造。
type productResponse struct {
	// ID は商品の一意識別子。
	ID int64 `json:"id"`
	// Description は商品の説明。
	Description string `json:"description"`
	// Price は単価。
	Price float64 `json:"price"`
}

// handleListProducts は商品一覧の取得を処理するハンドラを返す。
func (s *Server) handleListProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := s.queries.ListProducts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "商品一覧の取得に失敗しました"})
			log.Printf("商品一覧取得エラー: %v", err)
			return
		}

		responses := make([]productResponse, 0, len(products))
		for _, p := range products {
			responses = append(responses, productResponse{
				ID:          p.ID,
				Description: p.Description,
				Price:       p.Price,
			})
		}

		c.JSON(http.StatusOK, responses)
	}
}

// updateOrderRequest は注文更新リクエストのJSON構造。
// 指定されなかったフィールドは変更しない。
type updateOrderRequest struct {
	// Date は新しい注文日（YYYY-MM-DD形式）。
	Date *string `json:"date"`
	// Total は新しい合計金額。
	Total *float64 `json:"total"`
}

// handleUpdateOrder は注文の日付と合計金額の更新を処理するハンドラを返す。
// 更新の前に、明細取得と同じ所有関係（顧客本人、または担当顧客の注文）を
// 確認し、所有していない注文は存在しないものとして404を返す。
func (s *Server) handleUpdateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "注文IDが不正です"})
			return
		}

		customerID, err := int64Query(c, "customer_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id が不正です"})
			return
		}
		agentID, err := int64Query(c, "agent_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "agent_id が不正です"})
			return
		}
		if customerID == nil && agentID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id または agent_id が必要です"})
			return
		}

		var req updateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		// 所有関係を確認する。所有していない注文は404として扱う。
		var order apidb.Order
		if customerID != nil {
			order, err = s.queries.GetOrderForCustomer(c.Request.Context(), apidb.GetOrderForCustomerParams{
				ID:         orderID,
				CustomerID: *customerID,
			})
		} else {
			order, err = s.queries.GetOrderForAgent(c.Request.Context(), apidb.GetOrderForAgentParams{
				ID:      orderID,
				AgentID: *agentID,
			})
		}
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("注文 %d が見つかりません", orderID)})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "注文の取得に失敗しました"})
			log.Printf("注文取得エラー: %v", err)
			return
		}

		date := order.Date
		if req.Date != nil {
			date = *req.Date
		}
		total := order.Total
		if req.Total != nil {
			total = *req.Total
		}

		if err := s.queries.UpdateOrder(c.Request.Context(), apidb.UpdateOrderParams{
			ID:    orderID,
			Date:  date,
			Total: total,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "注文の更新に失敗しました"})
			log.Printf("注文更新エラー: %v", err)
			return
		}

		updated, err := s.queries.GetOrderByID(c.Request.Context(), orderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新した注文の取得に失敗しました"})
			log.Printf("注文取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toOrderResponse(updated))
	}
}

// int64Query は整数のクエリパラメータを解析する。
// 未指定の場合はnilを返し、数値として解析できない場合はエラーを返す。
func int64Query(c *gin.Context, name string) (*int64, error) {
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

// nullToPtr はsql.NullInt64を*int64に変換する。
func nullToPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
