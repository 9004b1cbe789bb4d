package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSecret はテスト用のJWTシークレット。
const testSecret = "test-secret-key-for-unit-tests"

// ptr はint64のポインタを返すテスト用ヘルパー。
func ptr(v int64) *int64 {
	return &v
}

// TestGenerateToken はGenerateToken関数を検証する。
func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("顧客のトークンを正常に生成できること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateToken(testSecret, "cliente1", RoleCustomer, ptr(11111111), nil, time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken()でエラーが発生: %v", err)
		}
		if tokenStr == "" {
			t.Fatal("GenerateToken()が空文字列を返した")
		}

		// トークンをパースして検証する
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		})
		if err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}
		if !token.Valid {
			t.Fatal("トークンが無効")
		}

		if claims.Username != "cliente1" {
			t.Errorf("Username = %q, want %q", claims.Username, "cliente1")
		}
		if claims.Role != RoleCustomer {
			t.Errorf("Role = %q, want %q", claims.Role, RoleCustomer)
		}
		if claims.CustomerID == nil || *claims.CustomerID != 11111111 {
			t.Errorf("CustomerID = %v, want %d", claims.CustomerID, 11111111)
		}
		if claims.AgentID != nil {
			t.Errorf("AgentID = %v, want nil", claims.AgentID)
		}
		if claims.Issuer != "ordergate-api" {
			t.Errorf("Issuer = %q, want %q", claims.Issuer, "ordergate-api")
		}
	})

	t.Run("営業担当者のトークンにagent_idクレームが含まれること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateToken(testSecret, "vendedor1", RoleAgent, nil, ptr(10), time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken()でエラーが発生: %v", err)
		}

		claims := &Claims{}
		if _, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		}); err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}

		if claims.Role != RoleAgent {
			t.Errorf("Role = %q, want %q", claims.Role, RoleAgent)
		}
		if claims.AgentID == nil || *claims.AgentID != 10 {
			t.Errorf("AgentID = %v, want %d", claims.AgentID, 10)
		}
		if claims.CustomerID != nil {
			t.Errorf("CustomerID = %v, want nil", claims.CustomerID)
		}
	})

	t.Run("トークンの有効期限が指定したTTL後であること", func(t *testing.T) {
		t.Parallel()

		before := time.Now()
		tokenStr, err := GenerateToken(testSecret, "cliente1", RoleCustomer, ptr(1), nil, 2*time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken()でエラーが発生: %v", err)
		}

		claims := &Claims{}
		if _, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		}); err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}

		expectedExpiry := before.Add(2 * time.Hour)
		// 有効期限が期待時刻の前後1分以内であること
		if claims.ExpiresAt.Time.Before(expectedExpiry.Add(-1 * time.Minute)) {
			t.Errorf("ExpiresAt = %v, 期待する最小値: %v", claims.ExpiresAt.Time, expectedExpiry.Add(-1*time.Minute))
		}
		if claims.ExpiresAt.Time.After(expectedExpiry.Add(1 * time.Minute)) {
			t.Errorf("ExpiresAt = %v, 期待する最大値: %v", claims.ExpiresAt.Time, expectedExpiry.Add(1*time.Minute))
		}
	})

	t.Run("署名アルゴリズムがHS256であること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateToken(testSecret, "cliente1", RoleCustomer, ptr(1), nil, time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken()でエラーが発生: %v", err)
		}

		token, _, err := new(jwt.Parser).ParseUnverified(tokenStr, &Claims{})
		if err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}

		if token.Method.Alg() != "HS256" {
			t.Errorf("署名アルゴリズム = %q, want %q", token.Method.Alg(), "HS256")
		}
	})

	t.Run("異なるシークレットでは検証に失敗すること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateToken(testSecret, "cliente1", RoleCustomer, ptr(1), nil, time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken()でエラーが発生: %v", err)
		}

		claims := &Claims{}
		_, err = jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
			return []byte("wrong-secret"), nil
		})
		if err == nil {
			t.Fatal("異なるシークレットでの検証がエラーを返すべき")
		}
	})
}

// TestRequireAuth はRequireAuthミドルウェアを検証する。
func TestRequireAuth(t *testing.T) {
	t.Parallel()

	t.Run("有効なトークンでリクエストが成功すること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateToken(testSecret, "vendedor1", RoleAgent, nil, ptr(10), time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken()でエラーが発生: %v", err)
		}

		var capturedUsername string
		var capturedRole Role
		router := gin.New()
		router.Use(RequireAuth(testSecret))
		router.GET("/test", func(c *gin.Context) {
			capturedUsername = GetUsername(c)
			capturedRole = GetRole(c)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if capturedUsername != "vendedor1" {
			t.Errorf("username = %q, want %q", capturedUsername, "vendedor1")
		}
		if capturedRole != RoleAgent {
			t.Errorf("role = %q, want %q", capturedRole, RoleAgent)
		}
	})

	t.Run("Authorizationヘッダーが無い場合は401を返すこと", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(RequireAuth(testSecret))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("Bearer接頭辞が無い場合は401を返すこと", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateToken(testSecret, "cliente1", RoleCustomer, ptr(1), nil, time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken()でエラーが発生: %v", err)
		}

		router := gin.New()
		router.Use(RequireAuth(testSecret))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", tokenStr)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("異なるシークレットで署名されたトークンは401を返すこと", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateToken("wrong-secret", "cliente1", RoleCustomer, ptr(1), nil, time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken()でエラーが発生: %v", err)
		}

		router := gin.New()
		router.Use(RequireAuth(testSecret))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("期限切れのトークンは401を返すこと", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateToken(testSecret, "cliente1", RoleCustomer, ptr(1), nil, -time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken()でエラーが発生: %v", err)
		}

		router := gin.New()
		router.Use(RequireAuth(testSecret))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("未知の役割を持つトークンは401を返すこと", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateToken(testSecret, "admin1", Role("superuser"), nil, nil, time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken()でエラーが発生: %v", err)
		}

		router := gin.New()
		router.Use(RequireAuth(testSecret))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

// TestRoleValid はRoleの妥当性検証を確認する。
func TestRoleValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		role Role
		want bool
	}{
		{name: "顧客は有効", role: RoleCustomer, want: true},
		{name: "営業担当者は有効", role: RoleAgent, want: true},
		{name: "空文字列は無効", role: Role(""), want: false},
		{name: "未知の役割は無効", role: Role("superuser"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.role.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
