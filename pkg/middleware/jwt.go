package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Role は認証済みユーザーの役割を表す。
// 役割によって参照できるデータの範囲（スコープ）が決まる。
type Role string

const (
	// RoleCustomer は顧客。自分自身のデータのみ参照できる。
	RoleCustomer Role = "customer"
	// RoleAgent は営業担当者。担当する顧客のデータを参照できる。
	RoleAgent Role = "agent"
)

// Valid はRoleが定義済みの値であるかを返す。
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAgent
}

// Claims はバックエンドAPIが発行するJWTトークンのクレーム（ペイロード）を表す。
// ユーザー名・役割・スコープ識別子をゲートウェイとAPI間で伝播するために使用する。
type Claims struct {
	jwt.RegisteredClaims
	// Username は認証済みユーザーのユーザー名。
	Username string `json:"username"`
	// Role はユーザーの役割。
	Role Role `json:"role"`
	// CustomerID は顧客自身のスコープ識別子。顧客以外はnull。
	CustomerID *int64 `json:"customer_id,omitempty"`
	// AgentID は営業担当者のスコープ識別子。営業担当者以外はnull。
	AgentID *int64 `json:"agent_id,omitempty"`
}

// GenerateToken はユーザー情報からBearerトークン（JWT）を生成する。
// バックエンドAPIがログイン成功後に呼び出す。
func GenerateToken(secret, username string, role Role, customerID, agentID *int64, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "ordergate-api",
		},
		Username:   username,
		Role:       role,
		CustomerID: customerID,
		AgentID:    agentID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// RequireAuth はBearerトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに "username" と "role" を設定する。
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効です",
			})
			return
		}
		if !claims.Role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンの役割が不正です",
			})
			return
		}

		c.Set("username", claims.Username)
		c.Set("role", string(claims.Role))
		c.Next()
	}
}

// GetUsername はGinコンテキストからユーザー名を取得する。
// RequireAuthミドルウェアが事前に適用されている必要がある。
func GetUsername(c *gin.Context) string {
	username, _ := c.Get("username")
	if name, ok := username.(string); ok {
		return name
	}
	return ""
}

// GetRole はGinコンテキストから役割を取得する。
// RequireAuthミドルウェアが事前に適用されている必要がある。
func GetRole(c *gin.Context) Role {
	role, _ := c.Get("role")
	if r, ok := role.(string); ok {
		return Role(r)
	}
	return ""
}
