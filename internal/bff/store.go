package bff

import (
	"sync"

	"github.com/nao1215/ordergate/pkg/middleware"
)

// Session はBFFがメモリ上に保持するセッションレコード。
// Cookieの値（セッションID）からこのレコードを引き、役割とスコープ識別子、
// バックエンドAPI用のBearerトークンを復元する。
type Session struct {
	// Username は表示用のユーザー名。
	Username string
	// Role はユーザーの役割。セッションの生存期間中は不変。
	Role middleware.Role
	// CustomerID は顧客自身のスコープ識別子。顧客以外はnil。
	// セッション確立後はクライアント入力を信用せず常にこの値を使う。
	CustomerID *int64
	// AgentID は営業担当者のスコープ識別子。営業担当者以外はnil。
	AgentID *int64
	// Token はバックエンドAPIのBearerトークン。
	// 外部への送信にのみ使用し、クライアントへのレスポンスには決して含めない。
	Token string
}

// SessionStore はセッションIDからセッションレコードを引くメモリ上のストア。
// プロセスの生存期間のみ有効で、再起動ですべてのセッションが失われる。
// すべての操作は並行アクセスに対して安全で、ロック中にI/Oを行うことはない。
type SessionStore struct {
	// mu はsessionsへのアクセスを保護する。
	mu sync.RWMutex
	// sessions はセッションIDをキーとするレコードのマップ。
	sessions map[string]Session
}

// NewSessionStore は新しいセッションストアを生成する。
// ストアは起動時に明示的に生成し、サーバーへ注入して共有する。
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
	}
}

// Put はセッションIDにレコードを無条件に保存する。
// 同じIDが既に存在する場合は上書きする。IDの一意性は呼び出し側が
// 暗号学的に十分な乱数で保証する。
func (s *SessionStore) Put(sessionID string, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

// Get はセッションIDに対応するレコードを返す。
// 存在しない場合は第2戻り値がfalseとなる。未知のIDはエラーではなく
// 「有効なセッションが無い」という正常な結果として扱う。
func (s *SessionStore) Get(sessionID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

// Remove はセッションIDに対応するレコードを削除する。
// 存在しないIDの削除は何もしない（冪等）。
func (s *SessionStore) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len は保持しているセッションレコード数を返す。
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
