package bff

import (
	"fmt"
	"sync"
	"testing"

	"github.com/nao1215/ordergate/pkg/middleware"
)

// TestSessionStore はセッションストアの基本操作を検証する。
func TestSessionStore(t *testing.T) {
	t.Parallel()

	t.Run("PutしたセッションをGetで取得できること", func(t *testing.T) {
		t.Parallel()

		store := NewSessionStore()
		customerID := int64(11111111)
		session := Session{
			Username:   "cliente1",
			Role:       middleware.RoleCustomer,
			CustomerID: &customerID,
			Token:      "token-abc",
		}

		store.Put("session-1", session)

		got, ok := store.Get("session-1")
		if !ok {
			t.Fatal("Putしたセッションが取得できない")
		}
		if got.Username != "cliente1" {
			t.Errorf("Username = %q, want %q", got.Username, "cliente1")
		}
		if got.Role != middleware.RoleCustomer {
			t.Errorf("Role = %q, want %q", got.Role, middleware.RoleCustomer)
		}
		if got.CustomerID == nil || *got.CustomerID != 11111111 {
			t.Errorf("CustomerID = %v, want 11111111", got.CustomerID)
		}
		if got.Token != "token-abc" {
			t.Errorf("Token = %q, want %q", got.Token, "token-abc")
		}
	})

	t.Run("存在しないIDのGetはfalseを返すこと", func(t *testing.T) {
		t.Parallel()

		store := NewSessionStore()

		if _, ok := store.Get("unknown"); ok {
			t.Error("存在しないセッションIDでtrueが返された")
		}
	})

	t.Run("同じIDへのPutは上書きされること", func(t *testing.T) {
		t.Parallel()

		store := NewSessionStore()
		store.Put("session-1", Session{Username: "cliente1", Token: "old"})
		store.Put("session-1", Session{Username: "cliente1", Token: "new"})

		got, ok := store.Get("session-1")
		if !ok {
			t.Fatal("セッションが取得できない")
		}
		if got.Token != "new" {
			t.Errorf("Token = %q, want %q", got.Token, "new")
		}
		if store.Len() != 1 {
			t.Errorf("Len() = %d, want 1", store.Len())
		}
	})

	t.Run("Removeしたセッションは取得できなくなること", func(t *testing.T) {
		t.Parallel()

		store := NewSessionStore()
		store.Put("session-1", Session{Username: "cliente1"})

		store.Remove("session-1")

		if _, ok := store.Get("session-1"); ok {
			t.Error("Remove後もセッションが取得できた")
		}
	})

	t.Run("存在しないIDのRemoveはエラーにならないこと", func(t *testing.T) {
		t.Parallel()

		store := NewSessionStore()
		store.Remove("unknown")
		store.Remove("unknown")
	})

	t.Run("複数ゴルーチンからの同時アクセスが安全であること", func(t *testing.T) {
		t.Parallel()

		store := NewSessionStore()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				id := fmt.Sprintf("session-%d", n)
				store.Put(id, Session{Username: fmt.Sprintf("user-%d", n)})
				if _, ok := store.Get(id); !ok {
					t.Errorf("セッション %s が取得できない", id)
				}
				store.Remove(id)
			}(i)
		}
		wg.Wait()

		if store.Len() != 0 {
			t.Errorf("Len() = %d, want 0", store.Len())
		}
	})
}
