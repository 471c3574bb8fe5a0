package session

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// failingStorage fails every write.
type failingStorage struct {
	*MemoryStorage
}

func (f failingStorage) Save(string, string) error { return errors.New("disk full") }
func (f failingStorage) Delete(string) error { return errors.New("disk full") }

func signedToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestSetTokenAndClear(t *testing.T) {
	store, err := NewStore(NewMemoryStorage())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatal("new store should not be authenticated")
	}

	if err := store.SetToken("opaque"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if !store.IsAuthenticated() {
		t.Error("IsAuthenticated should be true right after SetToken")
	}
	if store.Token() != "opaque" {
		t.Errorf("Token: got %q, want %q", store.Token(), "opaque")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if store.IsAuthenticated() {
		t.Error("IsAuthenticated should be false after Clear")
	}
	if store.User() != nil {
		t.Error("User should be nil after Clear")
	}
}

func TestWriteThroughToStorage(t *testing.T) {
	mem := NewMemoryStorage()
	store, err := NewStore(mem)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if err := store.SetToken("abc"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if v, ok, _ := mem.Load(TokenKey); !ok || v != "abc" {
		t.Errorf("storage after SetToken: got (%q, %v), want (\"abc\", true)", v, ok)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok, _ := mem.Load(TokenKey); ok {
		t.Error("storage still holds token after Clear")
	}
}

func TestFailedWriteLeavesMemoryUnchanged(t *testing.T) {
	mem := NewMemoryStorage()
	_ = mem.Save(TokenKey, "kept")
	store, err := NewStore(failingStorage{mem})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if err := store.SetToken("new"); err == nil {
		t.Fatal("SetToken should fail when storage fails")
	}
	if store.Token() != "kept" {
		t.Errorf("Token after failed SetToken: got %q, want %q", store.Token(), "kept")
	}

	if err := store.Clear(); err == nil {
		t.Fatal("Clear should fail when storage fails")
	}
	if !store.IsAuthenticated() {
		t.Error("failed Clear must not drop the in-memory token")
	}
}

func TestRehydrateFromStorage(t *testing.T) {
	mem := NewMemoryStorage()
	token := signedToken(t, "ada@example.com", time.Now().Add(time.Hour))
	_ = mem.Save(TokenKey, token)

	store, err := NewStore(mem)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if !store.IsAuthenticated() {
		t.Fatal("store should be authenticated after rehydrate")
	}
	user := store.User()
	if user == nil || user.Email != "ada@example.com" {
		t.Errorf("User after rehydrate: got %+v, want email ada@example.com", user)
	}
}

func TestSQLiteStorageRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "session.db")

	storage, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	store, err := NewStore(storage)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.SetToken("persisted"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if err := store.SetToken("persisted-2"); err != nil {
		t.Fatalf("second SetToken failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Simulate a restart.
	storage, err = NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	store, err = NewStore(storage)
	if err != nil {
		t.Fatalf("NewStore after reopen failed: %v", err)
	}
	defer store.Close()

	if store.Token() != "persisted-2" {
		t.Errorf("Token after restart: got %q, want %q", store.Token(), "persisted-2")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok, err := storage.Load(TokenKey); err != nil || ok {
		t.Errorf("Load after Clear: ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestConcurrentReadsSeeConsistentState(t *testing.T) {
	store, _ := NewStore(NewMemoryStorage())
	token := signedToken(t, "bob@example.com", time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.SetToken(token)
			_ = store.Clear()
		}()
		go func() {
			defer wg.Done()
			snap := store.Snapshot()
			if snap.Token == "" && snap.User != nil {
				t.Error("snapshot has a profile without a token")
			}
			if snap.Token != "" && (snap.User == nil || snap.User.Email != "bob@example.com") {
				t.Error("snapshot has a token without its profile")
			}
		}()
	}
	wg.Wait()
}

func TestProfileFromToken(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	p := ProfileFromToken(signedToken(t, "ada@example.com", exp))
	if p == nil {
		t.Fatal("ProfileFromToken returned nil for a valid JWT")
	}
	if p.Email != "ada@example.com" {
		t.Errorf("Email: got %q", p.Email)
	}
	if !p.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt: got %v, want %v", p.ExpiresAt, exp)
	}
	if p.Expired(time.Now()) {
		t.Error("profile should not be expired yet")
	}
	if !p.Expired(exp.Add(time.Second)) {
		t.Error("profile should be expired after exp")
	}

	if ProfileFromToken("not-a-jwt") != nil {
		t.Error("ProfileFromToken should return nil for opaque tokens")
	}
}
