package adminapi

import "sync"

// CredentialProvider is the token contract the client depends on. The
// dashboard owns persistence; the client only reads the token for auth
// injection and clears it on 401.
type CredentialProvider interface {
	Token() (string, bool)
	ClearToken()
}

// MemoryCredentialStore is a mutex-guarded in-process CredentialProvider.
type MemoryCredentialStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryCredentialStore returns a store seeded with the given token.
func NewMemoryCredentialStore(token string) *MemoryCredentialStore {
	return &MemoryCredentialStore{token: token}
}

// Token returns the stored token, reporting absence when empty.
func (s *MemoryCredentialStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// SetToken replaces the stored token.
func (s *MemoryCredentialStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// ClearToken drops the stored token.
func (s *MemoryCredentialStore) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}
