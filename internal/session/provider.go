// Package session owns the access token for the signed-in Holidaze profile.
// The booking core consumes the Provider contract only; an absent token is a
// valid state (unauthenticated), not an error.
package session

import "sync"

// Provider hands out the current access token. Token returns "" when no one
// is signed in.
type Provider interface {
	Token() string
	Clear()
}

// Memory is an in-process Provider, used by the web layer to wrap the token
// resolved for one request and by tests as a fake.
type Memory struct {
	mu    sync.Mutex
	token string
}

func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

func (m *Memory) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Memory) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}
