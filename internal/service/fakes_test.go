package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Payphone-Digital/storefront/internal/model"
	"github.com/Payphone-Digital/storefront/internal/repository"
	"github.com/Payphone-Digital/storefront/pkg/upstream"
	"gorm.io/datatypes"
)

type apiCall struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	NoRetry bool
}

// fakeAPI answers upstream calls from a table keyed by "METHOD path".
// A response value is JSON round-tripped into out.
type fakeAPI struct {
	mu        sync.Mutex
	calls     []apiCall
	responses map[string]fakeResponse
}

type fakeResponse struct {
	message string
	data    any
	err     error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{responses: map[string]fakeResponse{}}
}

func (f *fakeAPI) on(method, path string, resp fakeResponse) *fakeAPI {
	f.responses[method+" "+path] = resp
	return f
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) last() apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeAPI) do(ctx context.Context, method, path string, query url.Values, body, out any) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: method, Path: path, Query: query, Body: body, NoRetry: upstream.RetryDisabled(ctx)})
	resp, ok := f.responses[method+" "+path]
	f.mu.Unlock()

	if !ok {
		panic("unexpected upstream call " + method + " " + path)
	}
	if resp.err != nil {
		return "", resp.err
	}
	if out != nil && resp.data != nil {
		raw, err := json.Marshal(resp.data)
		if err != nil {
			return "", err
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return "", err
		}
	}
	return resp.message, nil
}

func (f *fakeAPI) Get(ctx context.Context, path string, query url.Values, out any) (string, error) {
	return f.do(ctx, "GET", path, query, nil, out)
}

func (f *fakeAPI) Post(ctx context.Context, path string, body, out any) (string, error) {
	return f.do(ctx, "POST", path, nil, body, out)
}

func (f *fakeAPI) Put(ctx context.Context, path string, body, out any) (string, error) {
	return f.do(ctx, "PUT", path, nil, body, out)
}

func (f *fakeAPI) Delete(ctx context.Context, path string, body, out any) (string, error) {
	return f.do(ctx, "DELETE", path, nil, body, out)
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]*model.Session{}}
}

func (f *fakeSessions) Create(_ context.Context, session *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeSessions) GetByID(_ context.Context, id string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) UpdateProfile(_ context.Context, id string, profile model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	s.Profile = datatypes.NewJSONType(profile)
	return nil
}

func (f *fakeSessions) Rotate(_ context.Context, id, oldHash, newHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.RefreshSecretHash != oldHash {
		return repository.ErrSessionNotFound
	}
	s.RefreshSecretHash = newHash
	s.RefreshExpiresAt = expiresAt
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[id]
	return ok
}

// fakeCache stores JSON in memory. Patterns support a single trailing '*'.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = raw
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) DeleteByPattern(_ context.Context, pattern string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix, wildcard := strings.CutSuffix(pattern, "*")
	n := 0
	for key := range f.entries {
		if key == pattern || (wildcard && strings.HasPrefix(key, prefix)) {
			delete(f.entries, key)
			n++
		}
	}
	return n, nil
}

func (f *fakeCache) PoolStats() map[string]any {
	return map[string]any{"total_conns": uint32(1)}
}
