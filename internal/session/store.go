package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// recordKey is the single key the typed record is stored under.
const recordKey = "session"

// KV is a string-valued key/value backend. store.KVRepo satisfies it for the
// persisted half; MemoryKV serves tests and ephemeral use.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context) ([]string, error)
}

// Store is the only writer of the session record. Screens receive it by
// reference and go through SetSession, SetMode and ClearSession.
type Store struct {
	kv KV

	mu       sync.RWMutex
	loaded   bool
	current  Session
	progress Progress
}

// NewStore returns a Store over kv. Call Load before first use.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load reads the persisted record, folding in legacy keys on first run.
func (s *Store) Load(ctx context.Context) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sess Session
	raw, ok, err := s.kv.Get(ctx, recordKey)
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &sess); err != nil {
			// A corrupt record is treated as signed out.
			sess = Session{}
		}
	}

	migrated, changed, err := migrateLegacy(ctx, s.kv, sess)
	if err != nil {
		return Session{}, err
	}
	if changed {
		if err := s.write(ctx, migrated); err != nil {
			return Session{}, err
		}
		if err := s.kv.Delete(ctx, legacyKeys...); err != nil {
			return Session{}, fmt.Errorf("drop legacy keys: %w", err)
		}
		sess = migrated
	}

	s.current = sess
	s.loaded = true
	return sess, nil
}

// Current returns the in-memory copy of the record.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetSession overwrites the identity fields after a login. The selected mode
// is kept unless the user changed.
func (s *Store) SetSession(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if next.UserID != sess.UserID {
		next = Session{}
	}
	next.UserID = sess.UserID
	next.UserName = sess.UserName
	next.Email = sess.Email
	next.AccessToken = sess.AccessToken
	if sess.Mode != "" {
		next.Mode = sess.Mode
		next.ClassLevel = sess.ClassLevel
	}

	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.current = next
	return nil
}

// SetMode records the selected question set.
func (s *Store) SetMode(ctx context.Context, mode, classLevel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	next.Mode = mode
	next.ClassLevel = classLevel
	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.current = next
	return nil
}

// ClearSession removes every persisted key and resets ephemeral progress.
func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	if err := s.kv.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.current = Session{}
	s.progress = Progress{}
	return nil
}

// Token returns the access token for outbound requests.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken
}

// Progress returns the ephemeral progress.
func (s *Store) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// SetCurrentQuestion records the 1-based question number being shown.
func (s *Store) SetCurrentQuestion(n int) {
	s.mu.Lock()
	s.progress.CurrentQuestion = n
	s.mu.Unlock()
}

// MarkSplashSeen notes that the splash screen was shown this run.
func (s *Store) MarkSplashSeen() {
	s.mu.Lock()
	s.progress.HasSeenSplash = true
	s.mu.Unlock()
}

func (s *Store) write(ctx context.Context, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, recordKey, string(data)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// MemoryKV is an in-memory KV.
type MemoryKV struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryKV returns an empty MemoryKV, optionally seeded.
func NewMemoryKV(seed map[string]string) *MemoryKV {
	m := make(map[string]string, len(seed))
	for k, v := range seed {
		m[k] = v
	}
	return &MemoryKV{m: m}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.m[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.m, k)
	}
	return nil
}

func (m *MemoryKV) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.m))
	for k := range m.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
