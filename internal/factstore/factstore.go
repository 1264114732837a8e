// Package factstore is the durable map from (entity, attribute) to the
// most recent Fact observed about this machine.
//
// The store is a single writer guarded by a mutex (readers take snapshot
// copies, mirroring the RWMutex/defensive-copy pattern the daemon's state
// machine already uses); persistence is a single JSON file written
// atomically via write-temp-then-rename so a crash mid-write never
// corrupts the previous good file.
package factstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
)

// ErrCorrupt is returned (wrapped) when the persisted facts file cannot be
// decoded; the caller proceeds with an empty store and the bad file is
// preserved alongside for forensics.
var ErrCorrupt = errors.New("factstore: corrupt persisted state")

// Lifecycle is the one-way-per-epoch state of a Fact.
type Lifecycle string

const (
	Active   Lifecycle = "active"
	Stale    Lifecycle = "stale"
	Archived Lifecycle = "archived"
)

// Policy is a staleness policy: either the Fact never goes stale, or it
// does after a fixed number of seconds since last_verified_at.
type Policy struct {
	Never   bool
	TTLSecs int64 // meaningful only when Never == false
}

// NeverStale is the Never policy.
func NeverStale() Policy { return Policy{Never: true} }

// TTLSeconds returns a TTL-bound policy.
func TTLSeconds(n int64) Policy { return Policy{TTLSecs: n} }

// IsStale reports whether a fact verified at lastVerifiedAt under this
// policy is stale at wall-clock time now.
func (p Policy) IsStale(lastVerifiedAt, now time.Time) bool {
	if p.Never {
		return false
	}
	return now.Sub(lastVerifiedAt) > time.Duration(p.TTLSecs)*time.Second
}

// Fact is one (entity, attribute) -> value record.
type Fact struct {
	Key            string    `json:"key"`
	Value          string    `json:"value"`
	Source         string    `json:"source"`
	Verified       bool      `json:"verified"`
	Lifecycle      Lifecycle `json:"lifecycle"`
	CreatedAt      time.Time `json:"created_at"`
	LastVerifiedAt time.Time `json:"last_verified_at"`
	Policy         Policy    `json:"policy"`
}

// Status is the closed set of read-time views of a Fact.
type Status struct {
	Kind  StatusKind
	Value string
}

type StatusKind string

const (
	Unknown    StatusKind = "unknown"
	Unverified StatusKind = "unverified"
	Known      StatusKind = "known"
	StaleValue StatusKind = "stale"
)

// Clock abstracts wall-clock time so tests can pin it.
type Clock func() time.Time

// Store is the durable (entity, attribute) -> Fact map.
type Store struct {
	mu    sync.Mutex
	facts map[string]Fact
	path  string
	clock Clock
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithClock overrides the default time.Now clock (for deterministic tests).
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// New constructs an empty in-memory Store backed by path for persistence.
// path may not exist yet; Save creates it.
func New(path string, opts ...Option) *Store {
	s := &Store{
		facts: make(map[string]Fact),
		path:  path,
		clock: time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) now() time.Time { return s.clock() }

// SetVerified creates or updates key with verified=true, lifecycle Active,
// a fresh last_verified_at, and the given staleness policy.
func (s *Store) SetVerified(key, value, source string, policy Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(key, value, source, true, policy)
}

// SetUnverified is SetVerified but verified=false.
func (s *Store) SetUnverified(key, value, source string, policy Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(key, value, source, false, policy)
}

func (s *Store) upsert(key, value, source string, verified bool, policy Policy) {
	now := s.now()
	f, exists := s.facts[key]
	created := now
	if exists {
		created = f.CreatedAt
	}
	s.facts[key] = Fact{
		Key:            key,
		Value:          value,
		Source:         source,
		Verified:       verified,
		Lifecycle:      Active,
		CreatedAt:      created,
		LastVerifiedAt: now,
		Policy:         policy,
	}
}

// Verify flips an existing fact to verified, refreshing last_verified_at
// and snapping lifecycle back to Active. Returns false if key is unknown.
func (s *Store) Verify(key, source string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.facts[key]
	if !ok {
		return false
	}
	f.Verified = true
	f.Source = source
	f.LastVerifiedAt = s.now()
	f.Lifecycle = Active
	s.facts[key] = f
	return true
}

// Reverify is an alias for Verify: it restarts the verification epoch.
func (s *Store) Reverify(key, source string) bool { return s.Verify(key, source) }

// Invalidate marks a fact's lifecycle Stale without changing its value.
func (s *Store) Invalidate(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.facts[key]
	if !ok {
		return false
	}
	f.Verified = false
	f.Lifecycle = Stale
	s.facts[key] = f
	return true
}

// Get returns the raw Fact for key, if any.
func (s *Store) Get(key string) (Fact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.facts[key]
	return f, ok
}

// GetVerified returns the value for key only if it is currently verified.
func (s *Store) GetVerified(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.facts[key]
	if !ok || !f.Verified {
		return "", false
	}
	return f.Value, true
}

// HasVerified reports whether key currently holds a verified fact.
func (s *Store) HasVerified(key string) bool {
	_, ok := s.GetVerified(key)
	return ok
}

// StatusOf returns the read-time view of key.
func (s *Store) StatusOf(key string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.facts[key]
	if !ok {
		return Status{Kind: Unknown}
	}
	switch {
	case f.Lifecycle == Stale || f.Lifecycle == Archived:
		return Status{Kind: StaleValue, Value: f.Value}
	case f.Verified:
		return Status{Kind: Known, Value: f.Value}
	default:
		return Status{Kind: Unverified, Value: f.Value}
	}
}

// ApplyLifecycle scans every fact and advances its lifecycle relative to
// now: facts past their TTL become Stale; facts past 2x their TTL become
// Archived. Never-policy facts are never advanced by this scan.
func (s *Store) ApplyLifecycle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, f := range s.facts {
		if f.Policy.Never || f.Lifecycle == Archived {
			continue
		}
		ttl := time.Duration(f.Policy.TTLSecs) * time.Second
		age := now.Sub(f.LastVerifiedAt)
		switch {
		case age > 2*ttl:
			f.Lifecycle = Archived
			f.Verified = false
		case age > ttl:
			f.Lifecycle = Stale
			f.Verified = false
		}
		s.facts[key] = f
	}
}

// PruneArchived removes every Archived fact and returns the count removed.
func (s *Store) PruneArchived() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, f := range s.facts {
		if f.Lifecycle == Archived {
			delete(s.facts, key)
			n++
		}
	}
	return n
}

// ValuesWithPrefix returns the values of every currently-verified fact
// whose key starts with prefix (e.g. "package:" for the recorded package
// inventory used by inventory-drift comparisons).
func (s *Store) ValuesWithPrefix(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for key, f := range s.facts {
		if f.Verified && strings.HasPrefix(key, prefix) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Len returns the number of facts currently held (for diagnostics/tests).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.facts)
}

// onDiskFormat is the JSON shape persisted to path; a thin wrapper keeps
// future schema fields from colliding with the map's own keys.
type onDiskFormat struct {
	Facts []Fact `json:"facts"`
}

// Save serializes the store to its backing path atomically (write-temp +
// rename), so a crash mid-write never replaces the previous good file.
func (s *Store) Save() error {
	s.mu.Lock()
	snapshot := make([]Fact, 0, len(s.facts))
	for _, f := range s.facts {
		snapshot = append(snapshot, f)
	}
	s.mu.Unlock()

	buf, err := json.MarshalIndent(onDiskFormat{Facts: snapshot}, "", "  ")
	if err != nil {
		return fmt.Errorf("factstore: marshal: %w", err)
	}
	if err := renameio.WriteFile(s.path, buf, 0o640); err != nil {
		return fmt.Errorf("%w: atomic write: %v", ErrIO, err)
	}
	return nil
}
