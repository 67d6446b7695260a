package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/rotisserie/eris"
)

var (
	// ErrNotFound is returned when an operation targets a lead ID that does
	// not exist.
	ErrNotFound = errors.New("storage: lead not found")
	// ErrUnsupported is returned by append-only backends for mutations they
	// cannot express.
	ErrUnsupported = errors.New("storage: operation not supported by backend")
)

// Filter allows querying for specific leads. Zero fields match everything.
type Filter struct {
	ID       string
	Category string
	Status   lead.Status
	Email    string
	Name     string
	Since    *time.Time
	Limit    int
	Offset   int
}

// Match reports whether l satisfies every set field of the filter, ignoring
// Limit and Offset.
func (f Filter) Match(l *lead.Lead) bool {
	if f.ID != "" && l.ID != f.ID {
		return false
	}
	if f.Category != "" && l.Category != f.Category {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Email != "" && !strings.EqualFold(l.Company.Email, f.Email) {
		return false
	}
	if f.Name != "" && l.Company.Name != f.Name {
		return false
	}
	if f.Since != nil && l.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// Page applies Offset and Limit to an already ordered slice.
func (f Filter) Page(leads []*lead.Lead) []*lead.Lead {
	if f.Offset > 0 {
		if f.Offset >= len(leads) {
			return []*lead.Lead{}
		}
		leads = leads[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(leads) {
		leads = leads[:f.Limit]
	}
	return leads
}

// Backend defines the interface for storing and querying leads. Query
// returns newest first.
type Backend interface {
	Save(ctx context.Context, l *lead.Lead) error
	Query(ctx context.Context, filter Filter) ([]*lead.Lead, error)
	UpdateStatus(ctx context.Context, id string, status lead.Status) error
	Close() error
}

// OpenFunc opens a backend from a DSN or file path.
type OpenFunc func(ctx context.Context, dsn string) (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]OpenFunc{}
)

// Register makes a backend available to Open under kind. It panics on a
// duplicate kind, like database/sql.Register.
func Register(kind string, open OpenFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic("storage: Register called twice for " + kind)
	}
	registry[kind] = open
}

// Kinds lists the registered backend kinds.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open opens a registered backend.
func Open(ctx context.Context, kind, dsn string) (Backend, error) {
	registryMu.RLock()
	open, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, eris.Errorf("storage: unknown backend %q (have %s)", kind, strings.Join(Kinds(), ", "))
	}
	return open(ctx, dsn)
}
