package jsonbackend

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/FranksOps/leadscout/internal/storage"
)

// ensure jsonBackend implements storage.Backend
var _ storage.Backend = (*jsonBackend)(nil)

func init() {
	storage.Register("json", func(_ context.Context, path string) (storage.Backend, error) {
		return New(path)
	})
}

// jsonBackend is an append-only NDJSON log. A status change appends a newer
// version of the lead; the last line for an ID wins.
type jsonBackend struct {
	mu   sync.Mutex
	file *os.File
}

// New creates a new NDJSON-backed storage.Backend.
func New(filePath string) (storage.Backend, error) {
	// Open file for appending, create if it doesn't exist
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("json: open: %w", err)
	}

	return &jsonBackend{
		file: f,
	}, nil
}

func (b *jsonBackend) Save(ctx context.Context, l *lead.Lead) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appendLocked(l)
}

func (b *jsonBackend) appendLocked(l *lead.Lead) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("json: encode: %w", err)
	}
	if _, err := b.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("json: write: %w", err)
	}
	return nil
}

// latestLocked replays the log and returns the newest version of every lead,
// newest lead first.
func (b *jsonBackend) latestLocked() ([]*lead.Lead, error) {
	// Seek to the beginning of the file to read all entries
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("json: seek: %w", err)
	}
	defer func() {
		// Restore pointer to end for writing
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	scanner := bufio.NewScanner(b.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	byID := map[string]*lead.Lead{}
	var order []string
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var l lead.Lead
		if err := json.Unmarshal(line, &l); err != nil {
			return nil, fmt.Errorf("json: decode: %w", err)
		}
		if _, seen := byID[l.ID]; !seen {
			order = append(order, l.ID)
		}
		byID[l.ID] = &l
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("json: scan: %w", err)
	}

	all := make([]*lead.Lead, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		all = append(all, byID[order[i]])
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

func (b *jsonBackend) Query(ctx context.Context, filter storage.Filter) ([]*lead.Lead, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.latestLocked()
	if err != nil {
		return nil, err
	}

	// For NDJSON, we read everything, filter in memory, and then page.
	filtered := []*lead.Lead{}
	for _, l := range all {
		if filter.Match(l) {
			filtered = append(filtered, l)
		}
	}
	return filter.Page(filtered), nil
}

func (b *jsonBackend) UpdateStatus(ctx context.Context, id string, status lead.Status) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.latestLocked()
	if err != nil {
		return err
	}
	for _, l := range all {
		if l.ID != id {
			continue
		}
		updated := *l
		updated.Status = status
		updated.UpdatedAt = time.Now().UTC()
		return b.appendLocked(&updated)
	}
	return storage.ErrNotFound
}

func (b *jsonBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
