package csvbackend

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/FranksOps/leadscout/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

func init() {
	storage.Register("csv", func(_ context.Context, path string) (storage.Backend, error) {
		return New(path)
	})
}

// csvBackend writes one row per lead, for spreadsheets. Rows are never
// rewritten, so status changes are not supported.
type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

// headers defines the CSV column order
var headers = []string{
	"id",
	"category",
	"name",
	"website",
	"email",
	"phone",
	"address",
	"description",
	"status",
	"created_at",
	"updated_at",
}

// New creates a new CSV-backed storage.Backend.
func New(filePath string) (storage.Backend, error) {
	// Open file for appending, create if it doesn't exist
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("csv: open: %w", err)
	}

	// Check if file is empty to write headers
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("csv: stat: %w", err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(headers); err != nil {
			f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
	}

	return &csvBackend{
		file: f,
	}, nil
}

func (b *csvBackend) Save(ctx context.Context, l *lead.Lead) error {
	record := []string{
		l.ID,
		l.Category,
		l.Company.Name,
		l.Company.Website,
		l.Company.Email,
		l.Company.Phone,
		l.Company.Address,
		l.Company.Description,
		string(l.Status),
		l.CreatedAt.Format(time.RFC3339Nano),
		l.UpdatedAt.Format(time.RFC3339Nano),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Ensure we're at the end of the file for appending (just in case)
	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("csv: seek: %w", err)
	}

	w := csv.NewWriter(b.file)
	if err := w.Write(record); err != nil {
		return fmt.Errorf("csv: write: %w", err)
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: write: %w", err)
	}

	return nil
}

func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*lead.Lead, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Seek to the beginning of the file to read all entries
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("csv: seek: %w", err)
	}
	defer func() {
		// Restore pointer to end for writing
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)
	r.FieldsPerRecord = -1

	// Read headers
	_, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return []*lead.Lead{}, nil
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	filtered := []*lead.Lead{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read: %w", err)
		}

		if len(record) != len(headers) {
			continue // skip malformed rows
		}

		createdAt, _ := time.Parse(time.RFC3339Nano, record[9])
		updatedAt, _ := time.Parse(time.RFC3339Nano, record[10])

		l := &lead.Lead{
			ID:       record[0],
			Category: record[1],
			Company: lead.Company{
				Name:        record[2],
				Website:     record[3],
				Email:       record[4],
				Phone:       record[5],
				Address:     record[6],
				Description: record[7],
			},
			Status:    lead.Status(record[8]),
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		}

		if filter.Match(l) {
			filtered = append(filtered, l)
		}
	}

	// Order by created_at DESC, later rows first on ties
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	return filter.Page(filtered), nil
}

func (b *csvBackend) UpdateStatus(ctx context.Context, id string, status lead.Status) error {
	return storage.ErrUnsupported
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
