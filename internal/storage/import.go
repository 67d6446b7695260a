package storage

import (
	"context"
	"strings"
	"time"

	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Import saves companies as new leads under category. A company is skipped
// when a lead with the same email exists, or failing that one with the same
// name. It returns how many leads were added.
func Import(ctx context.Context, b Backend, category string, companies []lead.Company) (int, error) {
	added := 0
	for _, c := range companies {
		exists, err := known(ctx, b, c)
		if err != nil {
			return added, err
		}
		if exists {
			continue
		}

		now := time.Now().UTC()
		l := &lead.Lead{
			ID:        uuid.NewString(),
			Category:  category,
			Company:   c,
			Status:    lead.StatusNew,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := b.Save(ctx, l); err != nil {
			return added, eris.Wrapf(err, "storage: import %q", c.Name)
		}
		added++
	}
	return added, nil
}

func known(ctx context.Context, b Backend, c lead.Company) (bool, error) {
	if email := strings.TrimSpace(c.Email); email != "" {
		found, err := b.Query(ctx, Filter{Email: email, Limit: 1})
		if err != nil {
			return false, eris.Wrap(err, "storage: lookup by email")
		}
		if len(found) > 0 {
			return true, nil
		}
	}
	found, err := b.Query(ctx, Filter{Name: c.Name, Limit: 1})
	if err != nil {
		return false, eris.Wrap(err, "storage: lookup by name")
	}
	return len(found) > 0, nil
}
