package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

type bugRepo struct{ s *Store }

func copyBug(b models.Bug) *models.Bug {
	b.Tags = slices.Clone(b.Tags)
	if b.Tags == nil {
		b.Tags = []models.Tag{}
	}
	return &b
}

func (r *bugRepo) Create(_ context.Context, bug *models.Bug) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.t.bugs[bug.ID]; ok {
		return common.ErrAlreadyExists
	}
	r.s.t.bugs[bug.ID] = *copyBug(*bug)
	return nil
}

func (r *bugRepo) Get(_ context.Context, id string) (*models.Bug, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.t.bugs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyBug(b), nil
}

func (r *bugRepo) GetForUpdate(ctx context.Context, id string) (*models.Bug, error) {
	return r.Get(ctx, id)
}

func (r *bugRepo) filter(keep func(b *models.Bug) bool) []*models.Bug {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*models.Bug{}
	for _, b := range r.s.t.bugs {
		if keep(&b) {
			result = append(result, copyBug(b))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (r *bugRepo) List(_ context.Context) ([]*models.Bug, error) {
	return r.filter(func(*models.Bug) bool { return true }), nil
}

func (r *bugRepo) ListByAuthor(_ context.Context, authorID string) ([]*models.Bug, error) {
	return r.filter(func(b *models.Bug) bool { return b.AuthorID == authorID }), nil
}

func (r *bugRepo) ListByTag(_ context.Context, tagID string) ([]*models.Bug, error) {
	return r.filter(func(b *models.Bug) bool {
		return slices.ContainsFunc(b.Tags, func(t models.Tag) bool { return t.ID == tagID })
	}), nil
}

func (r *bugRepo) SearchTitle(_ context.Context, text string) ([]*models.Bug, error) {
	needle := strings.ToLower(text)
	return r.filter(func(b *models.Bug) bool {
		return strings.Contains(strings.ToLower(b.Title), needle)
	}), nil
}

func (r *bugRepo) VoteCountsByAuthor(_ context.Context, authorID string) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var counts []int64
	for _, b := range r.s.t.bugs {
		if b.AuthorID == authorID {
			counts = append(counts, b.VoteCount)
		}
	}
	return counts, nil
}

func (r *bugRepo) update(id string, fn func(b *models.Bug)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.t.bugs[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(&b)
	r.s.t.bugs[id] = b
	return nil
}

func (r *bugRepo) Update(_ context.Context, bug *models.Bug) error {
	return r.update(bug.ID, func(b *models.Bug) {
		b.Title = bug.Title
		b.Description = bug.Description
		b.ImageURL = bug.ImageURL
		b.Tags = slices.Clone(bug.Tags)
	})
}

func (r *bugRepo) SetStatus(_ context.Context, id string, status models.BugStatus) error {
	return r.update(id, func(b *models.Bug) { b.Status = status })
}

func (r *bugRepo) AddVoteCount(_ context.Context, id string, delta int64) error {
	return r.update(id, func(b *models.Bug) { b.VoteCount += delta })
}

// Delete removes the bug and its comments, like the ON DELETE CASCADE of
// the SQL schema. Votes stay in the ledger.
func (r *bugRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.t.bugs[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.t.bugs, id)
	for cid, c := range r.s.t.comments {
		if c.BugID == id {
			delete(r.s.t.comments, cid)
		}
	}
	return nil
}
