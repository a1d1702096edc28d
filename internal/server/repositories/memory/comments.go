package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.t.bugs[comment.BugID]; !ok {
		return common.ErrorNotFound
	}
	if _, ok := r.s.t.comments[comment.ID]; ok {
		return common.ErrAlreadyExists
	}
	r.s.t.comments[comment.ID] = *comment
	return nil
}

func (r *commentRepo) Get(_ context.Context, id string) (*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.t.comments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r *commentRepo) GetForUpdate(ctx context.Context, id string) (*models.Comment, error) {
	return r.Get(ctx, id)
}

func (r *commentRepo) ListByBug(_ context.Context, bugID string) ([]*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*models.Comment{}
	for _, c := range r.s.t.comments {
		if c.BugID == bugID {
			c := c
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].VoteCount != result[j].VoteCount {
			return result[i].VoteCount > result[j].VoteCount
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *commentRepo) CountByBug(_ context.Context, bugID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, c := range r.s.t.comments {
		if c.BugID == bugID {
			n++
		}
	}
	return n, nil
}

func (r *commentRepo) VoteCountsByAuthor(_ context.Context, authorID string) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var counts []int64
	for _, c := range r.s.t.comments {
		if c.AuthorID == authorID {
			counts = append(counts, c.VoteCount)
		}
	}
	return counts, nil
}

func (r *commentRepo) update(id string, fn func(c *models.Comment)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.t.comments[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(&c)
	r.s.t.comments[id] = c
	return nil
}

func (r *commentRepo) Update(_ context.Context, comment *models.Comment) error {
	return r.update(comment.ID, func(c *models.Comment) {
		c.Text = comment.Text
		c.ImageURL = comment.ImageURL
	})
}

func (r *commentRepo) AddVoteCount(_ context.Context, id string, delta int64) error {
	return r.update(id, func(c *models.Comment) { c.VoteCount += delta })
}

func (r *commentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.t.comments[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.t.comments, id)
	return nil
}
