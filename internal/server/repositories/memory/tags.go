package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
)

type tagRepo struct{ s *Store }

func (r *tagRepo) FindOrCreate(_ context.Context, newID, name string) (*models.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.t.tags {
		if t.Name == name {
			return &t, nil
		}
	}
	t := models.Tag{ID: newID, Name: name}
	r.s.t.tags[newID] = t
	return &t, nil
}

func (r *tagRepo) Get(_ context.Context, id string) (*models.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.t.tags[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *tagRepo) List(_ context.Context) ([]*models.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*models.Tag, 0, len(r.s.t.tags))
	for _, t := range r.s.t.tags {
		t := t
		result = append(result, &t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
