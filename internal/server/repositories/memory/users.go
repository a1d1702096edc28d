package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/dmitrijs2005/bugradar/internal/common"
	"github.com/dmitrijs2005/bugradar/internal/server/models"
	"github.com/dmitrijs2005/bugradar/internal/server/score"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.t.users[user.ID]; ok {
		return nil, common.ErrAlreadyExists
	}
	u := models.User{ID: user.ID, Username: user.Username, Email: user.Email, CreatedAt: time.Now().UTC()}
	r.s.t.users[u.ID] = u
	return &u, nil
}

func (r *userRepo) Get(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.t.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *userRepo) GetForUpdate(ctx context.Context, id string) (*models.User, error) {
	return r.Get(ctx, id)
}

func (r *userRepo) List(_ context.Context) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*models.User, 0, len(r.s.t.users))
	for _, u := range r.s.t.users {
		u := u
		result = append(result, &u)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *userRepo) ListIDs(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.t.users))
	for id := range r.s.t.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *userRepo) update(id string, fn func(u *models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.t.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(&u)
	r.s.t.users[id] = u
	return nil
}

func (r *userRepo) UpdateProfile(_ context.Context, id, username, email string) error {
	return r.update(id, func(u *models.User) { u.Username, u.Email = username, email })
}

func (r *userRepo) AddScore(_ context.Context, id string, delta score.Points) error {
	return r.update(id, func(u *models.User) { u.Score += delta })
}

func (r *userRepo) SetScore(_ context.Context, id string, value score.Points) error {
	return r.update(id, func(u *models.User) { u.Score = value })
}

func (r *userRepo) SetBanned(_ context.Context, id string, banned bool) error {
	return r.update(id, func(u *models.User) { u.IsBanned = banned })
}

func (r *userRepo) SetModerator(_ context.Context, id string, moderator bool) error {
	return r.update(id, func(u *models.User) { u.IsModerator = moderator })
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.t.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.t.users, id)
	return nil
}
