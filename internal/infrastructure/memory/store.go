// Package memory is an in-process implementation of the repositories with the
// same observable semantics as the postgres one. The service, handler, router
// and container tests run on it.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/blogilista/internal/domain/entity"
	"github.com/oksasatya/blogilista/internal/domain/repository"
)

type Store struct {
	mu    sync.Mutex
	users map[string]*entity.User
	blogs map[string]*entity.Blog
	seq   int64
	fail  map[string]error
}

func NewStore() *Store {
	return &Store{
		users: map[string]*entity.User{},
		blogs: map[string]*entity.Blog{},
		fail:  map[string]error{},
	}
}

// FailOn makes the named operation return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }
func (s *Store) Blogs() *BlogRepository { return &BlogRepository{s: s} }

// BlogCount returns the number of stored blogs.
func (s *Store) BlogCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blogs)
}

// UserCount returns the number of stored users.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// stamp returns strictly increasing timestamps so listing order is stable.
func (s *Store) stamp() time.Time {
	s.seq++
	return time.Unix(0, 0).UTC().Add(time.Duration(s.seq) * time.Millisecond)
}

func (s *Store) failure(op string) error {
	if err, ok := s.fail[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("create user"); err != nil {
		return err
	}
	for _, other := range r.s.users {
		if other.Username == u.Username {
			return fmt.Errorf("create user: %w: users_username_key", repository.ErrConflict)
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.s.stamp()
	cp := *u
	cp.BlogIDs = append([]string{}, u.BlogIDs...)
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("get user"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) ([]entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("find users by username"); err != nil {
		return nil, err
	}
	var out []entity.User
	for _, u := range r.s.users {
		if u.Username == username {
			out = append(out, *copyUser(u))
		}
	}
	return out, nil
}

func (r *UserRepository) List(_ context.Context) ([]entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("list users"); err != nil {
		return nil, err
	}
	out := make([]entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) ListByIDs(_ context.Context, ids []string) ([]entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("list users by id"); err != nil {
		return nil, err
	}
	out := []entity.User{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, *copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type BlogRepository struct{ s *Store }

func (r *BlogRepository) List(_ context.Context) ([]entity.Blog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("list blogs"); err != nil {
		return nil, err
	}
	return r.sorted(func(*entity.Blog) bool { return true }), nil
}

func (r *BlogRepository) ListByIDs(_ context.Context, ids []string) ([]entity.Blog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("list blogs by id"); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.sorted(func(b *entity.Blog) bool { return want[b.ID] }), nil
}

func (r *BlogRepository) GetByID(_ context.Context, id string) (*entity.Blog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("get blog"); err != nil {
		return nil, err
	}
	b, ok := r.s.blogs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *BlogRepository) Create(_ context.Context, b *entity.Blog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("create blog"); err != nil {
		return err
	}
	owner, ok := r.s.users[b.UserID]
	if b.UserID != "" && !ok {
		return fmt.Errorf("create blog: owner %s does not exist", b.UserID)
	}
	b.ID = uuid.NewString()
	b.CreatedAt = r.s.stamp()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.s.blogs[b.ID] = &cp
	if ok {
		owner.BlogIDs = append(owner.BlogIDs, b.ID)
	}
	return nil
}

func (r *BlogRepository) Update(_ context.Context, id string, patch entity.BlogPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("update blog"); err != nil {
		return err
	}
	b, ok := r.s.blogs[id]
	if !ok {
		return nil
	}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Author != nil {
		b.Author = *patch.Author
	}
	if patch.URL != nil {
		b.URL = *patch.URL
	}
	if patch.Likes != nil {
		b.Likes = *patch.Likes
	}
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *BlogRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("delete blog"); err != nil {
		return err
	}
	delete(r.s.blogs, id)
	return nil
}

func (r *BlogRepository) sorted(keep func(*entity.Blog) bool) []entity.Blog {
	out := []entity.Blog{}
	for _, b := range r.s.blogs {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func copyUser(u *entity.User) *entity.User {
	cp := *u
	cp.BlogIDs = append([]string{}, u.BlogIDs...)
	return &cp
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.BlogRepository = (*BlogRepository)(nil)
)
