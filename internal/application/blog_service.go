package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blogilista/internal/domain/entity"
	repo "github.com/oksasatya/blogilista/internal/domain/repository"
	"github.com/oksasatya/blogilista/pkg/helpers"
)

type BlogService struct {
	Blogs  repo.BlogRepository
	Users  repo.UserRepository
	Index  repo.BlogIndex      // optional
	Events repo.EventPublisher // optional
	Logger *logrus.Logger
}

func NewBlogService(blogs repo.BlogRepository, users repo.UserRepository, index repo.BlogIndex, events repo.EventPublisher, logger *logrus.Logger) *BlogService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &BlogService{Blogs: blogs, Users: users, Index: index, Events: events, Logger: logger}
}

// BlogWithOwner pairs a blog with its owner. Owner is nil for ownerless blogs.
type BlogWithOwner struct {
	Blog  entity.Blog
	Owner *entity.User
}

type CreateBlogInput struct {
	Title  *string
	Author *string
	URL    *string
	Likes  *int // nil defaults to 0
}

// Create stores a blog owned by ownerID, the subject of an already verified token.
// The blog and the owner's back-reference are written together or not at all.
func (s *BlogService) Create(ctx context.Context, ownerID string, in CreateBlogInput) (*BlogWithOwner, error) {
	if !validID(ownerID) {
		return nil, ErrUnknownUser
	}
	owner, err := s.Users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, s.internal("get owner", err, logrus.Fields{"user_id": ownerID})
	}

	likes := 0
	if in.Likes != nil {
		likes = *in.Likes
	}
	if in.Title == nil && in.URL == nil {
		return nil, ErrMissingBlogField
	}

	b := &entity.Blog{
		Title:  deref(in.Title),
		Author: deref(in.Author),
		URL:    deref(in.URL),
		Likes:  likes,
		UserID: owner.ID,
	}
	if err := s.Blogs.Create(ctx, b); err != nil {
		return nil, s.internal("create blog", err, logrus.Fields{"user_id": owner.ID})
	}
	owner.BlogIDs = append(owner.BlogIDs, b.ID)

	s.index(ctx, b)
	publish(ctx, s.Events, s.Logger, "blog_created", map[string]any{
		"id":       b.ID,
		"title":    b.Title,
		"author":   b.Author,
		"url":      b.URL,
		"username": owner.Username,
	})
	return &BlogWithOwner{Blog: *b, Owner: owner}, nil
}

// List returns every blog with its owner resolved.
func (s *BlogService) List(ctx context.Context) ([]BlogWithOwner, error) {
	blogs, err := s.Blogs.List(ctx)
	if err != nil {
		return nil, s.internal("list blogs", err, nil)
	}
	return s.withOwners(ctx, blogs)
}

func (s *BlogService) Get(ctx context.Context, id string) (*BlogWithOwner, error) {
	if !validID(id) {
		return nil, ErrMalformedID
	}
	b, err := s.Blogs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, s.internal("get blog", err, logrus.Fields{"blog_id": id})
	}
	out, err := s.withOwners(ctx, []entity.Blog{*b})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Update overwrites the fields present in patch. Any caller may update any blog,
// and a missing blog is a silent no-op.
func (s *BlogService) Update(ctx context.Context, id string, patch entity.BlogPatch) error {
	if !validID(id) {
		return ErrMalformedID
	}
	if err := s.Blogs.Update(ctx, id, patch); err != nil {
		return s.internal("update blog", err, logrus.Fields{"blog_id": id})
	}
	if s.Index != nil {
		if b, err := s.Blogs.GetByID(ctx, id); err == nil {
			s.index(ctx, b)
		}
	}
	return nil
}

// Delete removes the blog. The owner's back-reference is left in place.
// Any caller may delete any blog, and a missing blog is not an error.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrMalformedID
	}
	if err := s.Blogs.Delete(ctx, id); err != nil {
		return s.internal("delete blog", err, logrus.Fields{"blog_id": id})
	}
	if s.Index != nil {
		c, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := s.Index.Remove(c, id); err != nil {
			s.Logger.WithError(err).WithField("blog_id", id).Warn("search remove failed")
		}
	}
	return nil
}

// Search returns blogs matching q in search order. Without an index it returns nothing.
func (s *BlogService) Search(ctx context.Context, q string, size int) ([]BlogWithOwner, error) {
	if s.Index == nil || q == "" {
		return []BlogWithOwner{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	ids, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, s.internal("search blogs", err, logrus.Fields{"q": q})
	}
	blogs, err := s.Blogs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, s.internal("list blogs by id", err, nil)
	}
	byID := make(map[string]entity.Blog, len(blogs))
	for _, b := range blogs {
		byID[b.ID] = b
	}
	ordered := make([]entity.Blog, 0, len(blogs))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return s.withOwners(ctx, ordered)
}

// Stats summarises likes over all blogs.
func (s *BlogService) Stats(ctx context.Context) (*Stats, error) {
	blogs, err := s.Blogs.List(ctx)
	if err != nil {
		return nil, s.internal("list blogs", err, nil)
	}
	st := &Stats{TotalLikes: TotalLikes(blogs)}
	if fav, ok := FavouriteBlog(blogs); ok {
		st.Favourite = &fav
	}
	return st, nil
}

func (s *BlogService) withOwners(ctx context.Context, blogs []entity.Blog) ([]BlogWithOwner, error) {
	out := make([]BlogWithOwner, 0, len(blogs))
	if len(blogs) == 0 {
		return out, nil
	}
	var ownerIDs []string
	seen := map[string]bool{}
	for _, b := range blogs {
		if b.UserID != "" && !seen[b.UserID] {
			seen[b.UserID] = true
			ownerIDs = append(ownerIDs, b.UserID)
		}
	}
	var users []entity.User
	if len(ownerIDs) > 0 {
		var err error
		users, err = s.Users.ListByIDs(ctx, ownerIDs)
		if err != nil {
			return nil, s.internal("list users by id", err, nil)
		}
	}
	byID := make(map[string]*entity.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for _, b := range blogs {
		out = append(out, BlogWithOwner{Blog: b, Owner: byID[b.UserID]})
	}
	return out, nil
}

func (s *BlogService) index(ctx context.Context, b *entity.Blog) {
	if s.Index == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Index.Index(c, b); err != nil {
		s.Logger.WithError(err).WithField("blog_id", b.ID).Warn("search index failed")
	}
}

func (s *BlogService) internal(op string, err error, fields logrus.Fields) error {
	s.Logger.WithError(err).WithFields(fields).Error(op + " failed")
	return &InternalError{Op: op, Err: err}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
