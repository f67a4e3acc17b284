package application

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blogilista/internal/domain/entity"
	repo "github.com/oksasatya/blogilista/internal/domain/repository"
	"github.com/oksasatya/blogilista/pkg/helpers"
)

// MinPasswordLength is the shortest password accepted at registration, in characters.
const MinPasswordLength = 3

// PasswordHasher is the one-way credential hash used for stored passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	GenerateToken(userID, username string) (string, time.Time, error)
}

type UserService struct {
	Users  repo.UserRepository
	Blogs  repo.BlogRepository
	Hasher PasswordHasher
	Tokens TokenIssuer
	Events repo.EventPublisher // optional
	Logger *logrus.Logger
}

func NewUserService(users repo.UserRepository, blogs repo.BlogRepository, hasher PasswordHasher, tokens TokenIssuer, events repo.EventPublisher, logger *logrus.Logger) *UserService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &UserService{Users: users, Blogs: blogs, Hasher: hasher, Tokens: tokens, Events: events, Logger: logger}
}

type RegisterInput struct {
	Username string
	Password string
	Name     string
	Adult    *bool // nil defaults to true
}

// Register validates the input and creates the user. Nothing is written on a validation failure.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	adult := true
	if in.Adult != nil {
		adult = *in.Adult
	}

	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if in.Username == "" {
		return nil, ErrUsernameMissing
	}

	same, err := s.Users.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, s.internal("find users by username", err, logrus.Fields{"username": in.Username})
	}
	if len(same) != 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, s.internal("hash password", err, nil)
	}

	u := &entity.User{
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		Adult:        adult,
		BlogIDs:      []string{},
	}
	if err := s.Users.Create(ctx, u); err != nil {
		// lost a race with a concurrent registration of the same username
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, s.internal("create user", err, logrus.Fields{"username": in.Username})
	}

	publish(ctx, s.Events, s.Logger, "user_registered", map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"name":     u.Name,
	})
	return u, nil
}

type LoginResult struct {
	Token    string
	Expires  time.Time
	Username string
	Name     string
}

// Login checks the credentials and issues a bearer token.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	users, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, s.internal("find users by username", err, logrus.Fields{"username": username})
	}
	if len(users) == 0 || !s.Hasher.Compare(users[0].PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	u := users[0]
	token, exp, err := s.Tokens.GenerateToken(u.ID, u.Username)
	if err != nil {
		return nil, s.internal("generate token", err, logrus.Fields{"user_id": u.ID})
	}
	return &LoginResult{Token: token, Expires: exp, Username: u.Username, Name: u.Name}, nil
}

// UserWithBlogs is a user together with the blogs its back-references resolve to.
type UserWithBlogs struct {
	User  entity.User
	Blogs []entity.Blog
}

// List returns every user with its referenced blogs. References to deleted blogs are skipped.
func (s *UserService) List(ctx context.Context) ([]UserWithBlogs, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, s.internal("list users", err, nil)
	}

	var ids []string
	for _, u := range users {
		ids = append(ids, u.BlogIDs...)
	}
	blogs, err := s.Blogs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, s.internal("list blogs by id", err, nil)
	}
	byID := make(map[string]entity.Blog, len(blogs))
	for _, b := range blogs {
		byID[b.ID] = b
	}

	out := make([]UserWithBlogs, 0, len(users))
	for _, u := range users {
		owned := make([]entity.Blog, 0, len(u.BlogIDs))
		for _, id := range u.BlogIDs {
			if b, ok := byID[id]; ok {
				owned = append(owned, b)
			}
		}
		out = append(out, UserWithBlogs{User: u, Blogs: owned})
	}
	return out, nil
}

func (s *UserService) internal(op string, err error, fields logrus.Fields) error {
	s.Logger.WithError(err).WithFields(fields).Error(op + " failed")
	return &InternalError{Op: op, Err: err}
}
