package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/oksasatya/blogilista/internal/domain/entity"
	"github.com/oksasatya/blogilista/internal/domain/repository"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, name, adult)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, u.Username, u.PasswordHash, u.Name, u.Adult)

	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return translate("create user", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u := &entity.User{}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, name, adult, created_at
		FROM users
		WHERE id = $1
	`, id)

	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Adult, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, translate("get user", err)
	}

	ids, err := r.blogIDs(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.BlogIDs = ids
	return u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) ([]entity.User, error) {
	return r.query(ctx, "find users by username", `
		SELECT id, username, password_hash, name, adult, created_at
		FROM users
		WHERE username = $1
	`, username)
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	users, err := r.query(ctx, "list users", `
		SELECT id, username, password_hash, name, adult, created_at
		FROM users
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	refs, err := r.allBlogIDs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].BlogIDs = refs[users[i].ID]
	}
	return users, nil
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	in, args := inList(ids)
	users, err := r.query(ctx, "list users by id", `
		SELECT id, username, password_hash, name, adult, created_at
		FROM users
		WHERE id IN (`+in+`)
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, err
	}
	refs, err := r.refs(ctx, `
		SELECT user_id, blog_id FROM user_blogs WHERE user_id IN (`+in+`) ORDER BY position
	`, args...)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].BlogIDs = refs[users[i].ID]
	}
	return users, nil
}

func (r *UserRepository) query(ctx context.Context, op, q string, args ...any) ([]entity.User, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translate(op, err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Adult, &u.CreatedAt); err != nil {
			return nil, translate(op, err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(op, err)
	}
	return out, nil
}

func (r *UserRepository) blogIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT blog_id FROM user_blogs WHERE user_id = $1 ORDER BY position
	`, userID)
	if err != nil {
		return nil, translate("list user blog refs", err)
	}
	defer func() { _ = rows.Close() }()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, translate("list user blog refs", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list user blog refs", err)
	}
	return ids, nil
}

func (r *UserRepository) allBlogIDs(ctx context.Context) (map[string][]string, error) {
	return r.refs(ctx, `SELECT user_id, blog_id FROM user_blogs ORDER BY position`)
}

// refs groups (user_id, blog_id) rows by user, keeping row order.
func (r *UserRepository) refs(ctx context.Context, q string, args ...any) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translate("list blog refs", err)
	}
	defer func() { _ = rows.Close() }()

	out := map[string][]string{}
	for rows.Next() {
		var uid, bid string
		if err := rows.Scan(&uid, &bid); err != nil {
			return nil, translate("list blog refs", err)
		}
		out[uid] = append(out[uid], bid)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list blog refs", err)
	}
	return out, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
