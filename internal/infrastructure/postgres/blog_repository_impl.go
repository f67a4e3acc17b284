package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/oksasatya/blogilista/internal/domain/entity"
	"github.com/oksasatya/blogilista/internal/domain/repository"
)

const blogColumns = `id, title, author, url, likes, user_id, created_at, updated_at`

type BlogRepository struct {
	db *sql.DB
}

func NewBlogRepository(db *sql.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBlog(s scanner) (entity.Blog, error) {
	var (
		b   entity.Blog
		uid sql.NullString
	)
	err := s.Scan(&b.ID, &b.Title, &b.Author, &b.URL, &b.Likes, &uid, &b.CreatedAt, &b.UpdatedAt)
	b.UserID = uid.String
	return b, err
}

func (r *BlogRepository) List(ctx context.Context) ([]entity.Blog, error) {
	return r.query(ctx, "list blogs", `SELECT `+blogColumns+` FROM blogs ORDER BY created_at, id`)
}

func (r *BlogRepository) ListByIDs(ctx context.Context, ids []string) ([]entity.Blog, error) {
	if len(ids) == 0 {
		return []entity.Blog{}, nil
	}
	in, args := inList(ids)
	q := `SELECT ` + blogColumns + ` FROM blogs WHERE id IN (` + in + `) ORDER BY created_at, id`
	return r.query(ctx, "list blogs by id", q, args...)
}

func (r *BlogRepository) GetByID(ctx context.Context, id string) (*entity.Blog, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blogs WHERE id = $1`, id)
	b, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, translate("get blog", err)
	}
	return &b, nil
}

func (r *BlogRepository) Create(ctx context.Context, b *entity.Blog) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return translate("begin create blog", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO blogs (title, author, url, likes, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, b.Title, b.Author, b.URL, b.Likes, sql.NullString{String: b.UserID, Valid: b.UserID != ""})
	if err = row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return translate("insert blog", err)
	}

	// ownerless blogs only come from seeding
	if b.UserID != "" {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO user_blogs (user_id, blog_id) VALUES ($1, $2)
		`, b.UserID, b.ID); err != nil {
			return translate("append owner blog ref", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return translate("commit create blog", err)
	}
	return nil
}

func (r *BlogRepository) Update(ctx context.Context, id string, patch entity.BlogPatch) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE blogs
		SET title = COALESCE($1, title),
		    author = COALESCE($2, author),
		    url = COALESCE($3, url),
		    likes = COALESCE($4, likes),
		    updated_at = now()
		WHERE id = $5
	`, nullString(patch.Title), nullString(patch.Author), nullString(patch.URL), nullInt(patch.Likes), id)
	if err != nil {
		return translate("update blog", err)
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id); err != nil {
		return translate("delete blog", err)
	}
	return nil
}

func (r *BlogRepository) query(ctx context.Context, op, q string, args ...any) ([]entity.Blog, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translate(op, err)
	}
	defer func() { _ = rows.Close() }()

	out := []entity.Blog{}
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, translate(op, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(op, err)
	}
	return out, nil
}

// inList renders "$1, $2, ..." for ids along with the matching arguments.
func inList(ids []string) (string, []any) {
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	return strings.Join(ph, ", "), args
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

var _ repository.BlogRepository = (*BlogRepository)(nil)
