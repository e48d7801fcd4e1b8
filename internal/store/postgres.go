package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanakrit/postboard-backend/internal/models"
)

// uniqueViolation is the Postgres error code for constraint class 23505.
const uniqueViolation = "23505"

// PostgresStore handles user and post CRUD against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users and posts tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email      VARCHAR(255) UNIQUE NOT NULL,
			password   VARCHAR(255) NOT NULL,
			name       VARCHAR(255) NOT NULL,
			number     VARCHAR(50),
			picture    VARCHAR(255),
			created_at TIMESTAMPTZ  DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS posts (
			id         BIGSERIAL PRIMARY KEY,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			author     VARCHAR(255) NOT NULL,
			image_url  VARCHAR(255),
			user_id    UUID NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate posts: %w", err)
	}
	return nil
}

// CreateUser inserts a new user. The insert and the duplicate check are a
// single statement: ON CONFLICT DO NOTHING returns no row when the email is
// taken, which surfaces as ErrDuplicateEmail.
func (s *PostgresStore) CreateUser(ctx context.Context, email, hashedPassword, name string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, password, name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING id, email, name, created_at`,
		email, hashedPassword, name,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password, name, number, picture, created_at
		 FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Number, &u.Picture, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, number, picture, created_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Number, &u.Picture, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

// UpdateProfile applies a partial profile update: name and email always,
// number and picture only when supplied.
func (s *PostgresStore) UpdateProfile(ctx context.Context, userID string, p models.ProfileUpdate) error {
	sets := []string{"name = $1", "email = $2"}
	args := []any{p.Name, p.Email}

	if p.Number != nil {
		args = append(args, *p.Number)
		sets = append(sets, "number = $"+strconv.Itoa(len(args)))
	}
	if p.Picture != nil {
		args = append(args, *p.Picture)
		sets = append(sets, "picture = $"+strconv.Itoa(len(args)))
	}
	args = append(args, userID)

	query := "UPDATE users SET " + strings.Join(sets, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreatePost(ctx context.Context, p *models.Post) (*models.Post, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO posts (title, content, author, image_url, user_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		p.Title, p.Content, p.Author, p.ImageURL, p.UserID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPostsByUser(ctx context.Context, userID string) ([]models.Post, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, content, author, image_url, user_id, created_at
		 FROM posts WHERE user_id = $1 ORDER BY id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.ImageURL, &p.UserID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// UpdatePost changes title and content of a post owned by userID. The
// ownership check and the write are one statement; zero affected rows means
// the post is absent or owned by someone else.
func (s *PostgresStore) UpdatePost(ctx context.Context, id int64, userID, title, content string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE posts SET title = $1, content = $2 WHERE id = $3 AND user_id = $4`,
		title, content, id, userID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotOwner
	}
	return nil
}

// DeletePost removes a post owned by userID, with the same ownership-filter
// contract as UpdatePost.
func (s *PostgresStore) DeletePost(ctx context.Context, id int64, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM posts WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotOwner
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
