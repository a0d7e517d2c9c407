// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ethanscookies/storefront/internal/app/domain/catalogue"
	"github.com/ethanscookies/storefront/internal/app/domain/feedback"
	"github.com/ethanscookies/storefront/internal/app/domain/order"
	"github.com/ethanscookies/storefront/internal/app/domain/user"
	"github.com/ethanscookies/storefront/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.CatalogueStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)
var _ storage.FeedbackStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- CatalogueStore ---------------------------------------------------------

func (s *Store) ListProducts(ctx context.Context) ([]catalogue.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT shortname, name, description, ingredients, price
		FROM catalogue
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (s *Store) ListProductsByIngredient(ctx context.Context, substring string) ([]catalogue.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT shortname, name, description, ingredients, price
		FROM catalogue
		WHERE ingredients LIKE $1 ESCAPE '\'
		ORDER BY name
	`, likePattern(substring))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (s *Store) GetProduct(ctx context.Context, shortname string) (catalogue.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT shortname, name, description, ingredients, price
		FROM catalogue
		WHERE shortname = $1
	`, shortname)

	var p catalogue.Product
	if err := row.Scan(&p.Shortname, &p.Name, &p.Description, &p.Ingredients, &p.Price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalogue.Product{}, storage.ErrNotFound
		}
		return catalogue.Product{}, err
	}
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]catalogue.Product, error) {
	var result []catalogue.Product
	for rows.Next() {
		var p catalogue.Product
		if err := rows.Scan(&p.Shortname, &p.Name, &p.Description, &p.Ingredients, &p.Price); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// likePattern wraps a substring in a contains pattern, escaping the LIKE
// metacharacters so user input never widens the match.
func likePattern(substring string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(substring)
	return "%" + escaped + "%"
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, acct user.Account) error {
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}

	// Single atomic insert-if-absent; concurrent signups with the same
	// username cannot both succeed.
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, session_id, created_at)
		VALUES ($1, $2, $3, NULL, $4)
		ON CONFLICT (username) DO NOTHING
	`, acct.Username, acct.Email, acct.PasswordHash, acct.CreatedAt)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrConflict
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, username string) (user.Account, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT username, email, password_hash, session_id, created_at
		FROM users
		WHERE username = $1
	`, username))
}

func (s *Store) GetUserBySession(ctx context.Context, token string) (user.Account, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT username, email, password_hash, session_id, created_at
		FROM users
		WHERE session_id = $1
	`, token))
}

func (s *Store) scanUser(row *sql.Row) (user.Account, error) {
	var (
		acct      user.Account
		sessionID sql.NullString
	)
	if err := row.Scan(&acct.Username, &acct.Email, &acct.PasswordHash, &sessionID, &acct.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.Account{}, storage.ErrNotFound
		}
		return user.Account{}, err
	}
	if sessionID.Valid {
		acct.SessionID = sessionID.String
	}
	return acct, nil
}

func (s *Store) SetSession(ctx context.Context, username, token string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET session_id = $2
		WHERE username = $1
	`, username, toNullString(token))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ClearSession(ctx context.Context, token string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET session_id = NULL
		WHERE session_id = $1
	`, token)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (s *Store) ListActiveSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id
		FROM users
		WHERE session_id IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// --- OrderStore -------------------------------------------------------------

func (s *Store) CreateOrder(ctx context.Context, rec order.Record) (order.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, phone_number, username, email, items, qtys, ingredients, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.ID, rec.Phone, toNullString(rec.Username), rec.Email, rec.Items, rec.Qtys, rec.Ingredients, rec.Total, rec.CreatedAt)
	if err != nil {
		return order.Record{}, err
	}
	return rec, nil
}

func (s *Store) ListOrdersForUser(ctx context.Context, username string) ([]order.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, phone_number, username, email, items, qtys, ingredients, total_price, created_at
		FROM orders
		WHERE username = $1
		ORDER BY created_at
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []order.Record
	for rows.Next() {
		var (
			rec  order.Record
			name sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Phone, &name, &rec.Email, &rec.Items, &rec.Qtys, &rec.Ingredients, &rec.Total, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if name.Valid {
			rec.Username = name.String
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// --- FeedbackStore ----------------------------------------------------------

func (s *Store) CreateFeedback(ctx context.Context, entry feedback.Entry) (feedback.Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, question, username, created_at)
		VALUES ($1, $2, $3, $4)
	`, entry.ID, entry.Question, toNullString(entry.Username), entry.CreatedAt)
	if err != nil {
		return feedback.Entry{}, err
	}
	return entry, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
