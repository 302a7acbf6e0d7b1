package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/interviewhub/interviewhub-api/internal/domain/entity"
	"github.com/interviewhub/interviewhub-api/internal/domain/repository"
)

// ErrNotFound is returned when no account matches the query.
var ErrNotFound = errors.New("account not found")

// DB is the subset of pgxpool.Pool the repository needs.
// pgxmock satisfies it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AccountRepository struct {
	db DB
}

func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, username, email, password_hash, is_admin, is_email_verified,
		branch, passing_year, designation, about, github, leetcode, linkedin,
		created_at, updated_at`

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO accounts (username, email, password_hash, is_admin, is_email_verified,
			branch, passing_year, designation, about, github, leetcode, linkedin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, a.Username, a.Email, a.PasswordHash, a.IsAdmin, a.IsEmailVerified,
		a.Branch, a.PassingYear, a.Designation, a.About, a.GitHub, a.Leetcode, a.LinkedIn)

	return row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.scanOne(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id))
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.scanOne(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email = $1
	`, email))
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET password_hash = $1, updated_at = $2
		WHERE email = $3
	`, passwordHash, time.Now(), email)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccountRepository) MarkEmailVerified(ctx context.Context, email string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET is_email_verified = TRUE, updated_at = $1
		WHERE email = $2
	`, time.Now(), email)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccountRepository) scanOne(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.IsAdmin, &a.IsEmailVerified,
		&a.Branch, &a.PassingYear, &a.Designation, &a.About, &a.GitHub, &a.Leetcode, &a.LinkedIn,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
