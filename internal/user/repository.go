package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var ErrUserNotFound = errors.New("user not found")

const uniqueViolation = "23505"

type Repository interface {
	createUser(ctx context.Context, user *User) error
	getUserByID(ctx context.Context, id string) (*User, error)
	getUserByEmail(ctx context.Context, email string) (*User, error)
	getUserByUsername(ctx context.Context, username string) (*User, error)
	getUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error)
	findByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	listUsers(ctx context.Context) ([]User, error)
	updateUsername(ctx context.Context, userID, username string) error
	updateTwoFactorEnabled(ctx context.Context, userID string, enabled bool) error
	updateUserPasswordAndHashToken(ctx context.Context, userID, newPasswordHash, newHashToken string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) Repository {
	return &userRepository{
		db: db,
	}
}

const selectUser = `
	SELECT id, email, username, password_hash, two_factor_enabled, hash_token, created_at, updated_at
	FROM users
`

func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.TwoFactorEnabled, &user.HashToken, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %w", err)
	}
	return &user, nil
}

// mapUniqueViolation turns a unique index violation on users into the
// matching conflict error.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return ErrEmailAlreadyExists
	}
	return ErrUsernameAlreadyExists
}

func (r *userRepository) createUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (email, username, password_hash, two_factor_enabled, hash_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRowContext(ctx, query, user.Email, user.Username, user.PasswordHash, user.TwoFactorEnabled, user.HashToken).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if conflict := mapUniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

func (r *userRepository) getUserByID(ctx context.Context, id string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE id = $1`, id))
}

func (r *userRepository) getUserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE email = $1`, email))
}

func (r *userRepository) getUserByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE username = $1`, username))
}

func (r *userRepository) getUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE username = $1 OR email = $1 LIMIT 1`, loginOrEmail))
}

func (r *userRepository) findByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE username = $1 OR email = $2 LIMIT 1`, username, email))
}

func (r *userRepository) listUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+`ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) updateUsername(ctx context.Context, userID, username string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET username = $1, updated_at = NOW() WHERE id = $2`, username, userID)
	if err != nil {
		if conflict := mapUniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("could not update username: %w", err)
	}
	return requireAffected(result)
}

func (r *userRepository) updateTwoFactorEnabled(ctx context.Context, userID string, enabled bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET two_factor_enabled = $1, updated_at = NOW() WHERE id = $2`, enabled, userID)
	if err != nil {
		return fmt.Errorf("could not update two-factor flag: %w", err)
	}
	return requireAffected(result)
}

func (r *userRepository) updateUserPasswordAndHashToken(ctx context.Context, userID, newPasswordHash, newHashToken string) error {
	query := `
        UPDATE users
        SET password_hash = $1,
            hash_token = $2,
            updated_at = NOW()
        WHERE id = $3
    `
	result, err := r.db.ExecContext(ctx, query, newPasswordHash, newHashToken, userID)
	if err != nil {
		return fmt.Errorf("could not update password: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
