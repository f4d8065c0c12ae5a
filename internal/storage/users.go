package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperr "github.com/bookmind/bookmind/internal/errors"
)

// CreateUser inserts a user with a bcrypt-hashed password.
func (d *DB) CreateUser(ctx context.Context, username, password string, roles []string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, apperr.Newf(apperr.ErrCodeInvalidInput, "username must not be empty")
	}
	if password == "" {
		return User{}, apperr.Newf(apperr.ErrCodeInvalidInput, "password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	if roles == nil {
		roles = []string{}
	}
	rolesJSON, err := json.Marshal(roles)
	if err != nil {
		return User{}, fmt.Errorf("marshaling roles: %w", err)
	}

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, is_active, roles_json)
		VALUES (?, ?, 1, ?)
	`, username, string(hash), string(rolesJSON))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return User{}, apperr.Newf(apperr.ErrCodeConflict, "username %q already exists", username)
		}
		return User{}, fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("reading user id: %w", err)
	}

	return User{ID: id, Username: username, PasswordHash: string(hash), IsActive: true, Roles: roles}, nil
}

// GetUserByUsername retrieves a user by username.
func (d *DB) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_active, roles_json
		FROM users WHERE username = ?
	`, username)
	return scanUser(row)
}

// GetUser retrieves a user by ID.
func (d *DB) GetUser(ctx context.Context, id int64) (User, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_active, roles_json
		FROM users WHERE id = ?
	`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	var isActive int
	var rolesJSON string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &isActive, &rolesJSON)
	if err == sql.ErrNoRows {
		return User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return User{}, fmt.Errorf("scanning user: %w", err)
	}
	u.IsActive = isActive != 0
	if err := json.Unmarshal([]byte(rolesJSON), &u.Roles); err != nil {
		return User{}, fmt.Errorf("parsing roles for user %d: %w", u.ID, err)
	}
	return u, nil
}

// ListUsers returns all users ordered by ID.
func (d *DB) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, username, password_hash, is_active, roles_json
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var isActive int
		var rolesJSON string
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &isActive, &rolesJSON); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.IsActive = isActive != 0
		if err := json.Unmarshal([]byte(rolesJSON), &u.Roles); err != nil {
			return nil, fmt.Errorf("parsing roles for user %d: %w", u.ID, err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserUpdate carries the mutable user fields; nil means leave unchanged.
type UserUpdate struct {
	Username *string
	IsActive *bool
	Roles    []string // nil means unchanged
	Password *string
}

// UpdateUser applies the non-nil fields of upd to the user.
func (d *DB) UpdateUser(ctx context.Context, id int64, upd UserUpdate) error {
	user, err := d.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}
	if upd.Roles != nil {
		user.Roles = upd.Roles
	}
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	rolesJSON, err := json.Marshal(user.Roles)
	if err != nil {
		return fmt.Errorf("marshaling roles: %w", err)
	}

	isActive := 0
	if user.IsActive {
		isActive = 1
	}

	_, err = d.db.ExecContext(ctx, `
		UPDATE users SET username = ?, password_hash = ?, is_active = ?, roles_json = ?
		WHERE id = ?
	`, user.Username, user.PasswordHash, isActive, string(rolesJSON), id)
	if err != nil {
		return fmt.Errorf("updating user %d: %w", id, err)
	}
	return nil
}

// DeleteUser removes a user.
func (d *DB) DeleteUser(ctx context.Context, id int64) error {
	res, err := d.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// Authenticate verifies a username/password pair against the stored bcrypt
// hash. Inactive users cannot authenticate.
func (d *DB) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := d.GetUserByUsername(ctx, username)
	if err != nil {
		return User{}, apperr.New(apperr.ErrCodeUnauthorized, "invalid credentials", err)
	}
	if !user.IsActive {
		return User{}, apperr.Newf(apperr.ErrCodeUnauthorized, "user %q is inactive", username)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, apperr.New(apperr.ErrCodeUnauthorized, "invalid credentials", err)
	}
	return user, nil
}
