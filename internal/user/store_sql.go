package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/examprep/examprep-server/internal/db"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrExists   = errors.New("user already exists")
)

type User struct {
	ID           int64  `json:"_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"isAdmin"`
	IsGuest      bool   `json:"isGuest"`
	CreatedAt    int64  `json:"createdAt"`
	LastLogin    *int64 `json:"lastLogin"`
}

type SQLStore struct {
	db     *sql.DB
	driver db.Driver
}

func NewSQLStore(dbh *sql.DB, driver db.Driver) *SQLStore {
	return &SQLStore{db: dbh, driver: driver}
}

func (s *SQLStore) Create(ctx context.Context, username, email, passwordHash string, isAdmin, isGuest bool) (User, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE email=$1 OR username=$2`, email, username).Scan(&exists)
	switch {
	case err == nil:
		return User{}, ErrExists
	case !errors.Is(err, sql.ErrNoRows):
		return User{}, err
	}

	id, err := db.InsertReturningID(ctx, s.db, s.driver,
		`INSERT INTO users (username,email,password_hash,is_admin,is_guest,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		username, email, passwordHash, boolInt(isAdmin), boolInt(isGuest), time.Now().Unix())
	if err != nil {
		return User{}, err
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Get(ctx context.Context, id int64) (User, error) {
	return s.getWhere(ctx, "id=$1", id)
}

func (s *SQLStore) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.getWhere(ctx, "email=$1", email)
}

func (s *SQLStore) getWhere(ctx context.Context, cond string, arg any) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,username,email,password_hash,is_admin,is_guest,created_at,last_login FROM users WHERE `+cond, arg)
	return scanUser(row)
}

func (s *SQLStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,username,email,password_hash,is_admin,is_guest,created_at,last_login FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile changes username and/or email; empty strings leave the
// field untouched.
func (s *SQLStore) UpdateProfile(ctx context.Context, id int64, username, email string) (User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	sets := ""
	args := []any{}
	add := func(col, v string) {
		if sets != "" {
			sets += ", "
		}
		sets += fmt.Sprintf("%s=$%d", col, len(args)+1)
		args = append(args, v)
	}
	if username != "" {
		add("username", username)
	}
	if email != "" {
		add("email", email)
	}
	if sets == "" {
		return u, nil
	}
	args = append(args, id)
	_, err = s.db.ExecContext(ctx, fmt.Sprintf("UPDATE users SET %s WHERE id=$%d", sets, len(args)), args...)
	if err != nil {
		return User{}, err
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login=$1 WHERE id=$2`, time.Now().Unix(), id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	var admin, guest int
	var last sql.NullInt64
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &admin, &guest, &u.CreatedAt, &last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.IsAdmin = admin != 0
	u.IsGuest = guest != 0
	if last.Valid {
		u.LastLogin = &last.Int64
	}
	return u, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
