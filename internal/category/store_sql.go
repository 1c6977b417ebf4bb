package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/examprep/examprep-server/internal/db"
)

var (
	ErrNotFound = errors.New("category not found")
	ErrExists   = errors.New("category already exists")
)

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Parent      *int64 `json:"parent"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"createdAt"`
}

type ListOpts struct {
	Type     string
	Parent   *int64 // nil: no filter; RootOnly selects parentless
	RootOnly bool
}

type SQLStore struct {
	db     *sql.DB
	driver db.Driver
}

func NewSQLStore(dbh *sql.DB, driver db.Driver) *SQLStore {
	return &SQLStore{db: dbh, driver: driver}
}

func (s *SQLStore) Create(ctx context.Context, name, typ string, parent *int64, description string) (Category, error) {
	// Names are unique among siblings.
	var exists int
	var err error
	if parent != nil {
		err = s.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE name=$1 AND parent=$2`, name, *parent).Scan(&exists)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE name=$1 AND parent IS NULL`, name).Scan(&exists)
	}
	switch {
	case err == nil:
		return Category{}, ErrExists
	case !errors.Is(err, sql.ErrNoRows):
		return Category{}, err
	}

	id, err := db.InsertReturningID(ctx, s.db, s.driver,
		`INSERT INTO categories (name,type,parent,description,created_at) VALUES ($1,$2,$3,$4,$5)`,
		name, typ, parentArg(parent), description, time.Now().Unix())
	if err != nil {
		return Category{}, err
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,type,parent,description,created_at FROM categories WHERE id=$1`, id)
	return scanCategory(row)
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Category, error) {
	where := ""
	args := []any{}
	and := func(cond string, vs ...any) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += cond
		args = append(args, vs...)
	}
	if opts.Type != "" {
		and(fmt.Sprintf("type=$%d", len(args)+1), opts.Type)
	}
	if opts.Parent != nil {
		and(fmt.Sprintf("parent=$%d", len(args)+1), *opts.Parent)
	} else if opts.RootOnly {
		and("parent IS NULL")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,type,parent,description,created_at FROM categories`+where+` ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) Children(ctx context.Context, id int64) ([]Category, error) {
	return s.List(ctx, ListOpts{Parent: &id})
}

// Update changes the provided fields; empty name/type/description mean
// "leave as is", while a non-nil parent pointer always overwrites (pointing
// at 0 clears the parent).
func (s *SQLStore) Update(ctx context.Context, id int64, name, typ string, parent *int64, description string) (Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	sets := ""
	args := []any{}
	add := func(col string, v any) {
		if sets != "" {
			sets += ", "
		}
		sets += fmt.Sprintf("%s=$%d", col, len(args)+1)
		args = append(args, v)
	}
	if name != "" {
		add("name", name)
	}
	if typ != "" {
		add("type", typ)
	}
	if parent != nil {
		if *parent == 0 {
			add("parent", nil)
		} else {
			add("parent", *parent)
		}
	}
	if description != "" {
		add("description", description)
	}
	if sets == "" {
		return c, nil
	}
	args = append(args, id)
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("UPDATE categories SET %s WHERE id=$%d", sets, len(args)), args...); err != nil {
		return Category{}, err
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id=$1`, id)
	return err
}

func parentArg(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (Category, error) {
	var c Category
	var parent sql.NullInt64
	if err := row.Scan(&c.ID, &c.Name, &c.Type, &parent, &c.Description, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, err
	}
	if parent.Valid {
		c.Parent = &parent.Int64
	}
	return c, nil
}
