package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/examprep/examprep-server/internal/db"
)

var ErrNotFound = errors.New("progress not found")

// CategoryInfo is the slice of the category embedded in progress payloads.
type CategoryInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Progress tracks how far one user is through one category. ID is nil for
// the synthetic zero-value record served when nothing is stored yet.
type Progress struct {
	ID                 *int64       `json:"_id"`
	UserID             int64        `json:"userId"`
	CategoryID         int64        `json:"categoryId"`
	Category           CategoryInfo `json:"category"`
	CompletedQuestions int          `json:"completedQuestions"`
	TotalQuestions     int          `json:"totalQuestions"`
	CreatedAt          int64        `json:"createdAt"`
	UpdatedAt          int64        `json:"updatedAt"`
}

type SQLStore struct {
	db     *sql.DB
	driver db.Driver
}

func NewSQLStore(dbh *sql.DB, driver db.Driver) *SQLStore {
	return &SQLStore{db: dbh, driver: driver}
}

func (s *SQLStore) List(ctx context.Context, userID int64, categoryID int64) ([]Progress, error) {
	q := `SELECT p.id,p.user_id,p.category_id,p.completed_questions,p.total_questions,p.created_at,p.updated_at,
	             c.name, c.type
	      FROM progress p LEFT JOIN categories c ON p.category_id = c.id
	      WHERE p.user_id=$1`
	args := []any{userID}
	if categoryID != 0 {
		q += ` AND p.category_id=$2`
		args = append(args, categoryID)
	}
	q += ` ORDER BY p.updated_at DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Progress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetByCategory(ctx context.Context, userID, categoryID int64) (Progress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT p.id,p.user_id,p.category_id,p.completed_questions,p.total_questions,p.created_at,p.updated_at,
		        c.name, c.type
		 FROM progress p LEFT JOIN categories c ON p.category_id = c.id
		 WHERE p.user_id=$1 AND p.category_id=$2`, userID, categoryID)
	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Progress{}, ErrNotFound
	}
	return p, err
}

// Upsert writes the counters for one user+category pair, creating the row
// on first touch. Negative counters mean "leave as is" on update.
func (s *SQLStore) Upsert(ctx context.Context, userID, categoryID int64, completed, total int) (Progress, error) {
	now := time.Now().Unix()
	existing, err := s.GetByCategory(ctx, userID, categoryID)
	switch {
	case err == nil:
		set := "updated_at=$1"
		args := []any{now}
		if total >= 0 {
			set += ", total_questions=$2"
			args = append(args, total)
		}
		if completed >= 0 {
			set += fmt.Sprintf(", completed_questions=$%d", len(args)+1)
			args = append(args, completed)
		}
		args = append(args, *existing.ID)
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("UPDATE progress SET %s WHERE id=$%d", set, len(args)), args...); err != nil {
			return Progress{}, err
		}
		return s.GetByCategory(ctx, userID, categoryID)
	case errors.Is(err, ErrNotFound):
		if completed < 0 {
			completed = 0
		}
		if total < 0 {
			total = 0
		}
		_, err := db.InsertReturningID(ctx, s.db, s.driver,
			`INSERT INTO progress (user_id,category_id,completed_questions,total_questions,created_at,updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			userID, categoryID, completed, total, now, now)
		if err != nil {
			return Progress{}, err
		}
		return s.GetByCategory(ctx, userID, categoryID)
	default:
		return Progress{}, err
	}
}

func (s *SQLStore) Delete(ctx context.Context, userID, categoryID int64) error {
	if _, err := s.GetByCategory(ctx, userID, categoryID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE user_id=$1 AND category_id=$2`, userID, categoryID)
	return err
}

func scanProgress(row interface{ Scan(...any) error }) (Progress, error) {
	var p Progress
	var id int64
	var name, typ sql.NullString
	if err := row.Scan(&id, &p.UserID, &p.CategoryID, &p.CompletedQuestions, &p.TotalQuestions, &p.CreatedAt, &p.UpdatedAt, &name, &typ); err != nil {
		return Progress{}, err
	}
	p.ID = &id
	p.Category = CategoryInfo{ID: p.CategoryID, Name: name.String, Type: typ.String}
	return p, nil
}

