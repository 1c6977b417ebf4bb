package question

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/examprep/examprep-server/internal/db"
)

var ErrNotFound = errors.New("question not found")

// SQLStore persists questions with the list-valued fields JSON-encoded into
// text columns.
type SQLStore struct {
	db     *sql.DB
	driver db.Driver
}

func NewSQLStore(dbh *sql.DB, driver db.Driver) *SQLStore {
	return &SQLStore{db: dbh, driver: driver}
}

func (s *SQLStore) Create(ctx context.Context, d Draft) (Question, error) {
	if d.Options == nil {
		d.Options = []Option{}
	}
	if d.CorrectAnswer == nil {
		d.CorrectAnswer = []string{}
	}
	if d.Categories == nil {
		d.Categories = []string{}
	}
	oj, err := json.Marshal(d.Options)
	if err != nil {
		return Question{}, err
	}
	aj, err := json.Marshal(d.CorrectAnswer)
	if err != nil {
		return Question{}, err
	}
	cj, err := json.Marshal(d.Categories)
	if err != nil {
		return Question{}, err
	}

	id, err := db.InsertReturningID(ctx, s.db, s.driver,
		`INSERT INTO questions (content,type,options_json,correct_answer_json,explanation,categories_json,difficulty,source,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.Content, string(d.Type), string(oj), string(aj), d.Explanation, string(cj), string(d.Difficulty), d.Source, time.Now().Unix())
	if err != nil {
		return Question{}, err
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,content,type,options_json,correct_answer_json,explanation,categories_json,difficulty,source,created_at
		 FROM questions WHERE id=$1`, id)
	return scanQuestion(row)
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Question, int, error) {
	where, args := buildFilter(opts.Category, opts.Difficulty, opts.Type)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 10
	}
	offset := (opts.Page - 1) * opts.Limit
	q := fmt.Sprintf(
		`SELECT id,content,type,options_json,correct_answer_json,explanation,categories_json,difficulty,source,created_at
		 FROM questions%s ORDER BY created_at ASC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Question{}
	for rows.Next() {
		qu, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, qu)
	}
	return out, total, rows.Err()
}

func (s *SQLStore) Random(ctx context.Context, opts RandomOpts) ([]Question, error) {
	where, args := buildFilter(opts.Category, opts.Difficulty, opts.Type)
	if opts.Count < 1 {
		opts.Count = 10
	}
	q := fmt.Sprintf(
		`SELECT id,content,type,options_json,correct_answer_json,explanation,categories_json,difficulty,source,created_at
		 FROM questions%s ORDER BY RANDOM() LIMIT $%d`, where, len(args)+1)
	args = append(args, opts.Count)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Question{}
	for rows.Next() {
		qu, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, qu)
	}
	return out, rows.Err()
}

func (s *SQLStore) Update(ctx context.Context, id int64, p Patch) (Question, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return Question{}, err
	}

	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)+1))
		args = append(args, v)
	}
	if p.Content != nil {
		add("content", *p.Content)
	}
	if p.Type != nil {
		add("type", string(*p.Type))
	}
	if p.Options != nil {
		b, err := json.Marshal(*p.Options)
		if err != nil {
			return Question{}, err
		}
		add("options_json", string(b))
	}
	if p.CorrectAnswer != nil {
		b, err := json.Marshal(*p.CorrectAnswer)
		if err != nil {
			return Question{}, err
		}
		add("correct_answer_json", string(b))
	}
	if p.Explanation != nil {
		add("explanation", *p.Explanation)
	}
	if p.Categories != nil {
		b, err := json.Marshal(*p.Categories)
		if err != nil {
			return Question{}, err
		}
		add("categories_json", string(b))
	}
	if p.Difficulty != nil {
		add("difficulty", string(*p.Difficulty))
	}
	if p.Source != nil {
		add("source", *p.Source)
	}
	if len(sets) == 0 {
		return s.Get(ctx, id)
	}

	q := "UPDATE questions SET "
	for i, set := range sets {
		if i > 0 {
			q += ", "
		}
		q += set
	}
	q += fmt.Sprintf(" WHERE id=$%d", len(args)+1)
	args = append(args, id)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return Question{}, err
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	return err
}

// buildFilter assembles the shared WHERE clause for list/random queries.
// The category match leans on the JSON encoding: every element is stored as
// a quoted string, so a substring match on "name" finds membership.
func buildFilter(category, difficulty, typ string) (string, []any) {
	where := ""
	args := []any{}
	and := func(cond string, v any) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, len(args)+1)
		args = append(args, v)
	}
	if difficulty != "" {
		and("difficulty=$%d", difficulty)
	}
	if typ != "" {
		and("type=$%d", typ)
	}
	if category != "" {
		and(`categories_json LIKE $%d ESCAPE '\'`, "%"+likeNeedle(category)+"%")
	}
	return where, args
}

// likeNeedle encodes a category name the way the column encoder stored it
// (quoted, with JSON escapes) and neutralizes LIKE metacharacters so a
// name containing % or _ matches literally.
func likeNeedle(category string) string {
	b, _ := json.Marshal(category)
	return likeEscaper.Replace(string(b))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (Question, error) {
	var q Question
	var oj, aj, cj string
	err := row.Scan(&q.ID, &q.Content, &q.Type, &oj, &aj, &q.Explanation, &cj, &q.Difficulty, &q.Source, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrNotFound
		}
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(aj), &q.CorrectAnswer); err != nil {
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(cj), &q.Categories); err != nil {
		return Question{}, err
	}
	return q, nil
}
