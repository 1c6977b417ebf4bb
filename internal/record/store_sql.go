package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/examprep/examprep-server/internal/db"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrNotOwner   = errors.New("record belongs to another user")
	ErrNoQuestion = errors.New("question not found")
)

// QuestionInfo is the slice of the question embedded in record listings.
type QuestionInfo struct {
	ID         int64  `json:"id"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
}

type Record struct {
	ID           int64        `json:"_id"`
	UserID       int64        `json:"userId"`
	QuestionID   int64        `json:"questionId"`
	Answer       any          `json:"answer"`
	IsCorrect    bool         `json:"isCorrect"`
	IsWrong      bool         `json:"isWrong"`
	IsMarked     bool         `json:"isMarked"`
	IsMastered   bool         `json:"isMastered"`
	AnswerTimeMS int64        `json:"answerTime"`
	CreatedAt    int64        `json:"createdAt"`
	Question     QuestionInfo `json:"question"`
}

type ListOpts struct {
	QuestionID int64 // 0: no filter
	IsCorrect  *bool
	IsMarked   *bool
	IsMastered *bool
	Page       int
	Limit      int
}

// Flags is the updatable portion of a record.
type Flags struct {
	IsMarked   *bool `json:"isMarked"`
	IsMastered *bool `json:"isMastered"`
}

type TypeStat struct {
	Type     string  `json:"type"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

type DifficultyStat struct {
	Difficulty string  `json:"difficulty"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Accuracy   float64 `json:"accuracy"`
}

type Stats struct {
	TotalAnswers    int              `json:"totalAnswers"`
	CorrectAnswers  int              `json:"correctAnswers"`
	WrongAnswers    int              `json:"wrongAnswers"`
	MarkedAnswers   int              `json:"markedAnswers"`
	MasteredAnswers int              `json:"masteredAnswers"`
	Accuracy        float64          `json:"accuracy"`
	TypeStats       []TypeStat       `json:"typeStats"`
	DifficultyStats []DifficultyStat `json:"difficultyStats"`
}

type SQLStore struct {
	db     *sql.DB
	driver db.Driver
}

func NewSQLStore(dbh *sql.DB, driver db.Driver) *SQLStore {
	return &SQLStore{db: dbh, driver: driver}
}

func (s *SQLStore) Create(ctx context.Context, userID, questionID int64, answer any, isCorrect bool, answerTimeMS int64) (Record, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM questions WHERE id=$1`, questionID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNoQuestion
		}
		return Record{}, err
	}

	aj, err := json.Marshal(answer)
	if err != nil {
		return Record{}, err
	}
	id, err := db.InsertReturningID(ctx, s.db, s.driver,
		`INSERT INTO answer_records (user_id,question_id,answer_json,is_correct,answer_time_ms,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		userID, questionID, string(aj), boolInt(isCorrect), answerTimeMS, time.Now().Unix())
	if err != nil {
		return Record{}, err
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,question_id,answer_json,is_correct,marked,mastered,answer_time_ms,created_at
		 FROM answer_records WHERE id=$1`, id)
	return scanRecord(row)
}

func (s *SQLStore) List(ctx context.Context, userID int64, opts ListOpts) ([]Record, int, error) {
	where := " WHERE ar.user_id=$1"
	countWhere := " WHERE user_id=$1"
	args := []any{userID}
	and := func(joined, bare string, v any) {
		where += fmt.Sprintf(" AND "+joined, len(args)+1)
		countWhere += fmt.Sprintf(" AND "+bare, len(args)+1)
		args = append(args, v)
	}
	if opts.QuestionID != 0 {
		and("ar.question_id=$%d", "question_id=$%d", opts.QuestionID)
	}
	if opts.IsCorrect != nil {
		and("ar.is_correct=$%d", "is_correct=$%d", boolInt(*opts.IsCorrect))
	}
	if opts.IsMarked != nil {
		and("ar.marked=$%d", "marked=$%d", boolInt(*opts.IsMarked))
	}
	if opts.IsMastered != nil {
		and("ar.mastered=$%d", "mastered=$%d", boolInt(*opts.IsMastered))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM answer_records`+countWhere, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 10
	}
	q := fmt.Sprintf(
		`SELECT ar.id,ar.user_id,ar.question_id,ar.answer_json,ar.is_correct,ar.marked,ar.mastered,ar.answer_time_ms,ar.created_at,
		        q.content, q.type, q.difficulty
		 FROM answer_records ar
		 LEFT JOIN questions q ON ar.question_id = q.id%s
		 ORDER BY ar.created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var r Record
		var aj string
		var correct, marked, mastered int
		var qContent, qType, qDifficulty sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.QuestionID, &aj, &correct, &marked, &mastered, &r.AnswerTimeMS, &r.CreatedAt,
			&qContent, &qType, &qDifficulty); err != nil {
			return nil, 0, err
		}
		fillFlags(&r, correct, marked, mastered)
		_ = json.Unmarshal([]byte(aj), &r.Answer)
		r.Question = QuestionInfo{ID: r.QuestionID, Content: qContent.String, Type: qType.String, Difficulty: qDifficulty.String}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// UpdateFlags toggles marked/mastered; only the owner may touch a record.
func (s *SQLStore) UpdateFlags(ctx context.Context, id, userID int64, f Flags) (Record, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if r.UserID != userID {
		return Record{}, ErrNotOwner
	}
	sets := ""
	args := []any{}
	add := func(col string, v bool) {
		if sets != "" {
			sets += ", "
		}
		sets += fmt.Sprintf("%s=$%d", col, len(args)+1)
		args = append(args, boolInt(v))
	}
	if f.IsMarked != nil {
		add("marked", *f.IsMarked)
	}
	if f.IsMastered != nil {
		add("mastered", *f.IsMastered)
	}
	if sets == "" {
		return r, nil
	}
	args = append(args, id)
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("UPDATE answer_records SET %s WHERE id=$%d", sets, len(args)), args...); err != nil {
		return Record{}, err
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Delete(ctx context.Context, id, userID int64) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if r.UserID != userID {
		return ErrNotOwner
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM answer_records WHERE id=$1`, id)
	return err
}

func (s *SQLStore) Stats(ctx context.Context, userID int64) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN is_correct=1 THEN 1 ELSE 0 END),0),
		        COALESCE(SUM(CASE WHEN is_correct=0 THEN 1 ELSE 0 END),0),
		        COALESCE(SUM(CASE WHEN marked=1 THEN 1 ELSE 0 END),0),
		        COALESCE(SUM(CASE WHEN mastered=1 THEN 1 ELSE 0 END),0)
		 FROM answer_records WHERE user_id=$1`, userID).
		Scan(&st.TotalAnswers, &st.CorrectAnswers, &st.WrongAnswers, &st.MarkedAnswers, &st.MasteredAnswers)
	if err != nil {
		return Stats{}, err
	}
	if st.TotalAnswers > 0 {
		st.Accuracy = round2(float64(st.CorrectAnswers) / float64(st.TotalAnswers) * 100)
	}

	st.TypeStats = []TypeStat{}
	rows, err := s.db.QueryContext(ctx,
		`SELECT q.type, COUNT(*), SUM(CASE WHEN ar.is_correct=1 THEN 1 ELSE 0 END)
		 FROM answer_records ar JOIN questions q ON ar.question_id = q.id
		 WHERE ar.user_id=$1 GROUP BY q.type`, userID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var ts TypeStat
		if err := rows.Scan(&ts.Type, &ts.Total, &ts.Correct); err != nil {
			return Stats{}, err
		}
		ts.Accuracy = round2(float64(ts.Correct) / float64(ts.Total) * 100)
		st.TypeStats = append(st.TypeStats, ts)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	st.DifficultyStats = []DifficultyStat{}
	drows, err := s.db.QueryContext(ctx,
		`SELECT q.difficulty, COUNT(*), SUM(CASE WHEN ar.is_correct=1 THEN 1 ELSE 0 END)
		 FROM answer_records ar JOIN questions q ON ar.question_id = q.id
		 WHERE ar.user_id=$1 GROUP BY q.difficulty`, userID)
	if err != nil {
		return Stats{}, err
	}
	defer drows.Close()
	for drows.Next() {
		var ds DifficultyStat
		if err := drows.Scan(&ds.Difficulty, &ds.Total, &ds.Correct); err != nil {
			return Stats{}, err
		}
		ds.Accuracy = round2(float64(ds.Correct) / float64(ds.Total) * 100)
		st.DifficultyStats = append(st.DifficultyStats, ds)
	}
	return st, drows.Err()
}

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var r Record
	var aj string
	var correct, marked, mastered int
	if err := row.Scan(&r.ID, &r.UserID, &r.QuestionID, &aj, &correct, &marked, &mastered, &r.AnswerTimeMS, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	fillFlags(&r, correct, marked, mastered)
	_ = json.Unmarshal([]byte(aj), &r.Answer)
	return r, nil
}

func fillFlags(r *Record, correct, marked, mastered int) {
	r.IsCorrect = correct != 0
	r.IsWrong = correct == 0
	r.IsMarked = marked != 0
	r.IsMastered = mastered != 0
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
