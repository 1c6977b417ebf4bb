package question

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/examprep/examprep-server/internal/db"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return NewSQLStore(dbh, db.DriverSQLite)
}

func draft(content string, typ Type, diff Difficulty, cats ...string) Draft {
	return Draft{
		Content:       content,
		Type:          typ,
		Options:       []Option{{Text: "A. yes", IsCorrect: true}, {Text: "B. no"}},
		CorrectAnswer: []string{"A"},
		Difficulty:    diff,
		Categories:    cats,
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	d := draft("What is Go?", TypeSingleChoice, DifficultyEasy, "basics")
	d.Explanation = "a language"
	d.Source = "quiz 1"

	created, err := s.Create(context.Background(), d)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 || created.CreatedAt == 0 {
		t.Fatalf("missing generated fields: %+v", created)
	}

	got, err := s.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got.Options, d.Options) {
		t.Errorf("options = %+v, want %+v", got.Options, d.Options)
	}
	if !reflect.DeepEqual(got.CorrectAnswer, d.CorrectAnswer) {
		t.Errorf("correctAnswer = %v", got.CorrectAnswer)
	}
	if !reflect.DeepEqual(got.Categories, d.Categories) {
		t.Errorf("categories = %v", got.Categories)
	}
	if got.Explanation != "a language" || got.Source != "quiz 1" {
		t.Errorf("explanation/source = %q %q", got.Explanation, got.Source)
	}
}

func TestCreateNormalizesNilSlices(t *testing.T) {
	s := newTestStore(t)
	created, err := s.Create(context.Background(), Draft{Content: "tf", Type: TypeTrueFalse, Difficulty: DifficultyMedium})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Options == nil || created.CorrectAnswer == nil || created.Categories == nil {
		t.Errorf("nil slices survived storage: %+v", created)
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), 12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListFiltersAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := s.Create(ctx, draft("easy question", TypeSingleChoice, DifficultyEasy, "math")); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Create(ctx, draft("hard question", TypeMultipleChoice, DifficultyHard, "physics")); err != nil {
		t.Fatal(err)
	}

	qs, total, err := s.List(ctx, ListOpts{Difficulty: "easy"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(qs) != 3 {
		t.Errorf("easy: total=%d len=%d, want 3/3", total, len(qs))
	}

	qs, total, err = s.List(ctx, ListOpts{Category: "physics"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(qs) != 1 {
		t.Errorf("physics: total=%d len=%d, want 1/1", total, len(qs))
	}

	qs, total, err = s.List(ctx, ListOpts{Page: 2, Limit: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 4 || len(qs) != 1 {
		t.Errorf("page 2: total=%d len=%d, want 4/1", total, len(qs))
	}

	qs, _, err = s.List(ctx, ListOpts{Type: "multiple_choice"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(qs) != 1 || qs[0].Content != "hard question" {
		t.Errorf("type filter = %+v", qs)
	}
}

func TestListCategoryFilterMatchesLiterally(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, draft("q1", TypeSingleChoice, DifficultyEasy, "50%_off")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, draft("q2", TypeSingleChoice, DifficultyEasy, "50x_off")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, draft("q3", TypeSingleChoice, DifficultyEasy, `say "hi"`)); err != nil {
		t.Fatal(err)
	}

	// % and _ in a name are literals, not wildcards.
	qs, total, err := s.List(ctx, ListOpts{Category: "50%_off"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(qs) != 1 || qs[0].Content != "q1" {
		t.Errorf("wildcard name: total=%d qs=%+v", total, qs)
	}

	// A quote inside the name matches its JSON encoding.
	qs, total, err = s.List(ctx, ListOpts{Category: `say "hi"`})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(qs) != 1 || qs[0].Content != "q3" {
		t.Errorf("quoted name: total=%d qs=%+v", total, qs)
	}
}

func TestRandomRespectsCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := s.Create(ctx, draft("q", TypeSingleChoice, DifficultyMedium)); err != nil {
			t.Fatal(err)
		}
	}
	qs, err := s.Random(ctx, RandomOpts{Count: 3})
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if len(qs) != 3 {
		t.Errorf("got %d, want 3", len(qs))
	}
}

func TestUpdatePartial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created, err := s.Create(ctx, draft("before", TypeSingleChoice, DifficultyEasy))
	if err != nil {
		t.Fatal(err)
	}

	content := "after"
	diff := DifficultyHard
	got, err := s.Update(ctx, created.ID, Patch{Content: &content, Difficulty: &diff})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Content != "after" || got.Difficulty != DifficultyHard {
		t.Errorf("update not applied: %+v", got)
	}
	if got.Type != TypeSingleChoice {
		t.Errorf("untouched field changed: %s", got.Type)
	}

	// Empty patch returns the row unchanged.
	same, err := s.Update(ctx, created.ID, Patch{})
	if err != nil {
		t.Fatalf("empty Update: %v", err)
	}
	if same.Content != "after" {
		t.Errorf("empty patch mutated row: %+v", same)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created, err := s.Create(ctx, draft("doomed", TypeSingleChoice, DifficultyEasy))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete err = %v, want ErrNotFound", err)
	}
}

func TestParseType(t *testing.T) {
	for _, ok := range []string{"single_choice", "multiple_choice", "true_false"} {
		if _, err := ParseType(ok); err != nil {
			t.Errorf("ParseType(%q): %v", ok, err)
		}
	}
	if _, err := ParseType("essay"); err == nil {
		t.Error("ParseType(essay) should fail")
	}
}

func TestParseDifficulty(t *testing.T) {
	if d := ParseDifficulty("hard"); d != DifficultyHard {
		t.Errorf("hard -> %s", d)
	}
	for _, bad := range []string{"", "brutal"} {
		if d := ParseDifficulty(bad); d != DifficultyMedium {
			t.Errorf("ParseDifficulty(%q) = %s, want medium", bad, d)
		}
	}
}
