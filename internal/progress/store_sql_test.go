package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/examprep/examprep-server/internal/category"
	"github.com/examprep/examprep-server/internal/db"
	"github.com/examprep/examprep-server/internal/user"
)

func newTestStores(t *testing.T) (*SQLStore, *category.SQLStore) {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	us := user.NewSQLStore(dbh, db.DriverSQLite)
	mustUser(t, us, "alice") // id 1
	mustUser(t, us, "bob")   // id 2
	return NewSQLStore(dbh, db.DriverSQLite), category.NewSQLStore(dbh, db.DriverSQLite)
}

func mustUser(t *testing.T, us *user.SQLStore, name string) user.User {
	t.Helper()
	u, err := us.Create(context.Background(), name, name+"@example.com", "hash", false, false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func mustCategory(t *testing.T, cs *category.SQLStore, name string) category.Category {
	t.Helper()
	c, err := cs.Create(context.Background(), name, "subject", nil, "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	s, cs := newTestStores(t)
	ctx := context.Background()
	c := mustCategory(t, cs, "Math")

	p, err := s.Upsert(ctx, 1, c.ID, 3, 50)
	if err != nil {
		t.Fatalf("Upsert create: %v", err)
	}
	if p.ID == nil || *p.ID == 0 {
		t.Fatal("missing id after create")
	}
	if p.CompletedQuestions != 3 || p.TotalQuestions != 50 {
		t.Errorf("counters: %+v", p)
	}
	if p.Category.Name != "Math" {
		t.Errorf("joined category = %+v", p.Category)
	}

	// Negative counters leave the stored values alone.
	p2, err := s.Upsert(ctx, 1, c.ID, 7, -1)
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if *p2.ID != *p.ID {
		t.Errorf("id changed on update: %d -> %d", *p.ID, *p2.ID)
	}
	if p2.CompletedQuestions != 7 || p2.TotalQuestions != 50 {
		t.Errorf("counters after update: %+v", p2)
	}
}

func TestUpsertDefaultsOnCreate(t *testing.T) {
	s, cs := newTestStores(t)
	c := mustCategory(t, cs, "Physics")

	p, err := s.Upsert(context.Background(), 1, c.ID, -1, -1)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if p.CompletedQuestions != 0 || p.TotalQuestions != 0 {
		t.Errorf("counters: %+v", p)
	}
}

func TestListAndGetByCategory(t *testing.T) {
	s, cs := newTestStores(t)
	ctx := context.Background()
	math := mustCategory(t, cs, "Math")
	phys := mustCategory(t, cs, "Physics")

	if _, err := s.Upsert(ctx, 1, math.ID, 1, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert(ctx, 1, phys.ID, 2, 20); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert(ctx, 2, math.ID, 5, 10); err != nil {
		t.Fatal(err)
	}

	all, err := s.List(ctx, 1, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("user 1 progress = %d, want 2", len(all))
	}

	one, err := s.List(ctx, 1, phys.ID)
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(one) != 1 || one[0].CategoryID != phys.ID {
		t.Errorf("filtered = %+v", one)
	}

	got, err := s.GetByCategory(ctx, 2, math.ID)
	if err != nil {
		t.Fatalf("GetByCategory: %v", err)
	}
	if got.CompletedQuestions != 5 {
		t.Errorf("completed = %d", got.CompletedQuestions)
	}

	if _, err := s.GetByCategory(ctx, 2, phys.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s, cs := newTestStores(t)
	ctx := context.Background()
	c := mustCategory(t, cs, "Chemistry")

	if _, err := s.Upsert(ctx, 1, c.ID, 1, 5); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, 1, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByCategory(ctx, 1, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, 1, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete err = %v, want ErrNotFound", err)
	}
}
