package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLite(db)
}

func TestInsertLinkUniqueConstraint(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertLink(ctx, "dup", "https://example.com/a"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	// The UNIQUE constraint, not a pre-check, must report the loser.
	if _, err := s.InsertLink(ctx, "dup", "https://example.com/b"); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("second insert: got %v, want ErrSlugTaken", err)
	}
}

func TestUpdateLinkConstraintTranslated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.InsertLink(ctx, "a", "https://example.com/a")
	if err != nil {
		t.Fatalf("insert a: %v", err)
	}
	if _, err := s.InsertLink(ctx, "b", "https://example.com/b"); err != nil {
		t.Fatalf("insert b: %v", err)
	}

	if _, err := s.UpdateLink(ctx, a.ID, "b", "https://example.com/x"); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("got %v, want ErrSlugTaken", err)
	}
}

func TestUpdateLinkMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.UpdateLink(context.Background(), 12345, "x", "https://example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestIncrementClicks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	link, err := s.InsertLink(ctx, "clicky", "https://example.com")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	for i := 1; i <= 3; i++ {
		target, err := s.IncrementClicks(ctx, "clicky")
		if err != nil {
			t.Fatalf("increment #%d: %v", i, err)
		}
		if target != "https://example.com" {
			t.Errorf("target = %q", target)
		}
	}

	got, err := s.LinkByID(ctx, link.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.ClickCount != 3 {
		t.Errorf("click count = %d, want 3", got.ClickCount)
	}
	// clicks are not a slug/target mutation
	if !got.UpdatedAt.Equal(link.UpdatedAt) {
		t.Error("updated_at changed by a click")
	}
}

func TestIncrementClicksMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.IncrementClicks(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteLink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	link, _ := s.InsertLink(ctx, "bye", "https://example.com")
	if err := s.DeleteLink(ctx, link.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteLink(ctx, link.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
	if _, err := s.LinkBySlug(ctx, "bye"); !errors.Is(err, ErrNotFound) {
		t.Errorf("slug still present after delete: %v", err)
	}
}

func TestSlugExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.SlugExists(ctx, "nothing")
	if err != nil || ok {
		t.Errorf("SlugExists(nothing) = %v, %v", ok, err)
	}
	s.InsertLink(ctx, "something", "https://example.com")
	ok, err = s.SlugExists(ctx, "something")
	if err != nil || !ok {
		t.Errorf("SlugExists(something) = %v, %v", ok, err)
	}
}

func TestPageSections(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetPageSection(ctx, "home", "hero"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing section: got %v, want ErrNotFound", err)
	}

	if err := s.UpsertPageSection(ctx, "home", "hero", `{"title":"hi"}`); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertPageSection(ctx, "home", "hero", `{"title":"hello"}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := s.UpsertPageSection(ctx, "home", "footer", `{"year":2026}`); err != nil {
		t.Fatalf("second section: %v", err)
	}

	got, err := s.GetPageSection(ctx, "home", "hero")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != `{"title":"hello"}` {
		t.Errorf("content = %q", got.Content)
	}

	all, err := s.PageSections(ctx, "home")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d sections, want 2", len(all))
	}
}
