package store

import (
	"context"
	"errors"
	"time"
)

// RedirectLink is the persisted slug -> target mapping.
type RedirectLink struct {
	ID         int64     `json:"id"`
	Slug       string    `json:"slug"`
	TargetURL  string    `json:"target_url"`
	ClickCount int64     `json:"click_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PageSection is one named chunk of JSON content belonging to a page.
type PageSection struct {
	PageName    string
	SectionName string
	Content     string
}

var (
	// ErrNotFound is returned when no record matches the given id or slug.
	ErrNotFound = errors.New("not found")
	// ErrSlugTaken is returned when another record already owns the slug.
	ErrSlugTaken = errors.New("slug already in use")
)

type Store interface {
	InsertLink(ctx context.Context, slug, target string) (RedirectLink, error)
	LinkBySlug(ctx context.Context, slug string) (RedirectLink, error)
	LinkByID(ctx context.Context, id int64) (RedirectLink, error)
	// ListLinks returns every link, newest first.
	ListLinks(ctx context.Context) ([]RedirectLink, error)
	UpdateLink(ctx context.Context, id int64, slug, target string) (RedirectLink, error)
	DeleteLink(ctx context.Context, id int64) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	// IncrementClicks atomically bumps click_count by 1 and returns the
	// target URL. This is the only write path for click_count.
	IncrementClicks(ctx context.Context, slug string) (string, error)

	PageSections(ctx context.Context, page string) ([]PageSection, error)
	GetPageSection(ctx context.Context, page, section string) (PageSection, error)
	UpsertPageSection(ctx context.Context, page, section, content string) error
}
