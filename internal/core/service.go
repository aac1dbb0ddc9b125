package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bushiwarriror44/redirect/internal/shortid"
	"github.com/bushiwarriror44/redirect/internal/store"
)

var (
	ErrInvalidTargetURL = errors.New("target url must be absolute with http or https scheme")
	ErrInvalidSlug      = errors.New("slug may contain only A-Z, a-z, 0-9, - and _")
	// ErrSlugSpaceExhausted means the bounded random-slug retry loop ran
	// out of attempts. In practice this signals a bug or an adversarial
	// condition, not normal load.
	ErrSlugSpaceExhausted = errors.New("unable to generate unique slug")
)

const maxSlugLen = 120

// Service owns the slug -> target mapping: validation, random slug
// generation, CRUD and resolve. It never inspects authentication.
type Service struct {
	store       store.Store
	slugLen     int
	maxAttempts int
}

func NewService(s store.Store, slugLen, maxAttempts int) *Service {
	return &Service{store: s, slugLen: slugLen, maxAttempts: maxAttempts}
}

// ValidTargetURL reports whether s is an absolute http/https URL with a
// non-empty host. Pure, no side effects.
func ValidTargetURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidSlug reports whether s is non-empty and built only from ASCII
// letters, digits, - and _.
func ValidSlug(s string) bool {
	if s == "" || len(s) > maxSlugLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// NormalizeSlug trims surrounding whitespace; an empty result means no
// manual slug was supplied.
func NormalizeSlug(s string) string {
	return strings.TrimSpace(s)
}

func (s *Service) List(ctx context.Context) ([]store.RedirectLink, error) {
	return s.store.ListLinks(ctx)
}

func (s *Service) FindBySlug(ctx context.Context, slug string) (store.RedirectLink, error) {
	return s.store.LinkBySlug(ctx, slug)
}

func (s *Service) FindByID(ctx context.Context, id int64) (store.RedirectLink, error) {
	return s.store.LinkByID(ctx, id)
}

// Create validates the target, settles on a slug (manual or generated) and
// inserts the record. The store's UNIQUE constraint backs the existence
// pre-check, so a racing create loses with store.ErrSlugTaken.
func (s *Service) Create(ctx context.Context, manualSlug, target string) (store.RedirectLink, error) {
	target = strings.TrimSpace(target)
	if !ValidTargetURL(target) {
		return store.RedirectLink{}, ErrInvalidTargetURL
	}

	slug := NormalizeSlug(manualSlug)
	if slug != "" {
		if !ValidSlug(slug) {
			return store.RedirectLink{}, ErrInvalidSlug
		}
		taken, err := s.store.SlugExists(ctx, slug)
		if err != nil {
			return store.RedirectLink{}, err
		}
		if taken {
			return store.RedirectLink{}, store.ErrSlugTaken
		}
	} else {
		var err error
		slug, err = s.uniqueSlug(ctx)
		if err != nil {
			return store.RedirectLink{}, err
		}
	}

	return s.store.InsertLink(ctx, slug, target)
}

// Update overwrites slug and target of an existing record. Unlike Create,
// the slug is required here and may not be cleared. A missing id reports
// NotFound before any validation runs.
func (s *Service) Update(ctx context.Context, id int64, slug, target string) (store.RedirectLink, error) {
	if _, err := s.store.LinkByID(ctx, id); err != nil {
		return store.RedirectLink{}, err
	}
	target = strings.TrimSpace(target)
	if !ValidTargetURL(target) {
		return store.RedirectLink{}, ErrInvalidTargetURL
	}
	slug = NormalizeSlug(slug)
	if !ValidSlug(slug) {
		return store.RedirectLink{}, ErrInvalidSlug
	}

	if existing, err := s.store.LinkBySlug(ctx, slug); err == nil {
		if existing.ID != id {
			return store.RedirectLink{}, store.ErrSlugTaken
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.RedirectLink{}, err
	}

	return s.store.UpdateLink(ctx, id, slug, target)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteLink(ctx, id)
}

// Resolve looks up slug, increments its click count by exactly one and
// returns the stored target. This is the only click_count mutation path.
func (s *Service) Resolve(ctx context.Context, slug string) (string, error) {
	return s.store.IncrementClicks(ctx, slug)
}

func (s *Service) uniqueSlug(ctx context.Context) (string, error) {
	for i := 0; i < s.maxAttempts; i++ {
		candidate, err := shortid.Generate(s.slugLen)
		if err != nil {
			return "", fmt.Errorf("draw random slug: %w", err)
		}
		taken, err := s.store.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrSlugSpaceExhausted
}
