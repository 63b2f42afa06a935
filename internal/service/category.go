package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// DefaultCategories are offered before the user has entered any of their own.
var DefaultCategories = []string{"Food", "Transport", "Lodging", "Tickets", "Shopping", "Other"}

// CategoryService remembers the free-text categories each user puts on
// expenses and suggests them back to that user. Category identity is its
// slug, which is lowercase and hyphenated, so "Street Food" and
// "street food" are the same category.
type CategoryService struct {
	categories repo.CategoryRepo
	log        *slog.Logger
}

// NewCategoryService constructs a CategoryService backed by the provided
// CategoryRepo. log receives failures of rememberAfterWrite; nil means
// slog.Default().
func NewCategoryService(categories repo.CategoryRepo, log *slog.Logger) *CategoryService {
	if log == nil {
		log = slog.Default()
	}
	return &CategoryService{categories: categories, log: log}
}

// Remember stores name for ownerID's later suggestions. Blank names are ignored.
func (s *CategoryService) Remember(ctx context.Context, ownerID, name string) error {
	name = strings.TrimSpace(name)
	slug := Slugify(name)
	if slug == "" {
		return nil
	}
	if _, err := s.categories.Upsert(ctx, ownerID, name, slug); err != nil {
		return fmt.Errorf("service.CategoryService.Remember: %w", err)
	}
	return nil
}

// rememberAfterWrite is Remember for callers whose expense write has already
// been committed. A failure only costs a suggestion, so it is logged and
// not returned.
func (s *CategoryService) rememberAfterWrite(ctx context.Context, ownerID, name string) {
	if err := s.Remember(ctx, ownerID, name); err != nil {
		s.log.WarnContext(ctx, "remember category", "user_id", ownerID, "category", name, "error", err)
	}
}

// Suggest returns category names matching prefix for ownerID: the defaults
// first, then that user's remembered categories not already listed.
func (s *CategoryService) Suggest(ctx context.Context, ownerID, prefix string) ([]domain.Category, error) {
	slugPrefix := Slugify(prefix)
	stored, err := s.categories.List(ctx, ownerID, slugPrefix)
	if err != nil {
		return nil, fmt.Errorf("service.CategoryService.Suggest: %w", err)
	}

	out := []domain.Category{}
	seen := map[string]bool{}
	for _, name := range DefaultCategories {
		c := domain.Category{Name: name, Slug: Slugify(name)}
		if strings.HasPrefix(c.Slug, slugPrefix) {
			out = append(out, c)
			seen[c.Slug] = true
		}
	}
	for _, c := range stored {
		if !seen[c.Slug] {
			out = append(out, c)
			seen[c.Slug] = true
		}
	}
	return out, nil
}

// Slugify lowercases name and joins its runs of letters and digits with
// single hyphens. Letters outside ASCII are kept.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
