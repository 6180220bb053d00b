package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"warden/internal/cache"
	"warden/internal/models"
	"warden/internal/moderation"
	"warden/internal/observability"
	"warden/internal/repository"

	"gopkg.in/yaml.v3"
)

// BannedTermsFile is the on-disk shape of a banned-term list.
type BannedTermsFile struct {
	Terms []string `yaml:"terms"`
}

// LoadBannedTermsFile reads a YAML term list. An empty path yields no terms.
func LoadBannedTermsFile(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read banned terms file: %w", err)
	}
	var file BannedTermsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse banned terms file %s: %w", path, err)
	}
	out := make([]string, 0, len(file.Terms))
	for _, t := range file.Terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// BannedTermService combines the static term list shipped with the deployment
// and the list administrators manage at runtime.
type BannedTermService struct {
	repo   repository.BannedTermRepository
	static []string
	events Dispatcher
	audit  *observability.AuditLogger
}

// NewBannedTermService creates a BannedTermService. staticTerms are always applied.
func NewBannedTermService(repo repository.BannedTermRepository, staticTerms []string, events Dispatcher) *BannedTermService {
	return &BannedTermService{
		repo:   repo,
		static: staticTerms,
		events: dispatcherOrNop(events),
		audit:  observability.NewAuditLogger(),
	}
}

// Managed returns the administrator-managed terms.
func (s *BannedTermService) Managed(ctx context.Context) ([]models.BannedTerm, error) {
	if s.repo == nil {
		return nil, nil
	}
	var terms []models.BannedTerm
	err := cache.Aside(ctx, cache.BannedTermsKey, &terms,
		func() time.Duration { return cache.BannedTermsTTL },
		func() error {
			var err error
			terms, err = s.repo.List(ctx)
			return err
		})
	return terms, err
}

// Terms returns the static and managed terms together.
func (s *BannedTermService) Terms(ctx context.Context) ([]string, error) {
	managed, err := s.Managed(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(s.static)+len(managed))
	out = append(out, s.static...)
	for _, t := range managed {
		out = append(out, t.Term)
	}
	return out, nil
}

// Matcher compiles the current term list.
func (s *BannedTermService) Matcher(ctx context.Context) (*moderation.TextMatcher, error) {
	terms, err := s.Terms(ctx)
	if err != nil {
		return nil, err
	}
	return moderation.NewTextMatcher(terms), nil
}

// Add inserts a managed term. Adding an existing term is a no-op.
func (s *BannedTermService) Add(ctx context.Context, term string, adminID uint) (bool, error) {
	created, err := s.repo.Add(ctx, term, adminID)
	if err != nil {
		return false, err
	}
	if created {
		s.changed(ctx, "add", adminID)
	}
	return created, nil
}

// Remove deletes a managed term. Static terms cannot be removed at runtime.
func (s *BannedTermService) Remove(ctx context.Context, term string, adminID uint) (bool, error) {
	if strings.TrimSpace(term) == "" {
		return false, models.NewValidationError("term is required")
	}
	removed, err := s.repo.Remove(ctx, term)
	if err != nil {
		return false, err
	}
	if removed {
		s.changed(ctx, "remove", adminID)
	}
	return removed, nil
}

func (s *BannedTermService) changed(ctx context.Context, op string, adminID uint) {
	cache.Invalidate(ctx, cache.BannedTermsKey)
	// Terms are not echoed into logs or events.
	s.audit.Record(ctx, "banned_term_"+op, adminID, nil)
	publishAdmin(ctx, s.events, models.EventBannedTermsChanged, map[string]any{"op": op, "admin_id": adminID})
}
