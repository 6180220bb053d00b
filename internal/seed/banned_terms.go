package seed

import (
	"context"
	"strings"

	"warden/internal/repository"

	"gorm.io/gorm"
)

// BannedTerms copies terms into the managed list. Terms already present are
// skipped, so the call is safe to repeat. It returns how many were added.
func BannedTerms(ctx context.Context, db *gorm.DB, terms []string, createdBy uint) (int, error) {
	repo := repository.NewBannedTermRepository(db)
	added := 0
	for _, term := range terms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		ok, err := repo.Add(ctx, term, createdBy)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}
