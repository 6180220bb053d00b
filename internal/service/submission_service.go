package service

import (
	"context"
	"unicode/utf8"

	"warden/internal/models"
	"warden/internal/observability"
	"warden/internal/repository"
)

const (
	maxBodyLen         = 20000
	maxImagesPerSubmit = 10
)

// SubmitInput is a piece of content offered for publication.
type SubmitInput struct {
	AuthorID uint
	Target   models.ContentTarget
	Body     string
	Images   [][]byte
	Edit     bool
}

// SubmitResult carries the verdict and, when accepted, the stored content.
type SubmitResult struct {
	Verdict models.ModerationVerdict `json:"verdict"`
	Content *models.Content          `json:"content,omitempty"`
}

// SubmissionService is the content-creation entry point: sanction gate,
// screening, then storage.
type SubmissionService struct {
	contentRepo repository.ContentRepository
	screening   *ScreeningService
	sanctions   StatusChecker
	audit       *observability.AuditLogger
}

// NewSubmissionService creates a SubmissionService.
func NewSubmissionService(contentRepo repository.ContentRepository, screening *ScreeningService, sanctions StatusChecker) *SubmissionService {
	return &SubmissionService{
		contentRepo: contentRepo,
		screening:   screening,
		sanctions:   sanctions,
		audit:       observability.NewAuditLogger(),
	}
}

// Submit screens and stores content. A blocked verdict is returned as a value
// with a nil error and nothing is stored.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("author is required")
	}
	if err := in.Target.Validate(); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(in.Body) > maxBodyLen {
		return nil, models.NewValidationError("body too long (max 20000 characters)")
	}
	if len(in.Images) > maxImagesPerSubmit {
		return nil, models.NewValidationError("too many images (max 10)")
	}

	if err := s.sanctions.EnsureActive(ctx, in.AuthorID); err != nil {
		return nil, err
	}

	mode := ModeCreate
	if in.Edit {
		mode = ModeEdit
		existing, err := s.contentRepo.Get(ctx, in.Target)
		if err != nil {
			return nil, err
		}
		if existing.AuthorID != in.AuthorID {
			return nil, models.NewUnauthorizedError("only the author can edit this content")
		}
	} else {
		exists, err := s.contentRepo.Exists(ctx, in.Target)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, models.NewValidationError("content already exists for " + in.Target.String())
		}
	}

	verdict, err := s.screening.ScreenSubmission(ctx, ScreenSubmissionInput{
		ScreenTextInput: ScreenTextInput{AuthorID: in.AuthorID, Text: in.Body, Mode: mode},
		Images:          in.Images,
	})
	if err != nil {
		return nil, err
	}
	if verdict.Blocked {
		s.audit.Record(ctx, "submission_blocked", in.AuthorID, map[string]any{
			"target": in.Target.String(),
			"stage":  verdict.Stage,
		})
		return &SubmitResult{Verdict: verdict}, nil
	}

	if in.Edit {
		if err := s.contentRepo.UpdateBody(ctx, in.Target, in.Body, len(in.Images)); err != nil {
			return nil, err
		}
	} else {
		if err := s.contentRepo.Create(ctx, &models.Content{
			TargetType: in.Target.Type,
			TargetID:   in.Target.ID,
			AuthorID:   in.AuthorID,
			Body:       in.Body,
			ImageCount: len(in.Images),
		}); err != nil {
			return nil, err
		}
	}

	content, err := s.contentRepo.Get(ctx, in.Target)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Verdict: verdict, Content: content}, nil
}
