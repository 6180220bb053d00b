package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"warden/internal/classifier"
	"warden/internal/featureflags"
	"warden/internal/models"
	"warden/internal/moderation"
	"warden/internal/observability"

	"golang.org/x/sync/errgroup"
)

// Block reasons returned to submitters.
const (
	ReasonBannedTerm      = "inappropriate content detected"
	ReasonClassifierBlock = "content violates community guidelines"
	ReasonDuplicate       = "duplicate content detected"
	ReasonUnsafeImage     = "inappropriate image detected"
)

// ScreenMode distinguishes new submissions from edits of existing content.
type ScreenMode string

const (
	ModeCreate ScreenMode = "create"
	ModeEdit   ScreenMode = "edit"
)

// ParseScreenMode accepts "create" (default) or "edit".
func ParseScreenMode(raw string) (ScreenMode, error) {
	switch ScreenMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeCreate:
		return ModeCreate, nil
	case ModeEdit:
		return ModeEdit, nil
	default:
		return "", models.NewValidationError("mode must be create or edit")
	}
}

// TermSource supplies the compiled banned-term matcher.
type TermSource interface {
	Matcher(ctx context.Context) (*moderation.TextMatcher, error)
}

// ScreenTextInput is one text screening request. A nil RecentOwnContent makes
// the service fetch the author's recent bodies from the content store.
type ScreenTextInput struct {
	AuthorID         uint
	Text             string
	Mode             ScreenMode
	RecentOwnContent []string
}

// ScreenSubmissionInput is a text body plus any attached images.
type ScreenSubmissionInput struct {
	ScreenTextInput
	Images [][]byte
}

// ScreeningDeps wires the ScreeningService.
type ScreeningDeps struct {
	Terms   TermSource
	Text    classifier.TextClassifier
	Images  classifier.ImageClassifier
	Links   *moderation.LinkExtractor
	Content ContentStore
	Flags   *featureflags.Manager
	Policy  Policy
	Clock   Clock
}

// ScreeningService runs submissions through the moderation pipeline.
type ScreeningService struct {
	terms   TermSource
	text    classifier.TextClassifier
	images  classifier.ImageClassifier
	links   *moderation.LinkExtractor
	content ContentStore
	flags   *featureflags.Manager
	policy  Policy
	clock   Clock
}

// NewScreeningService creates a ScreeningService. Missing classifiers are
// treated as always unavailable.
func NewScreeningService(deps ScreeningDeps) *ScreeningService {
	if deps.Links == nil {
		deps.Links = moderation.NewLinkExtractor("")
	}
	return &ScreeningService{
		terms:   deps.Terms,
		text:    deps.Text,
		images:  deps.Images,
		links:   deps.Links,
		content: deps.Content,
		flags:   deps.Flags,
		policy:  deps.Policy.withDefaults(),
		clock:   clockOrSystem(deps.Clock),
	}
}

func (s *ScreeningService) stageOn(flag string, userID uint) bool {
	return s.flags.EnabledOr(flag, userID, true)
}

// ScreenText runs the text stages in order and stops at the first block.
func (s *ScreeningService) ScreenText(ctx context.Context, in ScreenTextInput) (models.ModerationVerdict, error) {
	span, ctx := observability.StartServiceSpan(ctx, "screening", "ScreenText")
	defer span.End()

	verdict, err := s.screenText(ctx, in)
	if err != nil {
		span.SetError(err)
		return models.ModerationVerdict{}, err
	}
	recordVerdict(span, verdict)
	return verdict, nil
}

func (s *ScreeningService) screenText(ctx context.Context, in ScreenTextInput) (models.ModerationVerdict, error) {
	if strings.TrimSpace(in.Text) == "" {
		return models.Pass(), nil
	}

	if s.terms != nil && s.stageOn(featureflags.ScreenBannedTerms, in.AuthorID) {
		matcher, err := s.terms.Matcher(ctx)
		if err != nil {
			return models.ModerationVerdict{}, err
		}
		if _, hit := matcher.Match(in.Text); hit {
			return models.Block(models.StageBannedTerm, ReasonBannedTerm), nil
		}
	}

	if s.stageOn(featureflags.ScreenClassifier, in.AuthorID) {
		if category, blocked := s.classifyText(ctx, in.Text); blocked {
			v := models.Block(models.StageClassifier, ReasonClassifierBlock)
			v.Category = category
			return v, nil
		}
	}

	if s.stageOn(featureflags.ScreenLinks, in.AuthorID) {
		if bad := s.links.Disallowed(in.Text); len(bad) > 0 {
			return models.Block(models.StageLink, s.links.Message()), nil
		}
	}

	if in.Mode != ModeEdit && s.stageOn(featureflags.ScreenDuplicates, in.AuthorID) {
		previous := in.RecentOwnContent
		if previous == nil && s.content != nil && in.AuthorID != 0 {
			since := s.clock().Add(-s.policy.DuplicateWindow)
			var err error
			previous, err = s.content.RecentBodiesByAuthor(ctx, in.AuthorID, since)
			if err != nil {
				return models.ModerationVerdict{}, err
			}
		}
		if score, dup := moderation.IsDuplicate(in.Text, previous, s.policy.DuplicateThreshold); dup {
			v := models.Block(models.StageDuplicate, ReasonDuplicate)
			v.Score = score
			return v, nil
		}
	}

	return models.Pass(), nil
}

// classifyText asks the semantic classifier. Any failure is a pass.
func (s *ScreeningService) classifyText(ctx context.Context, text string) (string, bool) {
	if s.text == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, s.policy.ClassifierTimeout)
	defer cancel()

	categories, err := s.text.Classify(ctx, text)
	if err != nil {
		logClassifierFailure(ctx, "text", err)
		return "", false
	}
	return classifier.BlockedCategory(categories)
}

// ScreenImage rates one image. Classifier failures pass.
func (s *ScreeningService) ScreenImage(ctx context.Context, image []byte) (models.ModerationVerdict, error) {
	span, ctx := observability.StartServiceSpan(ctx, "screening", "ScreenImage")
	defer span.End()

	verdict := s.screenImage(ctx, 0, image)
	recordVerdict(span, verdict)
	return verdict, nil
}

func (s *ScreeningService) screenImage(ctx context.Context, userID uint, image []byte) models.ModerationVerdict {
	if s.images == nil || len(image) == 0 || !s.stageOn(featureflags.ScreenImages, userID) {
		return models.Pass()
	}
	ctx, cancel := context.WithTimeout(ctx, s.policy.ClassifierTimeout)
	defer cancel()

	rating, err := s.images.Classify(ctx, image)
	if err != nil {
		logClassifierFailure(ctx, "image", err)
		return models.Pass()
	}
	if category, _, unsafe := rating.Unsafe(); unsafe {
		v := models.Block(models.StageImage, ReasonUnsafeImage)
		v.Category = category
		return v
	}
	return models.Pass()
}

// ScreenSubmission screens the text and every image concurrently. The text
// verdict takes precedence, then images in order.
func (s *ScreeningService) ScreenSubmission(ctx context.Context, in ScreenSubmissionInput) (models.ModerationVerdict, error) {
	span, ctx := observability.StartServiceSpan(ctx, "screening", "ScreenSubmission")
	defer span.End()

	var textVerdict models.ModerationVerdict
	imageVerdicts := make([]models.ModerationVerdict, len(in.Images))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.screenText(gctx, in.ScreenTextInput)
		textVerdict = v
		return err
	})
	for i, img := range in.Images {
		g.Go(func() error {
			imageVerdicts[i] = s.screenImage(gctx, in.AuthorID, img)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetError(err)
		return models.ModerationVerdict{}, err
	}

	verdict := textVerdict
	if !verdict.Blocked {
		for _, v := range imageVerdicts {
			if v.Blocked {
				verdict = v
				break
			}
		}
	}
	recordVerdict(span, verdict)
	return verdict, nil
}

func recordVerdict(span *observability.Span, v models.ModerationVerdict) {
	span.SetVerdict(v.Blocked, string(v.Stage))
	if v.Blocked {
		observability.ScreeningVerdicts.WithLabelValues(string(v.Stage), "blocked").Inc()
		return
	}
	observability.ScreeningVerdicts.WithLabelValues("none", "pass").Inc()
}

func logClassifierFailure(ctx context.Context, kind string, err error) {
	level := slog.LevelWarn
	if errors.Is(err, classifier.ErrNotConfigured) {
		level = slog.LevelDebug
	}
	observability.GlobalLogger.Log(ctx, level, "classifier failed, passing content",
		slog.String("classifier", kind),
		slog.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
		slog.String("error", err.Error()),
	)
}
