package server

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"warden/internal/middleware"
	"warden/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten means a helper already sent the error response. The
// handler returns nil so the fiber ErrorHandler leaves it alone.
var errResponseWritten = errors.New("response already written")

const (
	maxPageSize         = 100
	maxImagesPerRequest = 10
	defaultUploadMB     = 10
)

type page struct {
	Limit  int
	Offset int
}

// parsePagination clamps ?limit to (0, maxPageSize] and ?offset to >= 0.
func parsePagination(c *fiber.Ctx, defaultLimit int) page {
	p := page{
		Limit:  c.QueryInt("limit", defaultLimit),
		Offset: max(c.QueryInt("offset", 0), 0),
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	p.Limit = min(p.Limit, maxPageSize)
	return p
}

// respondBadRequest writes a 400 and returns errResponseWritten.
func respondBadRequest(c *fiber.Ctx, err error) error {
	_ = models.RespondWithError(c, fiber.StatusBadRequest, err)
	return errResponseWritten
}

// parseID reads a positive integer route parameter.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, respondBadRequest(c, models.NewValidationError("Invalid ID"))
	}
	return uint(id), nil
}

// parseTarget reads the :type/:id route pair.
func (s *Server) parseTarget(c *fiber.Ctx) (models.ContentTarget, error) {
	targetType, err := models.ParseTargetType(c.Params("type"))
	if err != nil {
		return models.ContentTarget{}, respondBadRequest(c, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return models.ContentTarget{}, err
	}
	return models.ContentTarget{Type: targetType, ID: id}, nil
}

func parseUintField(raw string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

// currentUser returns the authenticated caller, writing a 401 when the route
// was mounted without AuthRequired.
func currentUser(c *fiber.Ctx) (uint, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
		return 0, errResponseWritten
	}
	return userID, nil
}

func mapServiceError(err error) int {
	return models.StatusFor(err)
}

func (s *Server) maxUploadBytes() int64 {
	mb := s.config.ImageMaxUploadSizeMB
	if mb <= 0 {
		mb = defaultUploadMB
	}
	return int64(mb) << 20
}

var errUploadTooLarge = models.NewValidationError("image exceeds the upload size limit")

// readUpload reads one multipart image. The declared size is checked first
// and the read is capped, so a lying header cannot push past the limit.
func (s *Server) readUpload(file *multipart.FileHeader) ([]byte, error) {
	limit := s.maxUploadBytes()
	if file.Size > limit {
		return nil, errUploadTooLarge
	}
	src, err := file.Open()
	if err != nil {
		return nil, models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(io.LimitReader(src, limit+1))
	switch {
	case err != nil:
		return nil, models.NewValidationError("Unable to read uploaded file")
	case int64(len(content)) > limit:
		return nil, errUploadTooLarge
	}
	return content, nil
}
