package server

import (
	"strings"

	"warden/internal/models"
	"warden/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ScreenTextRequest is the body of POST /api/screen/text.
type ScreenTextRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode,omitempty"`
}

// SubmitContentRequest is the JSON body of POST /api/contents. Images are
// base64 encoded.
type SubmitContentRequest struct {
	TargetType string   `json:"target_type"`
	TargetID   uint     `json:"target_id"`
	Body       string   `json:"body"`
	Images     [][]byte `json:"images,omitempty"`
	Edit       bool     `json:"edit,omitempty"`
}

// ScreenText handles POST /api/screen/text
// @Summary Screen text
// @Description Run text through the banned-term, classifier, link and duplicate stages without storing it.
// @Tags screening
// @Accept json
// @Produce json
// @Param request body ScreenTextRequest true "Text to screen"
// @Success 200 {object} models.ModerationVerdict
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /screen/text [post]
func (s *Server) ScreenText(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}

	var req ScreenTextRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	mode, err := service.ParseScreenMode(req.Mode)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	verdict, err := s.services.Screening.ScreenText(c.UserContext(), service.ScreenTextInput{
		AuthorID: userID,
		Text:     req.Text,
		Mode:     mode,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(verdict)
}

// ScreenImage handles POST /api/screen/image
// @Summary Screen an image
// @Description Rate one uploaded image with the safe-search classifier.
// @Tags screening
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image to screen"
// @Success 200 {object} models.ModerationVerdict
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /screen/image [post]
func (s *Server) ScreenImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
	}
	content, err := s.readUpload(file)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	verdict, err := s.services.Screening.ScreenImage(c.UserContext(), content)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(verdict)
}

// SubmitContent handles POST /api/contents
// @Summary Submit content
// @Description Check the author's sanctions, screen the text and images, and store the content when it passes. Accepts JSON or multipart (fields target_type, target_id, body, edit; files images).
// @Tags screening
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body SubmitContentRequest true "Content"
// @Success 200 {object} service.SubmitResult "edit accepted"
// @Success 201 {object} service.SubmitResult "created"
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} service.SubmitResult "blocked by screening"
// @Security BearerAuth
// @Router /contents [post]
func (s *Server) SubmitContent(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}

	req, err := s.parseSubmission(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	targetType, err := models.ParseTargetType(req.TargetType)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	result, err := s.services.Submissions.Submit(c.UserContext(), service.SubmitInput{
		AuthorID: userID,
		Target:   models.ContentTarget{Type: targetType, ID: req.TargetID},
		Body:     req.Body,
		Images:   req.Images,
		Edit:     req.Edit,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	switch {
	case result.Verdict.Blocked:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	case req.Edit:
		return c.JSON(result)
	default:
		return c.Status(fiber.StatusCreated).JSON(result)
	}
}

func (s *Server) parseSubmission(c *fiber.Ctx) (*SubmitContentRequest, error) {
	var req SubmitContentRequest
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		if err := c.BodyParser(&req); err != nil {
			return nil, models.NewValidationError("Invalid request body")
		}
		for _, img := range req.Images {
			if int64(len(img)) > s.maxUploadBytes() {
				return nil, models.NewValidationError("image exceeds the upload size limit")
			}
		}
		return &req, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, models.NewValidationError("Invalid multipart form")
	}
	req.TargetType = c.FormValue("target_type")
	if raw := c.FormValue("target_id"); raw != "" {
		id, convErr := parseUintField(raw)
		if convErr != nil {
			return nil, models.NewValidationError("Invalid target_id")
		}
		req.TargetID = id
	}
	req.Body = c.FormValue("body")
	req.Edit = c.FormValue("edit") == "true"

	files := form.File["images"]
	if len(files) > maxImagesPerRequest {
		return nil, models.NewValidationError("too many images (max 10)")
	}
	for _, file := range files {
		content, err := s.readUpload(file)
		if err != nil {
			return nil, err
		}
		req.Images = append(req.Images, content)
	}
	return &req, nil
}
