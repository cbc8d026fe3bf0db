package controller

import (
	"time"

	"userlens-be/internal/dto"
	"userlens-be/internal/pkg/serverutils"
	"userlens-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ITranscriptController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	ListByProject(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	MarkProcessed(ctx *fiber.Ctx) error
	DownloadURL(ctx *fiber.Ctx) error
}

type transcriptController struct {
	transcriptService service.ITranscriptService
}

func NewTranscriptController(transcriptService service.ITranscriptService) ITranscriptController {
	return &transcriptController{transcriptService: transcriptService}
}

func (c *transcriptController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/transcript/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("upload", c.Upload)
	h.Get("project/:projectId", c.ListByProject)
	h.Get(":id", c.Show)
	h.Put(":id", c.Rename)
	h.Delete(":id", c.Delete)
	h.Post(":id/mark-processed", c.MarkProcessed)
	h.Get(":id/download-url", c.DownloadURL)
}

func (c *transcriptController) Upload(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	projectId, err := uuid.Parse(ctx.FormValue("project_id"))
	if err != nil {
		return serverutils.BadRequestError("invalid project_id")
	}

	req := dto.UploadTranscriptRequest{
		ProjectId:      projectId,
		TranscriptName: ctx.FormValue("transcript_name"),
	}
	if dateStr := ctx.FormValue("transcript_date"); dateStr != "" {
		date, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			return serverutils.BadRequestError("transcript_date must be RFC3339")
		}
		req.TranscriptDate = date
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return serverutils.BadRequestError("file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := c.transcriptService.Upload(
		ctx.Context(), userId, &req,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file,
	)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload transcript", res))
}

func (c *transcriptController) ListByProject(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	projectId, _ := uuid.Parse(ctx.Params("projectId"))

	res, err := c.transcriptService.ListByProject(ctx.Context(), userId, projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list transcripts", res))
}

func (c *transcriptController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.transcriptService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show transcript", res))
}

func (c *transcriptController) Rename(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.RenameTranscriptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.transcriptService.Rename(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success rename transcript", nil))
}

func (c *transcriptController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.transcriptService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete transcript", nil))
}

func (c *transcriptController) MarkProcessed(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.transcriptService.MarkProcessed(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success mark transcript processed", res))
}

func (c *transcriptController) DownloadURL(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.transcriptService.DownloadURL(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get download url", res))
}
