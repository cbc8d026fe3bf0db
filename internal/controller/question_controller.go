package controller

import (
	"userlens-be/internal/dto"
	"userlens-be/internal/pkg/serverutils"
	"userlens-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IQuestionController interface {
	RegisterRoutes(r fiber.Router)
	SetQuestions(ctx *fiber.Ctx) error
	ListByProject(ctx *fiber.Ctx) error
	GenerateAnswers(ctx *fiber.Ctx) error
}

type questionController struct {
	questionService service.IQuestionService
}

func NewQuestionController(questionService service.IQuestionService) IQuestionController {
	return &questionController{questionService: questionService}
}

func (c *questionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/question/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Put("project/:projectId", c.SetQuestions)
	h.Get("project/:projectId", c.ListByProject)
	h.Post("generate-answers", c.GenerateAnswers)
}

func (c *questionController) SetQuestions(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	projectId, _ := uuid.Parse(ctx.Params("projectId"))

	var req dto.SetQuestionsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ProjectId = projectId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.questionService.SetQuestions(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set questions", res))
}

func (c *questionController) ListByProject(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	projectId, _ := uuid.Parse(ctx.Params("projectId"))

	res, err := c.questionService.ListByProject(ctx.Context(), userId, projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list questions", res))
}

func (c *questionController) GenerateAnswers(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.GenerateAnswersRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.questionService.GenerateAnswers(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate answers", res))
}
