package controller

import (
	"userlens-be/internal/dto"
	"userlens-be/internal/pkg/serverutils"
	"userlens-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IBotController interface {
	RegisterRoutes(r fiber.Router)
	Invite(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
}

type botController struct {
	botService service.IBotService
}

func NewBotController(botService service.IBotService) IBotController {
	return &botController{botService: botService}
}

func (c *botController) RegisterRoutes(r fiber.Router) {
	// The webhook is unauthenticated: the vendor and the poller both hit it,
	// and the unguessable webhook id is the credential.
	r.Post("/bot/webhook/:webhookId", c.Webhook)

	h := r.Group("/bot/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("invite", c.Invite)
	h.Get("status/:sessionId", c.GetStatus)
}

func (c *botController) Invite(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.InviteBotRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.botService.Invite(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success invite bot", res))
}

func (c *botController) Webhook(ctx *fiber.Ctx) error {
	webhookId := ctx.Params("webhookId")

	// Poller reads POST an empty body; BodyParser would reject that, so the
	// zero-value request stands in for it.
	var req dto.BotWebhookRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return serverutils.BadRequestError("invalid webhook payload")
		}
	}

	res, err := c.botService.HandleWebhook(ctx.Context(), webhookId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *botController) GetStatus(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	res, err := c.botService.GetStatus(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get bot status", res))
}
