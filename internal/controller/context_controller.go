package controller

import (
	"orquix-backend/internal/dto"
	"orquix-backend/internal/pkg/serverutils"
	"orquix-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IContextController interface {
	RegisterRoutes(r fiber.Router)
	Message(ctx *fiber.Ctx) error
	Finalize(ctx *fiber.Ctx) error
	ActiveSession(ctx *fiber.Ctx) error
}

type contextController struct {
	contextService service.IContextService
}

func NewContextController(contextService service.IContextService) IContextController {
	return &contextController{
		contextService: contextService,
	}
}

func (c *contextController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/context/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post(":projectId/message", c.Message)
	h.Post(":projectId/finalize", c.Finalize)
	h.Get(":projectId/session", c.ActiveSession)
}

func (c *contextController) Message(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	projectId, err := uuid.Parse(ctx.Params("projectId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid project id")
	}

	var req dto.ContextMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contextService.HandleMessage(ctx.Context(), userId, projectId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process context message", res))
}

func (c *contextController) Finalize(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	projectId, err := uuid.Parse(ctx.Params("projectId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid project id")
	}

	var req dto.FinalizeContextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contextService.Finalize(ctx.Context(), userId, projectId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success finalize context session", res))
}

func (c *contextController) ActiveSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	projectId, err := uuid.Parse(ctx.Params("projectId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid project id")
	}

	res, err := c.contextService.GetActiveSession(ctx.Context(), userId, projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get active context session", res))
}
