package controller

import (
	"strconv"

	"orquix-backend/internal/dto"
	"orquix-backend/internal/pkg/serverutils"
	"orquix-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IOrchestrationController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type orchestrationController struct {
	orchestrationService service.IOrchestrationService
}

func NewOrchestrationController(orchestrationService service.IOrchestrationService) IOrchestrationController {
	return &orchestrationController{
		orchestrationService: orchestrationService,
	}
}

func (c *orchestrationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/orchestration/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("query", c.Query)
	h.Get("events/:projectId", c.History)
}

func (c *orchestrationController) Query(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.OrchestrationQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.orchestrationService.Query(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success execute orchestration query", res))
}

func (c *orchestrationController) History(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	projectId, err := uuid.Parse(ctx.Params("projectId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid project id")
	}

	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))

	res, err := c.orchestrationService.History(ctx.Context(), userId, projectId, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get interaction history", res))
}
