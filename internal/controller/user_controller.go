package controller

import (
	"fmt"

	"ai-notes-be/internal/dto"
	"ai-notes-be/internal/pkg/serverutils"
	"ai-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetProfile(ctx *fiber.Ctx) error
	UpdateProfile(ctx *fiber.Ctx) error
	UploadAvatar(ctx *fiber.Ctx) error
	ExportNotes(ctx *fiber.Ctx) error
	DeleteAccount(ctx *fiber.Ctx) error
}

type userController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) IUserController {
	return &userController{
		userService: userService,
	}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("profile", c.GetProfile)
	h.Put("profile", c.UpdateProfile)
	h.Put("avatar", c.UploadAvatar)
	h.Get("export", c.ExportNotes)
	h.Delete("account", c.DeleteAccount)
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.userService.GetProfile(ctx.Context(), userId)
	if err != nil {
		return mapNotFound(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *userController) UpdateProfile(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.userService.UpdateProfile(ctx.Context(), userId, &req)
	if err != nil {
		return mapNotFound(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update profile", res))
}

func (c *userController) UploadAvatar(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := c.userService.UploadAvatar(
		ctx.Context(),
		userId,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		return mapNotFound(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload avatar", res))
}

// ExportNotes streams the full dataset as a JSON download rather than the
// usual envelope; the payload IS the deliverable here.
func (c *userController) ExportNotes(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, filename, err := c.userService.ExportNotes(ctx.Context(), userId)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return ctx.JSON(res)
}

func (c *userController) DeleteAccount(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	if err := c.userService.DeleteAccount(ctx.Context(), userId); err != nil {
		return mapNotFound(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete account", dto.DeleteAccountResponse{Deleted: true}))
}
