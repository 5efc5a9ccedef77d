package controller

import (
	"errors"
	"net/url"
	"strings"

	"ai-notes-be/internal/dto"
	"ai-notes-be/internal/pkg/serverutils"
	"ai-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	AddAttachment(ctx *fiber.Ctx) error
	RemoveAttachment(ctx *fiber.Ctx) error
	SetThumbnail(ctx *fiber.Ctx) error
	RemoveThumbnail(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
}

func NewNoteController(noteService service.INoteService) INoteController {
	return &noteController{
		noteService: noteService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/note/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Get("search", c.Search)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Post(":id/attachments", c.AddAttachment)
	h.Delete(":id/attachments/:attachmentId", c.RemoveAttachment)
	h.Put(":id/thumbnail", c.SetThumbnail)
	h.Delete(":id/thumbnail", c.RemoveThumbnail)
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	quickFilter := ctx.Query("q")
	limit := ctx.QueryInt("limit", 0)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.noteService.List(ctx.Context(), userId, quickFilter, limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list notes", res))
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.Context(), userId, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoteLimitReached) {
			return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponseWithCode(
				fiber.StatusForbidden,
				"FREE_LIMIT_REACHED",
				"Free accounts are limited to 5 notes. Delete a note to create a new one.",
			))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create note", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	res, err := c.noteService.Show(ctx.Context(), userId, id)
	if err != nil {
		return mapNotFound(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Update(ctx.Context(), userId, &req)
	if err != nil {
		return mapNotFound(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	if err := c.noteService.Delete(ctx.Context(), userId, id); err != nil {
		return mapNotFound(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete note", nil))
}

func (c *noteController) Search(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	query := strings.TrimSpace(ctx.Query("query"))
	if query == "" {
		return ctx.JSON(serverutils.SuccessResponse("Success search notes", []*dto.SearchNotesResponse{}))
	}

	res, err := c.noteService.Search(ctx.Context(), userId, query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search notes", res))
}

func (c *noteController) AddAttachment(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := c.noteService.AddAttachment(
		ctx.Context(),
		userId,
		id,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		return mapNotFound(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add attachment", res))
}

func (c *noteController) RemoveAttachment(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	attachmentId, err := decodePathParam(ctx.Params("attachmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid attachment id")
	}

	if err := c.noteService.RemoveAttachment(ctx.Context(), userId, id, attachmentId); err != nil {
		return mapNotFound(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success remove attachment", nil))
}

func (c *noteController) SetThumbnail(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := c.noteService.SetThumbnail(
		ctx.Context(),
		userId,
		id,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		return mapNotFound(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set thumbnail", res))
}

func (c *noteController) RemoveThumbnail(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	if err := c.noteService.RemoveThumbnail(ctx.Context(), userId, id); err != nil {
		return mapNotFound(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success remove thumbnail", nil))
}

// currentUserId reads the user id the JWT middleware stored in request locals.
func currentUserId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

func mapNotFound(err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "not found")
	}
	return err
}

// decodePathParam unescapes an attachment id; keys contain slashes so clients
// send them url-encoded.
func decodePathParam(raw string) (string, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", err
	}
	if decoded == "" {
		return "", errors.New("empty param")
	}
	return decoded, nil
}
