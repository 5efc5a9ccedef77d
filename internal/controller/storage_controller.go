package controller

import (
	"strings"

	"ai-notes-be/internal/pkg/serverutils"
	"ai-notes-be/pkg/storage"

	"github.com/gofiber/fiber/v2"
)

type IStorageController interface {
	RegisterRoutes(r fiber.Router)
	SignedURL(ctx *fiber.Ctx) error
}

type storageController struct {
	resolver *storage.Resolver
}

func NewStorageController(resolver *storage.Resolver) IStorageController {
	return &storageController{resolver: resolver}
}

func (c *storageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/storage/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("signed-url", c.SignedURL)
}

// SignedURL exchanges a storage path for a time-limited GET url. Only paths
// under the caller's own prefix are resolvable.
func (c *storageController) SignedURL(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	path := ctx.Query("path")
	if path == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing path")
	}

	if !storage.IsExternal(path) && !strings.HasPrefix(path, userId.String()+"/") {
		return fiber.NewError(fiber.StatusForbidden, "path not owned by caller")
	}

	url := c.resolver.Resolve(ctx.Context(), path)
	if url == "" {
		return fiber.NewError(fiber.StatusBadGateway, "could not sign url")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success sign url", fiber.Map{
		"url": url,
	}))
}
