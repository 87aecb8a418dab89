package api

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"mrp/store"
)

// New builds the HTTP application. Every handler borrows its own session
// from st for the duration of the request.
func New(st *store.Store) *fiber.App {
	ws := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	ws.Use(
		recover.New(),
		logger.New(logger.Config{Output: logrus.StandardLogger().WriterLevel(logrus.InfoLevel)}),
		cors.New(),
	)

	ws.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"message": "Welcome!"})
	})

	ph := &plantHandler{store: st}

	plants := ws.Group("/plants")
	plants.Get("/", ph.list)
	plants.Post("/", ph.create)
	plants.Get("/:id", ph.get)
	plants.Put("/:id", ph.update)
	plants.Delete("/:id", ph.delete)

	return ws
}

// errorHandler renders every failure as {"detail": ...}. Errors that are not
// *fiber.Error are unexpected and hidden behind a 500.
func errorHandler(ctx *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ctx.Status(fe.Code).JSON(fiber.Map{"detail": fe.Message})
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": ctx.Method(),
		"path":   ctx.Path(),
	}).Error("request failed")

	return ctx.Status(http.StatusInternalServerError).
		JSON(fiber.Map{"detail": http.StatusText(http.StatusInternalServerError)})
}
