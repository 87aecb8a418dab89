package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"mrp/ent"
	"mrp/store"
)

type plantHandler struct {
	store *store.Store
}

// plantRequest is the body of create and update. Every field is required,
// so an update always replaces the whole record.
type plantRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Capacity *int64  `json:"capacity"`
}

func parsePlant(ctx *fiber.Ctx) (ent.Plant, error) {
	var req plantRequest

	err := json.Unmarshal(ctx.Body(), &req)
	if err != nil {
		return ent.Plant{}, fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}

	var missing []string
	if req.Name == nil {
		missing = append(missing, "name")
	}
	if req.Location == nil {
		missing = append(missing, "location")
	}
	if req.Capacity == nil {
		missing = append(missing, "capacity")
	}
	if len(missing) > 0 {
		return ent.Plant{}, fiber.NewError(http.StatusUnprocessableEntity,
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}

	return ent.Plant{
		Name:     *req.Name,
		Location: *req.Location,
		Capacity: *req.Capacity,
	}, nil
}

func plantID(ctx *fiber.Ctx) (int64, error) {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return 0, fiber.NewError(http.StatusUnprocessableEntity, "plant id must be an integer")
	}

	return int64(id), nil
}

func plantErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Plant not found")
	}

	return err
}

func (h *plantHandler) list(ctx *fiber.Ctx) error {
	var ps []ent.Plant

	err := h.store.Session(ctx.UserContext(), func(s *store.Session) (err error) {
		ps, err = s.Plants(ctx.UserContext())
		return err
	})
	if err != nil {
		return err
	}

	return ctx.JSON(ps)
}

func (h *plantHandler) create(ctx *fiber.Ctx) error {
	p, err := parsePlant(ctx)
	if err != nil {
		return err
	}

	err = h.store.Session(ctx.UserContext(), func(s *store.Session) (err error) {
		p, err = s.CreatePlant(ctx.UserContext(), p)
		return err
	})
	if err != nil {
		return err
	}

	return ctx.JSON(p)
}

func (h *plantHandler) get(ctx *fiber.Ctx) error {
	id, err := plantID(ctx)
	if err != nil {
		return err
	}

	var p ent.Plant

	err = h.store.Session(ctx.UserContext(), func(s *store.Session) (err error) {
		p, err = s.Plant(ctx.UserContext(), id)
		return err
	})
	if err != nil {
		return plantErr(err)
	}

	return ctx.JSON(p)
}

func (h *plantHandler) update(ctx *fiber.Ctx) error {
	id, err := plantID(ctx)
	if err != nil {
		return err
	}

	p, err := parsePlant(ctx)
	if err != nil {
		return err
	}

	p.ID = id

	err = h.store.Session(ctx.UserContext(), func(s *store.Session) (err error) {
		p, err = s.UpdatePlant(ctx.UserContext(), p)
		return err
	})
	if err != nil {
		return plantErr(err)
	}

	return ctx.JSON(p)
}

func (h *plantHandler) delete(ctx *fiber.Ctx) error {
	id, err := plantID(ctx)
	if err != nil {
		return err
	}

	err = h.store.Session(ctx.UserContext(), func(s *store.Session) error {
		return s.DeletePlant(ctx.UserContext(), id)
	})
	if err != nil {
		return plantErr(err)
	}

	return ctx.JSON(fiber.Map{"detail": "Plant deleted"})
}
