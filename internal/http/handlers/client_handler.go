package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "velours/internal/log"
	"velours/internal/services"
	"velours/internal/validate"
)

type ClientHandler struct {
	Clients *services.ClientService
}

// POST /api/v1/clients
func (h *ClientHandler) GetOrCreate(c *fiber.Ctx) error {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "email"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid email"})
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid name"})
	}
	phone, ok := validate.Phone(req.Phone)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid phone"})
	}

	client, err := h.Clients.GetOrCreate(services.ClientInput{Name: name, Email: email, Phone: phone})
	if err != nil {
		applog.Error(c, "client.ensure.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not resolve client"})
	}
	return c.JSON(client)
}

type membershipRequest struct {
	ClientID  string `json:"client_id"`
	ProductID string `json:"product_id"`
}

func parseMembership(c *fiber.Ctx) (membershipRequest, bool) {
	var req membershipRequest
	if err := c.BodyParser(&req); err != nil {
		return req, false
	}
	var ok bool
	if req.ClientID, ok = validate.ID(req.ClientID); !ok {
		return req, false
	}
	if req.ProductID, ok = validate.ID(req.ProductID); !ok {
		return req, false
	}
	return req, true
}

// POST /api/v1/wishlist
func (h *ClientHandler) SaveToWishlist(c *fiber.Ctx) error {
	req, ok := parseMembership(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid client or product id"})
	}
	if err := h.Clients.AddToWishlist(req.ClientID, req.ProductID); err != nil {
		applog.Error(c, "wishlist.save.fail", err, map[string]any{"product": req.ProductID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not save item"})
	}
	applog.Audit(c, "wishlist.save", map[string]any{"client": req.ClientID, "product": req.ProductID})
	return c.SendStatus(fiber.StatusNoContent)
}

// DELETE /api/v1/wishlist
func (h *ClientHandler) RemoveFromWishlist(c *fiber.Ctx) error {
	req, ok := parseMembership(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid client or product id"})
	}
	if err := h.Clients.RemoveFromWishlist(req.ClientID, req.ProductID); err != nil {
		applog.Error(c, "wishlist.remove.fail", err, map[string]any{"product": req.ProductID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not remove item"})
	}
	applog.Audit(c, "wishlist.remove", map[string]any{"client": req.ClientID, "product": req.ProductID})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/wishlist/:clientID
func (h *ClientHandler) ListWishlist(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("clientID"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid client id"})
	}
	rows, err := h.Clients.ListWishlist(id)
	if err != nil {
		applog.Error(c, "wishlist.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load wishlist"})
	}
	return c.JSON(fiber.Map{"items": rows})
}

// POST /api/v1/waitlist
func (h *ClientHandler) JoinWaitlist(c *fiber.Ctx) error {
	req, ok := parseMembership(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid client or product id"})
	}
	if err := h.Clients.AddToWaitlist(req.ClientID, req.ProductID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "client not found"})
		}
		applog.Error(c, "waitlist.join.fail", err, map[string]any{"product": req.ProductID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not join waitlist"})
	}
	applog.Audit(c, "waitlist.join", map[string]any{"client": req.ClientID, "product": req.ProductID})
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/v1/views — fire-and-forget view tracking.
func (h *ClientHandler) TrackView(c *fiber.Ctx) error {
	var req membershipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	pid, ok := validate.ID(req.ProductID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	// anonymous views (no client id) are accepted and dropped
	if err := h.Clients.TrackView(req.ClientID, pid); err != nil {
		applog.Error(c, "view.track.fail", err, map[string]any{"product": pid})
	}
	return c.SendStatus(fiber.StatusAccepted)
}
