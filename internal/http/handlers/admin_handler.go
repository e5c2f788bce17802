package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"velours/internal/domain"
	applog "velours/internal/log"
	"velours/internal/services"
	"velours/internal/validate"
)

type AdminHandler struct {
	Order   *services.OrderService
	Clients *services.ClientService
}

// GET /admin/orders
func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	ords, err := h.Order.Orders.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load orders"})
	}
	return c.JSON(fiber.Map{"orders": ords})
}

// GET /admin/orders/:id
func (h *AdminHandler) OrderDetail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	d, err := h.Order.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		applog.Error(c, "admin.orders.detail.fail", err, map[string]any{"order_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load order"})
	}
	return c.JSON(fiber.Map{"order": d.Order, "items": d.Items, "history": d.History})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	actor := "Admin"
	if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
		actor = u.Name
	}
	if a, ok := validate.Actor(actor); ok && a != "" {
		actor = a
	}

	o, err := h.Order.UpdateStatus(id, domain.Status(req.Status), actor, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrValidation):
			applog.Security(c, "admin.orders.update.reject", map[string]any{"order_id": id, "status": req.Status})
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update status"})
		}
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": req.Status, "actor": actor})
	return c.JSON(o)
}

// GET /admin/clients
func (h *AdminHandler) ClientsPage(c *fiber.Ctx) error {
	clients, err := h.Clients.List(100)
	if err != nil {
		applog.Error(c, "admin.clients.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load clients"})
	}
	return c.JSON(fiber.Map{"clients": clients})
}

// GET /admin/clients/:id
func (h *AdminHandler) ClientDetail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid client id"})
	}
	client, err := h.Clients.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "client not found"})
		}
		applog.Error(c, "admin.clients.detail.fail", err, map[string]any{"client_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load client"})
	}
	orders, err := h.Order.Orders.ListByClient(id)
	if err != nil {
		applog.Error(c, "admin.clients.orders.fail", err, map[string]any{"client_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load client orders"})
	}
	wishlist, _ := h.Clients.ListWishlist(id)
	return c.JSON(fiber.Map{"client": client, "orders": orders, "wishlist": wishlist})
}

// GET /admin/waitlist/:productID
func (h *AdminHandler) Waitlist(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("productID"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	rows, err := h.Clients.ListWaitlist(pid)
	if err != nil {
		applog.Error(c, "admin.waitlist.fail", err, map[string]any{"product": pid})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load waitlist"})
	}
	return c.JSON(fiber.Map{"waitlist": rows})
}
