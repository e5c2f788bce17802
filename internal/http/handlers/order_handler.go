package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "velours/internal/log"
	"velours/internal/services"
	"velours/internal/validate"
)

type OrderHandler struct {
	Order   *services.OrderService
	Clients *services.ClientService
}

type checkoutItem struct {
	ProductID string  `json:"product_id"`
	Size      string  `json:"size"`
	Price     float64 `json:"price"`
}

type checkoutRequest struct {
	Items []checkoutItem `json:"items"`
	Client *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"client"`
	DeliveryAddress string  `json:"delivery_address"`
	Notes           string  `json:"notes"`
	Discount        float64 `json:"discount"`
}

// POST /api/v1/orders
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	in := services.OrderInput{
		Delivery: req.DeliveryAddress,
		Notes:    req.Notes,
		Discount: req.Discount,
	}
	for _, it := range req.Items {
		pid, ok := validate.ID(it.ProductID)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "product_id"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
		}
		size, ok := validate.Size(it.Size)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "size"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid size"})
		}
		in.Items = append(in.Items, services.OrderItemInput{ProductID: pid, Size: size, Price: it.Price})
	}
	if req.Client != nil {
		email, ok := validate.Email(req.Client.Email)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "email"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid email"})
		}
		name, ok := validate.Name(req.Client.Name)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "name"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid name"})
		}
		phone, ok := validate.Phone(req.Client.Phone)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "phone"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid phone"})
		}
		in.Client = &services.ClientInput{Name: name, Email: email, Phone: phone}
	}

	o, err := h.Order.Create(in)
	if err != nil {
		if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrNotFound) {
			applog.Security(c, "order.place.fail", map[string]any{"error": err.Error()})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not place order"})
		}
		applog.Error(c, "order.place.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not place order"})
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"total":        o.Total,
	})
	return c.Status(fiber.StatusCreated).JSON(o)
}

// GET /api/v1/orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	d, err := h.Order.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		applog.Error(c, "order.view.fail", err, map[string]any{"order_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load order"})
	}
	return c.JSON(fiber.Map{"order": d.Order, "items": d.Items, "history": d.History})
}
