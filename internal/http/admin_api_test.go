package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"velours/internal/config"
	"velours/internal/http/handlers"
	"velours/internal/repos"
	"velours/internal/services"
)

func newAdminApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}
	deps := handlers.NewDeps(db, config.Config{}, authSvc)

	app := fiber.New()
	app.Post("/login", authH.Login)
	api := app.Group("/api/v1")
	api.Post("/orders", deps.OrderHandler.Place)

	admin := app.Group("/admin", handlers.RequireStaff(authSvc))
	admin.Get("/orders", deps.AdminHandler.Orders)
	admin.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Get("/clients", handlers.RequireAdmin(authSvc), deps.AdminHandler.ClientsPage)
	return app
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	body := `{"email":"` + email + `","password":"` + password + `"}`
	req := httptest.NewRequest("POST", "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login: want 200, got %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c.Value
		}
	}
	t.Fatal("no sid cookie set on login")
	return ""
}

func placeTestOrder(t *testing.T, app *fiber.App) string {
	t.Helper()
	body := `{"items": [{"product_id": "prd-he-scarf", "size": "One Size", "price": 450}],
	          "client": {"name": "A", "email": "a@x.com"}}`
	req := httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("place order: want 201, got %d", resp.StatusCode)
	}
	var o struct {
		ID string `json:"ID"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
		t.Fatal(err)
	}
	return o.ID
}

func TestAdminRequiresSession(t *testing.T) {
	app := newAdminApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/orders", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("want 401 without session, got %d", resp.StatusCode)
	}

	// a made-up sid is denied too
	req := httptest.NewRequest("GET", "/admin/orders", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("want 401 for forged sid, got %d", resp.StatusCode)
	}
}

func TestStaffCanTransitionOrders(t *testing.T) {
	app := newAdminApp(t)
	sid := login(t, app, "concierge@velours.test", "Passw0rd!")
	oid := placeTestOrder(t, app)

	req := httptest.NewRequest("POST", "/admin/orders/"+oid+"/status", strings.NewReader(`{"status":"confirmed"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}

	// skipping ahead is rejected with a conflict
	req = httptest.NewRequest("POST", "/admin/orders/"+oid+"/status", strings.NewReader(`{"status":"delivered"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("want 409 for invalid transition, got %d", resp.StatusCode)
	}
}

func TestClientBookIsAdminOnly(t *testing.T) {
	app := newAdminApp(t)

	staffSID := login(t, app, "concierge@velours.test", "Passw0rd!")
	req := httptest.NewRequest("GET", "/admin/clients", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: staffSID})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("staff on client book: want 403, got %d", resp.StatusCode)
	}

	adminSID := login(t, app, "admin@velours.test", "Passw0rd!")
	req = httptest.NewRequest("GET", "/admin/clients", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: adminSID})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("admin on client book: want 200, got %d", resp.StatusCode)
	}
}
