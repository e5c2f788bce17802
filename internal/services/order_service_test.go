package services_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"velours/internal/domain"
	"velours/internal/repos"
	"velours/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ledger(t *testing.T, db *sqlx.DB) (*services.OrderService, *services.ClientService) {
	t.Helper()
	orderRepo := repos.NewOrderRepo(db)
	prodRepo := repos.NewProductRepo(db)
	clientRepo := repos.NewClientRepo(db)
	wishRepo := repos.NewWishlistRepo(db)
	return services.NewOrderService(db, orderRepo, prodRepo, clientRepo),
		services.NewClientService(db, clientRepo, wishRepo)
}

func placeOrder(t *testing.T, svc *services.OrderService) domain.Order {
	t.Helper()
	o, err := svc.Create(services.OrderInput{
		Items:  []services.OrderItemInput{{ProductID: "prd-ch-hoodie", Size: "M", Price: 1250}},
		Client: &services.ClientInput{Name: "A", Email: "a@x.com"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func productStatus(t *testing.T, db *sqlx.DB, id string) string {
	t.Helper()
	var s string
	if err := db.Get(&s, `SELECT status FROM products WHERE id=?`, id); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCreateOrderReservesAndOpensTrail(t *testing.T) {
	db := memdb(t)
	svc, _ := ledger(t, db)

	o := placeOrder(t, svc)
	if o.Subtotal != 1250 || o.Discount != 0 || o.Total != 1250 {
		t.Fatalf("bad totals: %+v", o)
	}
	if o.Status != domain.StatusNew {
		t.Fatalf("want status new, got %s", o.Status)
	}
	if o.OrderNumber != 1000 {
		t.Fatalf("want first order number 1000, got %d", o.OrderNumber)
	}
	if o.ClientID == nil {
		t.Fatal("client should have been created")
	}
	if got := productStatus(t, db, "prd-ch-hoodie"); got != domain.ProductReserved {
		t.Fatalf("want product reserved, got %s", got)
	}

	d, err := svc.Get(o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Items) != 1 || d.Items[0].FinalPrice != 1250 || d.Items[0].OriginalPrice != 1250 {
		t.Fatalf("bad items: %+v", d.Items)
	}
	want := []domain.StatusHistoryEntry{
		{OrderID: o.ID, Status: domain.StatusNew, ChangedBy: "System", Notes: "Order created"},
	}
	ignore := cmpopts.IgnoreFields(domain.StatusHistoryEntry{}, "ID", "CreatedAt")
	if diff := cmp.Diff(want, d.History, ignore); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateOrderTotalsInvariant(t *testing.T) {
	db := memdb(t)
	svc, _ := ledger(t, db)

	o, err := svc.Create(services.OrderInput{
		Items: []services.OrderItemInput{
			{ProductID: "prd-ch-hoodie", Size: "M", Price: 1250},
			{ProductID: "prd-he-scarf", Size: "One Size", Price: 450},
		},
		Client:   &services.ClientInput{Name: "A", Email: "a@x.com"},
		Discount: 200,
	})
	if err != nil {
		t.Fatal(err)
	}
	if o.Subtotal != 1700 || o.Total != 1500 {
		t.Fatalf("want subtotal 1700 total 1500, got %+v", o)
	}

	d, _ := svc.Get(o.ID)
	sum := 0.0
	for _, it := range d.Items {
		sum += it.FinalPrice
	}
	if sum != o.Subtotal {
		t.Fatalf("subtotal %v != sum of item prices %v", o.Subtotal, sum)
	}
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	db := memdb(t)
	svc, _ := ledger(t, db)

	if _, err := svc.Create(services.OrderInput{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty items: want ErrValidation, got %v", err)
	}
	if _, err := svc.Create(services.OrderInput{
		Items:    []services.OrderItemInput{{ProductID: "prd-ch-hoodie", Size: "M", Price: 1250}},
		Discount: 2000,
	}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("oversized discount: want ErrValidation, got %v", err)
	}
	if _, err := svc.Create(services.OrderInput{
		Items:    []services.OrderItemInput{{ProductID: "prd-ch-hoodie", Size: "M", Price: 1250}},
		Discount: -5,
	}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("negative discount: want ErrValidation, got %v", err)
	}
}

func TestCreateOrderFailsWholeOnUnavailableProduct(t *testing.T) {
	db := memdb(t)
	svc, _ := ledger(t, db)

	placeOrder(t, svc) // reserves prd-ch-hoodie

	_, err := svc.Create(services.OrderInput{
		Items: []services.OrderItemInput{
			{ProductID: "prd-he-scarf", Size: "One Size", Price: 450},
			{ProductID: "prd-ch-hoodie", Size: "M", Price: 1250}, // already reserved
		},
	})
	if err == nil {
		t.Fatal("expected failure on reserved product")
	}
	// nothing from the failed order may stick: the scarf stays available
	if got := productStatus(t, db, "prd-he-scarf"); got != domain.ProductAvailable {
		t.Fatalf("partial reservation leaked: scarf is %s", got)
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want 1 order, got %d", n)
	}
}

func advance(t *testing.T, svc *services.OrderService, id string, path ...domain.Status) {
	t.Helper()
	for _, st := range path {
		if _, err := svc.UpdateStatus(id, st, "Admin", ""); err != nil {
			t.Fatalf("advance to %s: %v", st, err)
		}
	}
}

var toDelivered = []domain.Status{
	domain.StatusConfirmed, domain.StatusPreparing, domain.StatusFitting,
	domain.StatusShipping, domain.StatusDelivered,
}

func TestDeliveredCreditsClientAndSellsProducts(t *testing.T) {
	db := memdb(t)
	svc, clients := ledger(t, db)

	o := placeOrder(t, svc)
	advance(t, svc, o.ID, toDelivered...)

	if got := productStatus(t, db, "prd-ch-hoodie"); got != domain.ProductSold {
		t.Fatalf("want product sold, got %s", got)
	}
	c, err := clients.Get(*o.ClientID)
	if err != nil {
		t.Fatal(err)
	}
	if c.LTV != 1250 {
		t.Fatalf("want ltv 1250, got %v", c.LTV)
	}
	if c.Tier != domain.TierFor(c.LTV) || c.Tier != domain.TierNew {
		t.Fatalf("tier out of sync: %s for ltv %v", c.Tier, c.LTV)
	}
}

func TestDeliveredTierRecompute(t *testing.T) {
	db := memdb(t)
	svc, clients := ledger(t, db)

	o := placeOrder(t, svc)
	// prior spend of 4000 puts the post-delivery ltv across the regular line
	if _, err := db.Exec(`UPDATE clients SET ltv=4000 WHERE id=?`, *o.ClientID); err != nil {
		t.Fatal(err)
	}
	advance(t, svc, o.ID, toDelivered...)

	c, _ := clients.Get(*o.ClientID)
	if c.LTV != 5250 || c.Tier != domain.TierRegular {
		t.Fatalf("want ltv 5250 tier regular, got ltv %v tier %s", c.LTV, c.Tier)
	}
}

func TestDeliveredTwiceDoesNotDoubleCredit(t *testing.T) {
	db := memdb(t)
	svc, clients := ledger(t, db)

	o := placeOrder(t, svc)
	advance(t, svc, o.ID, toDelivered...)

	if _, err := svc.UpdateStatus(o.ID, domain.StatusDelivered, "Admin", ""); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("second delivered: want ErrInvalidTransition, got %v", err)
	}
	c, _ := clients.Get(*o.ClientID)
	if c.LTV != 1250 {
		t.Fatalf("ltv double-credited: %v", c.LTV)
	}
}

func TestInvalidTransitionsRejected(t *testing.T) {
	db := memdb(t)
	svc, _ := ledger(t, db)

	o := placeOrder(t, svc)
	if _, err := svc.UpdateStatus(o.ID, domain.StatusDelivered, "Admin", ""); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("new -> delivered: want ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.UpdateStatus(o.ID, "canceled", "Admin", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("unknown status: want ErrValidation, got %v", err)
	}
	if _, err := svc.UpdateStatus("no-such-order", domain.StatusConfirmed, "Admin", ""); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("missing order: want ErrNotFound, got %v", err)
	}
}

func TestReturnBeforeDeliveryReleasesProducts(t *testing.T) {
	db := memdb(t)
	svc, clients := ledger(t, db)

	o := placeOrder(t, svc)
	advance(t, svc, o.ID, domain.StatusConfirmed, domain.StatusPreparing)
	if _, err := svc.UpdateStatus(o.ID, domain.StatusReturned, "Admin", "changed mind"); err != nil {
		t.Fatal(err)
	}
	if got := productStatus(t, db, "prd-ch-hoodie"); got != domain.ProductAvailable {
		t.Fatalf("want product released, got %s", got)
	}
	// never delivered, so no credit to reverse
	c, _ := clients.Get(*o.ClientID)
	if c.LTV != 0 {
		t.Fatalf("ltv should be untouched, got %v", c.LTV)
	}
}

func TestReturnAfterDeliveryPolicyOff(t *testing.T) {
	db := memdb(t)
	svc, _ := ledger(t, db)

	o := placeOrder(t, svc)
	advance(t, svc, o.ID, toDelivered...)

	if _, err := svc.UpdateStatus(o.ID, domain.StatusReturned, "Admin", ""); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("delivered -> returned with policy off: want ErrInvalidTransition, got %v", err)
	}
}

func TestReturnAfterDeliveryPolicyOn(t *testing.T) {
	db := memdb(t)
	svc, clients := ledger(t, db)
	svc.ReturnAfterDelivery = true

	o := placeOrder(t, svc)
	advance(t, svc, o.ID, toDelivered...)
	if _, err := svc.UpdateStatus(o.ID, domain.StatusReturned, "Admin", "authenticity claim"); err != nil {
		t.Fatal(err)
	}

	if got := productStatus(t, db, "prd-ch-hoodie"); got != domain.ProductAvailable {
		t.Fatalf("want product back to available, got %s", got)
	}
	c, _ := clients.Get(*o.ClientID)
	if c.LTV != 0 || c.Tier != domain.TierNew {
		t.Fatalf("credit not reversed: ltv %v tier %s", c.LTV, c.Tier)
	}
}

func TestGuestOrderDeliversWithoutClient(t *testing.T) {
	db := memdb(t)
	svc, _ := ledger(t, db)

	o, err := svc.Create(services.OrderInput{
		Items: []services.OrderItemInput{{ProductID: "prd-lp-coat", Size: "M", Price: 3500}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if o.ClientID != nil {
		t.Fatal("guest order should have no client")
	}
	advance(t, svc, o.ID, toDelivered...)
	if got := productStatus(t, db, "prd-lp-coat"); got != domain.ProductSold {
		t.Fatalf("want sold, got %s", got)
	}
}

func TestOrderNumbersAreSequential(t *testing.T) {
	db := memdb(t)
	svc, _ := ledger(t, db)

	a := placeOrder(t, svc)
	b, err := svc.Create(services.OrderInput{
		Items: []services.OrderItemInput{{ProductID: "prd-he-scarf", Size: "One Size", Price: 450}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if b.OrderNumber != a.OrderNumber+1 {
		t.Fatalf("want consecutive numbers, got %d then %d", a.OrderNumber, b.OrderNumber)
	}
}

func TestStatusHistoryIsAppendOnlyTrail(t *testing.T) {
	db := memdb(t)
	svc, _ := ledger(t, db)

	o := placeOrder(t, svc)
	advance(t, svc, o.ID, domain.StatusConfirmed)
	if _, err := svc.UpdateStatus(o.ID, domain.StatusPreparing, "Concierge", "fitting booked"); err != nil {
		t.Fatal(err)
	}

	d, _ := svc.Get(o.ID)
	want := []domain.StatusHistoryEntry{
		{OrderID: o.ID, Status: domain.StatusNew, ChangedBy: "System", Notes: "Order created"},
		{OrderID: o.ID, Status: domain.StatusConfirmed, ChangedBy: "Admin"},
		{OrderID: o.ID, Status: domain.StatusPreparing, ChangedBy: "Concierge", Notes: "fitting booked"},
	}
	ignore := cmpopts.IgnoreFields(domain.StatusHistoryEntry{}, "ID", "CreatedAt")
	if diff := cmp.Diff(want, d.History, ignore); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if d.Order.Status != domain.StatusPreparing {
		t.Fatalf("status projection stale: %s", d.Order.Status)
	}
}
