package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"velours/internal/domain"
	"velours/internal/repos"
)

type OrderItemInput struct {
	ProductID string
	Size      string
	Price     float64
}

type ClientInput struct {
	Name  string
	Email string
	Phone string
}

type OrderInput struct {
	Items    []OrderItemInput
	Client   *ClientInput // nil places a guest order
	Delivery string
	Notes    string
	Discount float64
}

// OrderDetail bundles an order with its line items and audit trail.
type OrderDetail struct {
	Order   domain.Order
	Items   []repos.OrderItemRow
	History []domain.StatusHistoryEntry
}

// OrderService is the order ledger: creation, status transitions and the
// delivered-order side effects on products and client lifetime value.
// Every compound write runs in a single transaction.
type OrderService struct {
	DB       *sqlx.DB
	Orders   *repos.OrderRepo
	Products *repos.ProductRepo
	Clients  *repos.ClientRepo

	// ReturnAfterDelivery accepts delivered -> returned and reverses the
	// delivery side effects. Off by default.
	ReturnAfterDelivery bool
}

func NewOrderService(db *sqlx.DB, orders *repos.OrderRepo, products *repos.ProductRepo, clients *repos.ClientRepo) *OrderService {
	return &OrderService{DB: db, Orders: orders, Products: products, Clients: clients}
}

// Create places an order: resolves (or lazily creates) the client by email,
// persists the header and line items, reserves every referenced product and
// opens the audit trail. All of it commits or none of it does.
func (s *OrderService) Create(in OrderInput) (domain.Order, error) {
	if len(in.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: order needs at least one item", ErrValidation)
	}
	subtotal := 0.0
	for _, it := range in.Items {
		if it.ProductID == "" {
			return domain.Order{}, fmt.Errorf("%w: item missing product id", ErrValidation)
		}
		if it.Price < 0 {
			return domain.Order{}, fmt.Errorf("%w: negative item price", ErrValidation)
		}
		subtotal += it.Price
	}
	if in.Discount < 0 || in.Discount > subtotal {
		return domain.Order{}, fmt.Errorf("%w: discount %.2f out of range for subtotal %.2f", ErrValidation, in.Discount, subtotal)
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var clientID *string
	if in.Client != nil {
		c, err := s.Clients.Ensure(tx, uuid.NewString(), in.Client.Name, in.Client.Email, in.Client.Phone)
		if err != nil {
			return domain.Order{}, err
		}
		clientID = &c.ID
	}

	num, err := s.Orders.NextOrderNumber(tx)
	if err != nil {
		return domain.Order{}, err
	}

	o := domain.Order{
		ID:          uuid.NewString(),
		OrderNumber: num,
		ClientID:    clientID,
		Subtotal:    subtotal,
		Discount:    in.Discount,
		Total:       subtotal - in.Discount,
		Delivery:    in.Delivery,
		Notes:       in.Notes,
		Status:      domain.StatusNew,
	}
	if err := s.Orders.Create(tx, o); err != nil {
		return domain.Order{}, err
	}

	for _, it := range in.Items {
		// One-of-one pieces: anything not available fails the whole order.
		if err := s.Products.SetStatus(tx, it.ProductID, domain.ProductAvailable, domain.ProductReserved); err != nil {
			if ok, eerr := s.Products.Exists(tx, it.ProductID); eerr == nil && !ok {
				return domain.Order{}, fmt.Errorf("%w: product %s", ErrNotFound, it.ProductID)
			}
			return domain.Order{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if err := s.Orders.InsertItem(tx, domain.OrderItem{
			OrderID:       o.ID,
			ProductID:     it.ProductID,
			Size:          it.Size,
			OriginalPrice: it.Price,
			FinalPrice:    it.Price,
		}); err != nil {
			return domain.Order{}, err
		}
	}

	if err := s.Orders.AppendHistory(tx, o.ID, domain.StatusNew, "System", "Order created"); err != nil {
		return domain.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, err
	}
	return s.Orders.Get(o.ID)
}

// UpdateStatus transitions an order, appends the audit entry and, on the
// terminal states, applies the compound side effects:
//
//	delivered: products reserved -> sold, client ltv += total, tier recomputed
//	returned:  products released back to available; when the order was
//	           already delivered (policy permitting), the ltv credit is
//	           reversed and the tier recomputed
//
// The whole transition is one transaction, so a delivered order can never be
// half-credited, and a repeat delivered call fails the transition check
// instead of double-crediting.
func (s *OrderService) UpdateStatus(orderID string, status domain.Status, actor, notes string) (domain.Order, error) {
	if !domain.ValidStatus(status) {
		return domain.Order{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if actor == "" {
		actor = "Admin"
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	o, err := s.Orders.GetForUpdate(tx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return domain.Order{}, err
	}

	if !domain.CanTransition(o.Status, status, s.ReturnAfterDelivery) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}

	if err := s.Orders.UpdateStatus(tx, orderID, status); err != nil {
		return domain.Order{}, err
	}
	if err := s.Orders.AppendHistory(tx, orderID, status, actor, notes); err != nil {
		return domain.Order{}, err
	}

	switch status {
	case domain.StatusDelivered:
		if err := s.deliver(tx, o); err != nil {
			return domain.Order{}, err
		}
	case domain.StatusReturned:
		if err := s.release(tx, o); err != nil {
			return domain.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, err
	}
	return s.Orders.Get(orderID)
}

func (s *OrderService) deliver(tx *sqlx.Tx, o domain.Order) error {
	// Transition check already rules out a second delivery; keep the guard
	// anyway so the credit can never be applied twice.
	if o.Status == domain.StatusDelivered {
		return fmt.Errorf("%w: order %s already delivered", ErrInvalidTransition, o.ID)
	}

	ids, err := s.Orders.ProductIDs(tx, o.ID)
	if err != nil {
		return err
	}
	for _, pid := range ids {
		if err := s.Products.SetStatus(tx, pid, domain.ProductReserved, domain.ProductSold); err != nil {
			return err
		}
	}

	if o.ClientID == nil {
		return nil
	}
	return s.creditLTV(tx, *o.ClientID, o.Total)
}

func (s *OrderService) release(tx *sqlx.Tx, o domain.Order) error {
	from := domain.ProductReserved
	if o.Status == domain.StatusDelivered {
		from = domain.ProductSold
	}

	ids, err := s.Orders.ProductIDs(tx, o.ID)
	if err != nil {
		return err
	}
	for _, pid := range ids {
		if err := s.Products.SetStatus(tx, pid, from, domain.ProductAvailable); err != nil {
			return err
		}
	}

	// Reverse the ltv credit only if it was applied, i.e. the order had
	// actually been delivered.
	if o.Status != domain.StatusDelivered || o.ClientID == nil {
		return nil
	}
	return s.creditLTV(tx, *o.ClientID, -o.Total)
}

// creditLTV adjusts a client's lifetime value and persists the recomputed
// tier in the same statement batch.
func (s *OrderService) creditLTV(tx *sqlx.Tx, clientID string, delta float64) error {
	ltv, err := s.Clients.LTV(tx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: client %s", ErrNotFound, clientID)
		}
		return err
	}
	ltv += delta
	if ltv < 0 {
		ltv = 0
	}
	return s.Clients.SetLTV(tx, clientID, ltv, domain.TierFor(ltv))
}

// Get returns an order with items and full status history.
func (s *OrderService) Get(orderID string) (OrderDetail, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderDetail{}, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return OrderDetail{}, err
	}
	items, err := s.Orders.Items(orderID)
	if err != nil {
		return OrderDetail{}, err
	}
	hist, err := s.Orders.History(orderID)
	if err != nil {
		return OrderDetail{}, err
	}
	return OrderDetail{Order: o, Items: items, History: hist}, nil
}
