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

// ClientService is the client registry: get-or-create, wishlist and
// waitlist membership, and view tracking.
type ClientService struct {
	DB       *sqlx.DB
	Clients  *repos.ClientRepo
	Wishlist *repos.WishlistRepo
}

func NewClientService(db *sqlx.DB, clients *repos.ClientRepo, wishlist *repos.WishlistRepo) *ClientService {
	return &ClientService{DB: db, Clients: clients, Wishlist: wishlist}
}

// GetOrCreate looks a client up by email, creating the record on first
// contact. An existing client is returned as stored; differing name or
// phone in the input are ignored.
func (s *ClientService) GetOrCreate(in ClientInput) (domain.Client, error) {
	if in.Email == "" {
		return domain.Client{}, fmt.Errorf("%w: email required", ErrValidation)
	}
	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Client{}, err
	}
	defer func() { _ = tx.Rollback() }()

	c, err := s.Clients.Ensure(tx, uuid.NewString(), in.Name, in.Email, in.Phone)
	if err != nil {
		return domain.Client{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Client{}, err
	}
	return c, nil
}

func (s *ClientService) Get(clientID string) (domain.Client, error) {
	c, err := s.Clients.ByID(clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Client{}, fmt.Errorf("%w: client %s", ErrNotFound, clientID)
	}
	return c, err
}

func (s *ClientService) List(limit int) ([]domain.Client, error) {
	return s.Clients.List(limit)
}

func (s *ClientService) AddToWishlist(clientID, productID string) error {
	return s.Wishlist.Add(clientID, productID)
}

func (s *ClientService) RemoveFromWishlist(clientID, productID string) error {
	return s.Wishlist.Remove(clientID, productID)
}

func (s *ClientService) ListWishlist(clientID string) ([]repos.WishlistRow, error) {
	return s.Wishlist.List(clientID)
}

// AddToWaitlist joins a client to a product's waitlist. Priority is the
// client's ltv at the time of the call, a deliberate snapshot: the queue
// orders by value-at-join, not by whatever the ltv grows into later.
func (s *ClientService) AddToWaitlist(clientID, productID string) error {
	c, err := s.Clients.ByID(clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: client %s", ErrNotFound, clientID)
		}
		return err
	}
	return s.Wishlist.AddToWaitlist(clientID, productID, c.LTV)
}

func (s *ClientService) ListWaitlist(productID string) ([]repos.WaitlistRow, error) {
	return s.Wishlist.Waitlist(productID)
}

// TrackView records a product view. Anonymous views (empty client id) are
// silently dropped; repeat views append repeat rows.
func (s *ClientService) TrackView(clientID, productID string) error {
	if clientID == "" {
		return nil
	}
	return s.Clients.TrackView(clientID, productID)
}
