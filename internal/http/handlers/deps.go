package handlers

import (
	"velours/internal/config"
	"velours/internal/repos"
	"velours/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	CatalogHandler *CatalogHandler
	OrderHandler   *OrderHandler
	ClientHandler  *ClientHandler
	AdminHandler   *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	prodRepo := repos.NewProductRepo(db)
	clientRepo := repos.NewClientRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	wishRepo := repos.NewWishlistRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo)
	clientSvc := services.NewClientService(db, clientRepo, wishRepo)
	orderSvc := services.NewOrderService(db, orderRepo, prodRepo, clientRepo)
	orderSvc.ReturnAfterDelivery = cfg.ReturnAfterDelivery

	return &Deps{
		CatalogHandler: &CatalogHandler{Catalog: catalogSvc},
		OrderHandler:   &OrderHandler{Order: orderSvc, Clients: clientSvc},
		ClientHandler:  &ClientHandler{Clients: clientSvc},
		AdminHandler:   &AdminHandler{Order: orderSvc, Clients: clientSvc},
	}
}
