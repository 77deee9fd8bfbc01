package handlers

import (
	"github.com/jmoiron/sqlx"

	"harvestlink/internal/authz"
	"harvestlink/internal/config"
	"harvestlink/internal/notify"
	"harvestlink/internal/repos"
	"harvestlink/internal/services"
)

type Deps struct {
	FarmerRepo *repos.FarmerRepo
	Dispatcher *notify.Dispatcher

	SearchHandler  *SearchHandler
	ProductHandler *ProductHandler
	InquiryHandler *InquiryHandler
	FarmerHandler  *FarmerHandler
	WSHandler      *WSHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	farmerRepo := repos.NewFarmerRepo(db)
	prodRepo := repos.NewProductRepo(db)
	inqRepo := repos.NewInquiryRepo(db)
	eventRepo := repos.NewEventRepo(db)

	guard := authz.NewGuard()
	dispatcher := notify.NewDispatcher(eventRepo, cfg.NotifyBacklog)

	catalogSvc := services.NewCatalogService(prodRepo)
	productSvc := services.NewProductService(guard, prodRepo)
	inquirySvc := services.NewInquiryService(guard, inqRepo, prodRepo, dispatcher, services.LogMailer{})
	farmerSvc := services.NewFarmerService(guard, farmerRepo, prodRepo, inqRepo)

	return &Deps{
		FarmerRepo: farmerRepo,
		Dispatcher: dispatcher,

		SearchHandler:  &SearchHandler{Catalog: catalogSvc},
		ProductHandler: &ProductHandler{Catalog: catalogSvc, Products: productSvc},
		InquiryHandler: &InquiryHandler{Inquiries: inquirySvc},
		FarmerHandler:  &FarmerHandler{Farmers: farmerSvc},
		WSHandler:      &WSHandler{Dispatcher: dispatcher},
	}
}
