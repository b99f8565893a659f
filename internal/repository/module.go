package repository

import "go.uber.org/fx"

var Module = fx.Module("repository",
	fx.Provide(
		NewTransactionManager,
		NewClientRepository,
		NewCatalogRepository,
		NewOrderRepository,
		NewPurchaseRepository,
		NewSequenceRepository,
		NewStatisticsRepository,
		NewAuditRepository,
	),
)
