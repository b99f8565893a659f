package service

import (
	"fmt"

	"repairdesk/internal/config"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

var Module = fx.Module("service",
	fx.Provide(
		NewSnowflakeNode,
		NewOrderSettings,
		NewClientService,
		NewCatalogService,
		NewOrderService,
		NewPurchaseService,
		NewStatisticsService,
		NewAuditService,
	),
)

// NewSnowflakeNode returns the id generator for this process.
func NewSnowflakeNode(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return node, nil
}
