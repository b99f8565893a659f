package repository

import (
	"context"
	"time"

	"repairdesk/internal/apperror"
	"repairdesk/internal/model"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	Search      string
	Status      model.OrderStatus
	ClientID    snowflake.ID
	LegalKind   model.LegalKind
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	ListParams
}

// RollupFilter selects the orders a duty rollup runs over. Zero values match everything.
type RollupFilter struct {
	Status   model.OrderStatus
	ClientID snowflake.ID
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	Update(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id snowflake.ID) (*model.Order, error)
	// FindByIDForUpdate locks the order row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id snowflake.ID) (*model.Order, error)
	// FindByIDWithLedger loads the order with its client, service lines and purchases.
	FindByIDWithLedger(ctx context.Context, id snowflake.ID) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	// ListForRollup loads every matching order with lines and purchases in a fixed
	// number of queries, independent of the number of orders.
	ListForRollup(ctx context.Context, filter RollupFilter) ([]model.Order, error)
	Delete(ctx context.Context, id snowflake.ID) error

	CreateLines(ctx context.Context, lines []model.OrderServiceLine) error
	ListLines(ctx context.Context, orderID snowflake.ID) ([]model.OrderServiceLine, error)
	DeleteLine(ctx context.Context, orderID, serviceID snowflake.ID) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	err := GetDB(ctx, r.db).Omit(clause.Associations).Create(order).Error
	if err != nil {
		return translate(err, "order", order.ID, "")
	}
	return nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	res := GetDB(ctx, r.db).Model(order).
		Select("ClientID", "AcceptedEquipment", "Detail", "ServicesTotalOverride", "Advance", "Paid", "Status", "UpdatedAt").
		Updates(order)
	if res.Error != nil {
		return translate(res.Error, "order", order.ID, "")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("order", order.ID)
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id snowflake.ID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err, "order", id, "")
	}
	return &order, nil
}

func (r *orderRepository) FindByIDForUpdate(ctx context.Context, id snowflake.ID) (*model.Order, error) {
	var order model.Order
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "order", id, "")
	}
	return &order, nil
}

func (r *orderRepository) FindByIDWithLedger(ctx context.Context, id snowflake.ID) (*model.Order, error) {
	var order model.Order
	err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("ServiceLines", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("ServiceLines.Service").
		Preload("Purchases", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "order", id, "")
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	query := func() *gorm.DB {
		db := GetDB(ctx, r.db).Model(&model.Order{})
		if filter.Search != "" || filter.LegalKind != "" {
			db = db.Joins("JOIN clients ON clients.id = orders.client_id")
		}
		if filter.Status != "" {
			db = db.Where("orders.status = ?", filter.Status)
		}
		if filter.ClientID != 0 {
			db = db.Where("orders.client_id = ?", filter.ClientID)
		}
		if filter.LegalKind != "" {
			db = db.Where("clients.legal_kind = ?", filter.LegalKind)
		}
		if filter.CreatedFrom != nil {
			db = db.Where("orders.created_at >= ?", *filter.CreatedFrom)
		}
		if filter.CreatedTo != nil {
			db = db.Where("orders.created_at < ?", *filter.CreatedTo)
		}
		return textSearch{
			columns:   []string{"orders.accepted_equipment", "orders.detail", "clients.name", "clients.phone"},
			numberCol: "orders.number",
		}.apply(db, filter.Search)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	err := filter.apply(query().
		Preload("Client").
		Preload("ServiceLines").
		Preload("Purchases").
		Order("orders.id desc")).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) ListForRollup(ctx context.Context, filter RollupFilter) ([]model.Order, error) {
	db := GetDB(ctx, r.db).Model(&model.Order{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.ClientID != 0 {
		db = db.Where("client_id = ?", filter.ClientID)
	}

	var orders []model.Order
	err := db.Preload("ServiceLines").Preload("Purchases").Order("id desc").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Delete(ctx context.Context, id snowflake.ID) error {
	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Purchase{}).Where("order_id = ?", id).Update("order_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("order_id = ?", id).Delete(&model.OrderServiceLine{}).Error; err != nil {
		return err
	}
	res := db.Delete(&model.Order{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "order", id, "")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("order", id)
	}
	return nil
}

func (r *orderRepository) CreateLines(ctx context.Context, lines []model.OrderServiceLine) error {
	if len(lines) == 0 {
		return nil
	}
	err := GetDB(ctx, r.db).Omit("Service").Create(&lines).Error
	return translate(err, "order_service_line", nil, "")
}

func (r *orderRepository) ListLines(ctx context.Context, orderID snowflake.ID) ([]model.OrderServiceLine, error) {
	var lines []model.OrderServiceLine
	err := GetDB(ctx, r.db).Where("order_id = ?", orderID).Order("id asc").Find(&lines).Error
	return lines, err
}

func (r *orderRepository) DeleteLine(ctx context.Context, orderID, serviceID snowflake.ID) error {
	res := GetDB(ctx, r.db).
		Where("order_id = ? AND service_id = ?", orderID, serviceID).
		Delete(&model.OrderServiceLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("order_service_line", serviceID)
	}
	return nil
}
