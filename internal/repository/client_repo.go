package repository

import (
	"context"

	"repairdesk/internal/apperror"
	"repairdesk/internal/model"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ClientFilter struct {
	Search    string
	LegalKind model.LegalKind
	ListParams
}

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	Update(ctx context.Context, client *model.Client) error
	FindByID(ctx context.Context, id snowflake.ID) (*model.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]model.Client, int64, error)
	// Delete removes the client with its orders and their service lines. Purchases
	// of those orders are kept with a null order reference.
	Delete(ctx context.Context, id snowflake.ID) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	err := GetDB(ctx, r.db).Omit("Orders").Create(client).Error
	return translate(err, "client", client.ID, "phone")
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	res := GetDB(ctx, r.db).Model(client).
		Select("Name", "Phone", "LegalKind", "Company", "Address", "UpdatedAt").
		Updates(client)
	if res.Error != nil {
		return translate(res.Error, "client", client.ID, "phone")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("client", client.ID)
	}
	return nil
}

func (r *clientRepository) FindByID(ctx context.Context, id snowflake.ID) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "id = ?", id).Error; err != nil {
		return nil, translate(err, "client", id, "")
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, filter ClientFilter) ([]model.Client, int64, error) {
	query := func() *gorm.DB {
		db := GetDB(ctx, r.db).Model(&model.Client{})
		if filter.LegalKind != "" {
			db = db.Where("legal_kind = ?", filter.LegalKind)
		}
		return textSearch{
			columns:  []string{"name", "phone", "company", "address"},
			phoneCol: "phone",
		}.apply(db, filter.Search)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []model.Client
	if err := filter.apply(query().Order("id desc")).Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *clientRepository) Delete(ctx context.Context, id snowflake.ID) error {
	db := GetDB(ctx, r.db)

	var orderIDs []snowflake.ID
	if err := db.Model(&model.Order{}).Where("client_id = ?", id).Pluck("id", &orderIDs).Error; err != nil {
		return err
	}
	if len(orderIDs) > 0 {
		if err := db.Model(&model.Purchase{}).Where("order_id IN ?", orderIDs).
			Update("order_id", nil).Error; err != nil {
			return err
		}
		if err := db.Where("order_id IN ?", orderIDs).Delete(&model.OrderServiceLine{}).Error; err != nil {
			return err
		}
		if err := db.Where("id IN ?", orderIDs).Delete(&model.Order{}).Error; err != nil {
			return err
		}
	}

	res := db.Delete(&model.Client{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "client", id, "")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("client", id)
	}
	return nil
}
