package repository

import (
	"context"

	"repairdesk/internal/apperror"
	"repairdesk/internal/model"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ServiceFilter struct {
	Search       string
	CategorySlug string
	ListParams
}

type CatalogRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	FindCategoryByID(ctx context.Context, id snowflake.ID) (*model.Category, error)

	CreateService(ctx context.Context, svc *model.Service) error
	UpdateService(ctx context.Context, svc *model.Service) error
	FindServiceByID(ctx context.Context, id snowflake.ID) (*model.Service, error)
	// FindServicesByIDs returns the services that exist, keyed by id. Missing ids are simply absent.
	FindServicesByIDs(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]model.Service, error)
	ListServices(ctx context.Context, filter ServiceFilter) ([]model.Service, int64, error)
	CountLinesForService(ctx context.Context, id snowflake.ID) (int64, error)
	DeleteService(ctx context.Context, id snowflake.ID) error
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	return translate(GetDB(ctx, r.db).Create(category).Error, "category", category.ID, "slug")
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := GetDB(ctx, r.db).Order("title asc").Order("id asc").Find(&categories).Error
	return categories, err
}

func (r *catalogRepository) FindCategoryByID(ctx context.Context, id snowflake.ID) (*model.Category, error) {
	var category model.Category
	if err := GetDB(ctx, r.db).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err, "category", id, "")
	}
	return &category, nil
}

func (r *catalogRepository) CreateService(ctx context.Context, svc *model.Service) error {
	err := GetDB(ctx, r.db).Omit("Category").Create(svc).Error
	return translate(err, "service", svc.ID, "name")
}

func (r *catalogRepository) UpdateService(ctx context.Context, svc *model.Service) error {
	res := GetDB(ctx, r.db).Model(svc).
		Select("CategoryID", "Name", "Price", "UpdatedAt").
		Updates(svc)
	if res.Error != nil {
		return translate(res.Error, "service", svc.ID, "name")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("service", svc.ID)
	}
	return nil
}

func (r *catalogRepository) FindServiceByID(ctx context.Context, id snowflake.ID) (*model.Service, error) {
	var svc model.Service
	if err := GetDB(ctx, r.db).Preload("Category").First(&svc, "id = ?", id).Error; err != nil {
		return nil, translate(err, "service", id, "")
	}
	return &svc, nil
}

func (r *catalogRepository) FindServicesByIDs(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]model.Service, error) {
	out := make(map[snowflake.ID]model.Service, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var services []model.Service
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&services).Error; err != nil {
		return nil, err
	}
	for _, svc := range services {
		out[svc.ID] = svc
	}
	return out, nil
}

func (r *catalogRepository) ListServices(ctx context.Context, filter ServiceFilter) ([]model.Service, int64, error) {
	query := func() *gorm.DB {
		db := GetDB(ctx, r.db).Model(&model.Service{})
		if filter.CategorySlug != "" {
			db = db.Where("category_id IN (?)",
				GetDB(ctx, r.db).Model(&model.Category{}).Select("id").Where("slug = ?", filter.CategorySlug))
		}
		return textSearch{columns: []string{"name"}}.apply(db, filter.Search)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []model.Service
	err := filter.apply(query().Preload("Category").Order("name asc").Order("id asc")).Find(&services).Error
	if err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

func (r *catalogRepository) CountLinesForService(ctx context.Context, id snowflake.ID) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.OrderServiceLine{}).Where("service_id = ?", id).Count(&n).Error
	return n, err
}

func (r *catalogRepository) DeleteService(ctx context.Context, id snowflake.ID) error {
	res := GetDB(ctx, r.db).Delete(&model.Service{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "service", id, "")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("service", id)
	}
	return nil
}
