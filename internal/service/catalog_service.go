package service

//go:generate mockgen -source=catalog_service.go -destination=mocks/catalog_service.go -package=mocks

import (
	"context"
	"fmt"
	"strings"

	"repairdesk/internal/apperror"
	"repairdesk/internal/model"
	"repairdesk/internal/money"
	"repairdesk/internal/observability/logger"
	"repairdesk/internal/repository"
	"repairdesk/pkg/pagination"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

type ServiceListQuery struct {
	Search   string
	Category string
	pagination.Params
}

type CatalogService interface {
	CreateCategory(ctx context.Context, actorID string, req CreateCategoryRequest) (CategoryResponse, error)
	ListCategories(ctx context.Context) ([]CategoryResponse, error)

	CreateService(ctx context.Context, actorID string, req CreateServiceRequest) (ServiceResponse, error)
	// UpdateService changes the catalog entry. Lines already attached to orders keep their captured price.
	UpdateService(ctx context.Context, actorID, id string, req UpdateServiceRequest) (ServiceResponse, error)
	GetService(ctx context.Context, id string) (ServiceResponse, error)
	ListServices(ctx context.Context, query ServiceListQuery) ([]ServiceResponse, int64, error)
	// DeleteService refuses to delete a service that is still attached to an order.
	DeleteService(ctx context.Context, actorID, id string) error
}

type catalogService struct {
	catalogRepo repository.CatalogRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	node        *snowflake.Node
}

func NewCatalogService(
	catalogRepo repository.CatalogRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	node *snowflake.Node,
) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		node:        node,
	}
}

func (s *catalogService) CreateCategory(ctx context.Context, actorID string, req CreateCategoryRequest) (CategoryResponse, error) {
	category := model.Category{
		ID:    s.node.Generate(),
		Title: strings.TrimSpace(req.Title),
		Slug:  strings.TrimSpace(req.Slug),
	}
	if err := category.Validate(); err != nil {
		return CategoryResponse{}, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.catalogRepo.CreateCategory(txCtx, &category); err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionCreateCategory, "category", category.ID.String(), req)
	})
	if err != nil {
		return CategoryResponse{}, err
	}
	return toCategoryResponse(&category), nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.catalogRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	res := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		res = append(res, toCategoryResponse(&categories[i]))
	}
	return res, nil
}

func (s *catalogService) buildService(ctx context.Context, svc *model.Service, req CreateServiceRequest) error {
	categoryID, err := parseID("category_id", req.CategoryID)
	if err != nil {
		return err
	}
	category, err := s.catalogRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return notFoundAsReferential(err, "category_not_found", fmt.Sprintf("category %s does not exist", req.CategoryID))
	}
	price, err := money.Parse("price", req.Price)
	if err != nil {
		return err
	}

	svc.CategoryID = category.ID
	svc.Category = category
	svc.Name = strings.TrimSpace(req.Name)
	svc.Price = price
	return svc.Validate()
}

func (s *catalogService) CreateService(ctx context.Context, actorID string, req CreateServiceRequest) (ServiceResponse, error) {
	svc := model.Service{ID: s.node.Generate()}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.buildService(txCtx, &svc, req); err != nil {
			return err
		}
		if err := s.catalogRepo.CreateService(txCtx, &svc); err != nil {
			return fmt.Errorf("failed to create service: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionCreateService, "service", svc.ID.String(), req)
	})
	if err != nil {
		return ServiceResponse{}, err
	}
	return toServiceResponse(&svc), nil
}

func (s *catalogService) UpdateService(ctx context.Context, actorID, id string, req UpdateServiceRequest) (ServiceResponse, error) {
	serviceID, err := parseID("id", id)
	if err != nil {
		return ServiceResponse{}, err
	}

	var svc *model.Service
	var oldPrice string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		svc, err = s.catalogRepo.FindServiceByID(txCtx, serviceID)
		if err != nil {
			return err
		}
		oldPrice = money.Format(svc.Price)
		if err := s.buildService(txCtx, svc, req); err != nil {
			return err
		}
		if err := s.catalogRepo.UpdateService(txCtx, svc); err != nil {
			return fmt.Errorf("failed to update service: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionUpdateService, "service", svc.ID.String(), map[string]any{
			"request":   req,
			"old_price": oldPrice,
		})
	})
	if err != nil {
		return ServiceResponse{}, err
	}

	if oldPrice != money.Format(svc.Price) {
		logger.FromContext(ctx).Info("catalog price changed",
			zap.String("service_id", svc.ID.String()),
			zap.String("old_price", oldPrice),
			zap.String("new_price", money.Format(svc.Price)))
	}
	return toServiceResponse(svc), nil
}

func (s *catalogService) GetService(ctx context.Context, id string) (ServiceResponse, error) {
	serviceID, err := parseID("id", id)
	if err != nil {
		return ServiceResponse{}, err
	}
	svc, err := s.catalogRepo.FindServiceByID(ctx, serviceID)
	if err != nil {
		return ServiceResponse{}, err
	}
	return toServiceResponse(svc), nil
}

func (s *catalogService) ListServices(ctx context.Context, query ServiceListQuery) ([]ServiceResponse, int64, error) {
	services, total, err := s.catalogRepo.ListServices(ctx, repository.ServiceFilter{
		Search:       query.Search,
		CategorySlug: query.Category,
		ListParams:   listParams(query.Params),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list services: %w", err)
	}
	res := make([]ServiceResponse, 0, len(services))
	for i := range services {
		res = append(res, toServiceResponse(&services[i]))
	}
	return res, total, nil
}

func (s *catalogService) DeleteService(ctx context.Context, actorID, id string) error {
	serviceID, err := parseID("id", id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		n, err := s.catalogRepo.CountLinesForService(txCtx, serviceID)
		if err != nil {
			return fmt.Errorf("failed to check service usage: %w", err)
		}
		if n > 0 {
			return apperror.Referential("service_in_use",
				fmt.Sprintf("service %s is attached to %d order line(s)", serviceID, n))
		}
		if err := s.catalogRepo.DeleteService(txCtx, serviceID); err != nil {
			return err
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionDeleteService, "service", serviceID.String(), nil)
	})
}
