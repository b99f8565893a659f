package service

//go:generate mockgen -source=client_service.go -destination=mocks/client_service.go -package=mocks

import (
	"context"
	"fmt"
	"strings"

	"repairdesk/internal/ledger"
	"repairdesk/internal/model"
	"repairdesk/internal/money"
	"repairdesk/internal/observability/logger"
	"repairdesk/internal/repository"
	"repairdesk/pkg/pagination"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

type ClientListQuery struct {
	Search    string
	LegalKind string
	pagination.Params
}

type ClientService interface {
	CreateClient(ctx context.Context, actorID string, req CreateClientRequest) (ClientResponse, error)
	UpdateClient(ctx context.Context, actorID, id string, req UpdateClientRequest) (ClientResponse, error)
	// GetClient returns the client with total_duty summed over all its orders.
	GetClient(ctx context.Context, id string) (ClientResponse, error)
	ListClients(ctx context.Context, query ClientListQuery) ([]ClientResponse, int64, error)
	DeleteClient(ctx context.Context, actorID, id string) error
}

type clientService struct {
	clientRepo repository.ClientRepository
	orderRepo  repository.OrderRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	node       *snowflake.Node
}

func NewClientService(
	clientRepo repository.ClientRepository,
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	node *snowflake.Node,
) ClientService {
	return &clientService{
		clientRepo: clientRepo,
		orderRepo:  orderRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		node:       node,
	}
}

func applyClientRequest(c *model.Client, req CreateClientRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Phone = strings.TrimSpace(req.Phone)
	c.LegalKind = model.LegalKind(req.LegalKind)
	if c.LegalKind == "" {
		c.LegalKind = model.LegalKindOrganization
	}
	c.Company = strings.TrimSpace(req.Company)
	c.Address = strings.TrimSpace(req.Address)
}

func (s *clientService) CreateClient(ctx context.Context, actorID string, req CreateClientRequest) (ClientResponse, error) {
	client := model.Client{ID: s.node.Generate()}
	applyClientRequest(&client, req)
	if err := client.Validate(); err != nil {
		return ClientResponse{}, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.clientRepo.Create(txCtx, &client); err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionCreateClient, "client", client.ID.String(), req)
	})
	if err != nil {
		return ClientResponse{}, err
	}

	logger.FromContext(ctx).Info("client created",
		zap.String("client_id", client.ID.String()),
		zap.String("phone", logger.MaskPhone(client.Phone)))
	return toClientResponse(&client), nil
}

func (s *clientService) UpdateClient(ctx context.Context, actorID, id string, req UpdateClientRequest) (ClientResponse, error) {
	clientID, err := parseID("id", id)
	if err != nil {
		return ClientResponse{}, err
	}

	var client *model.Client
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err = s.clientRepo.FindByID(txCtx, clientID)
		if err != nil {
			return err
		}
		applyClientRequest(client, req)
		if err := client.Validate(); err != nil {
			return err
		}
		if err := s.clientRepo.Update(txCtx, client); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionUpdateClient, "client", client.ID.String(), req)
	})
	if err != nil {
		return ClientResponse{}, err
	}
	return toClientResponse(client), nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (ClientResponse, error) {
	clientID, err := parseID("id", id)
	if err != nil {
		return ClientResponse{}, err
	}

	var res ClientResponse
	err = s.txManager.RunInSnapshot(ctx, func(txCtx context.Context) error {
		client, err := s.clientRepo.FindByID(txCtx, clientID)
		if err != nil {
			return err
		}
		orders, err := s.orderRepo.ListForRollup(txCtx, repository.RollupFilter{ClientID: clientID})
		if err != nil {
			return fmt.Errorf("failed to load client orders: %w", err)
		}
		res = toClientResponse(client)
		duty := money.Format(ledger.RollupDuty(orders))
		res.TotalDuty = &duty
		return nil
	})
	if err != nil {
		return ClientResponse{}, err
	}
	return res, nil
}

func (s *clientService) ListClients(ctx context.Context, query ClientListQuery) ([]ClientResponse, int64, error) {
	filter := repository.ClientFilter{
		Search:     query.Search,
		LegalKind:  model.LegalKind(query.LegalKind),
		ListParams: listParams(query.Params),
	}
	clients, total, err := s.clientRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}

	res := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		res = append(res, toClientResponse(&clients[i]))
	}
	return res, total, nil
}

func (s *clientService) DeleteClient(ctx context.Context, actorID, id string) error {
	clientID, err := parseID("id", id)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.clientRepo.Delete(txCtx, clientID); err != nil {
			return err
		}
		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionDeleteClient, "client", clientID.String(), nil)
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("client deleted", zap.String("client_id", clientID.String()))
	return nil
}
