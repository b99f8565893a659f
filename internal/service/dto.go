package service

import (
	"bytes"
	"encoding/json"
	"time"

	"repairdesk/internal/ledger"
	"repairdesk/internal/model"
	"repairdesk/internal/money"

	"github.com/shopspring/decimal"
)

// NullableMoney distinguishes an absent field, an explicit null and a value in
// PATCH bodies.
type NullableMoney struct {
	Set   bool
	Value *string
}

func (n *NullableMoney) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n.Value = &s
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	s = num.String()
	n.Value = &s
	return nil
}

// --- Clients ---

type CreateClientRequest struct {
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone" binding:"required,phone"`
	LegalKind string `json:"legal_kind" binding:"omitempty,oneof=individual organization"`
	Company   string `json:"company"`
	Address   string `json:"address"`
}

type UpdateClientRequest = CreateClientRequest

type ClientResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	LegalKind string  `json:"legal_kind"`
	Company   string  `json:"company"`
	Address   string  `json:"address"`
	TotalDuty *string `json:"total_duty,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func toClientResponse(c *model.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Phone:     c.Phone,
		LegalKind: string(c.LegalKind),
		Company:   c.Company,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// --- Catalog ---

type CreateCategoryRequest struct {
	Title string `json:"title" binding:"required"`
	Slug  string `json:"slug" binding:"required"`
}

type CategoryResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

func toCategoryResponse(c *model.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID.String(), Title: c.Title, Slug: c.Slug}
}

type CreateServiceRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Price      string `json:"price" binding:"required,money"`
}

type UpdateServiceRequest = CreateServiceRequest

type ServiceResponse struct {
	ID         string            `json:"id"`
	CategoryID string            `json:"category_id"`
	Category   *CategoryResponse `json:"category,omitempty"`
	Name       string            `json:"name"`
	Price      string            `json:"price"`
}

func toServiceResponse(s *model.Service) ServiceResponse {
	res := ServiceResponse{
		ID:         s.ID.String(),
		CategoryID: s.CategoryID.String(),
		Name:       s.Name,
		Price:      money.Format(s.Price),
	}
	if s.Category != nil {
		cat := toCategoryResponse(s.Category)
		res.Category = &cat
	}
	return res
}

// --- Orders ---

type AttachServiceItem struct {
	ServiceID string `json:"service_id" binding:"required"`
	// Price, when set, is kept instead of the catalog price.
	Price *string `json:"price" binding:"omitempty,money"`
}

type AttachServicesRequest struct {
	Services []AttachServiceItem `json:"services" binding:"required,min=1,dive"`
}

type CreateOrderRequest struct {
	ClientID              string              `json:"client_id" binding:"required"`
	AcceptedEquipment     string              `json:"accepted_equipment" binding:"required"`
	Detail                string              `json:"detail" binding:"required"`
	Status                string              `json:"status"`
	Advance               string              `json:"advance" binding:"omitempty,money"`
	Paid                  string              `json:"paid" binding:"omitempty,money"`
	ServicesTotalOverride *string             `json:"services_total_override" binding:"omitempty,money"`
	Services              []AttachServiceItem `json:"services" binding:"omitempty,dive"`
}

type UpdateOrderRequest struct {
	ClientID              *string       `json:"client_id"`
	AcceptedEquipment     *string       `json:"accepted_equipment"`
	Detail                *string       `json:"detail"`
	Status                *string       `json:"status"`
	Advance               *string       `json:"advance" binding:"omitempty,money"`
	Paid                  *string       `json:"paid" binding:"omitempty,money"`
	ServicesTotalOverride NullableMoney `json:"services_total_override"`
}

type OrderLineResponse struct {
	ServiceID     string `json:"service_id"`
	ServiceName   string `json:"service_name,omitempty"`
	CapturedPrice string `json:"captured_price"`
}

type PositionResponse struct {
	ServicesBaseTotal     string  `json:"services_base_total"`
	ServicesTotalOverride *string `json:"services_total_override"`
	ServicesTotal         string  `json:"services_total"`
	PurchasesTotal        string  `json:"purchases_total"`
	TotalAmount           string  `json:"total_amount"`
	Advance               string  `json:"advance"`
	Paid                  string  `json:"paid"`
	Duty                  string  `json:"duty"`
}

type ClientSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	LegalKind string `json:"legal_kind"`
}

type OrderResponse struct {
	ID                string              `json:"id"`
	Number            int64               `json:"number"`
	Code              string              `json:"code"`
	ClientID          string              `json:"client_id"`
	Client            *ClientSummary      `json:"client,omitempty"`
	AcceptedEquipment string              `json:"accepted_equipment"`
	Detail            string              `json:"detail"`
	Status            string              `json:"status"`
	Position          PositionResponse    `json:"position"`
	Services          []OrderLineResponse `json:"services,omitempty"`
	Purchases         []PurchaseResponse  `json:"purchases,omitempty"`
	CreatedAt         string              `json:"created_at"`
}

func toPositionResponse(o *model.Order) PositionResponse {
	p := ledger.Compute(o)
	return PositionResponse{
		ServicesBaseTotal:     money.Format(p.ServicesBaseTotal),
		ServicesTotalOverride: money.FormatPtr(o.ServicesTotalOverride),
		ServicesTotal:         money.Format(p.ServicesTotal),
		PurchasesTotal:        money.Format(p.PurchasesTotal),
		TotalAmount:           money.Format(p.TotalAmount),
		Advance:               money.Format(p.Advance),
		Paid:                  money.Format(p.Paid),
		Duty:                  money.Format(p.Duty),
	}
}

func toLineResponse(l *model.OrderServiceLine) OrderLineResponse {
	res := OrderLineResponse{
		ServiceID:     l.ServiceID.String(),
		CapturedPrice: money.Format(l.CapturedPrice),
	}
	if l.Service != nil {
		res.ServiceName = l.Service.Name
	}
	return res
}

// toOrderResponse expects lines and purchases to be loaded. withLines adds the
// line and purchase detail to the position.
func toOrderResponse(o *model.Order, settings OrderSettings, withLines bool) OrderResponse {
	res := OrderResponse{
		ID:                o.ID.String(),
		Number:            o.Number,
		Code:              o.Code(settings.CodePrefix, settings.CodePad),
		ClientID:          o.ClientID.String(),
		AcceptedEquipment: o.AcceptedEquipment,
		Detail:            o.Detail,
		Status:            string(o.Status),
		Position:          toPositionResponse(o),
		CreatedAt:         o.CreatedAt.Format(time.RFC3339),
	}
	if o.Client != nil {
		res.Client = &ClientSummary{
			ID:        o.Client.ID.String(),
			Name:      o.Client.Name,
			Phone:     o.Client.Phone,
			LegalKind: string(o.Client.LegalKind),
		}
	}
	if withLines {
		res.Services = make([]OrderLineResponse, 0, len(o.ServiceLines))
		for i := range o.ServiceLines {
			res.Services = append(res.Services, toLineResponse(&o.ServiceLines[i]))
		}
		res.Purchases = make([]PurchaseResponse, 0, len(o.Purchases))
		for i := range o.Purchases {
			res.Purchases = append(res.Purchases, toPurchaseResponse(&o.Purchases[i]))
		}
	}
	return res
}

type DutyRollupResponse struct {
	Orders         int    `json:"orders"`
	ServicesTotal  string `json:"services_total"`
	PurchasesTotal string `json:"purchases_total"`
	TotalAmount    string `json:"total_amount"`
	Advance        string `json:"advance"`
	Paid           string `json:"paid"`
	Duty           string `json:"duty"`
}

func toDutyRollupResponse(s ledger.Summary) DutyRollupResponse {
	return DutyRollupResponse{
		Orders:         s.Orders,
		ServicesTotal:  money.Format(s.ServicesTotal),
		PurchasesTotal: money.Format(s.PurchasesTotal),
		TotalAmount:    money.Format(s.TotalAmount),
		Advance:        money.Format(s.Advance),
		Paid:           money.Format(s.Paid),
		Duty:           money.Format(s.Duty),
	}
}

// --- Purchases ---

type CreatePurchaseRequest struct {
	OrderID string `json:"order_id"`
	Store   string `json:"store" binding:"required"`
	Detail  string `json:"detail" binding:"required"`
	Cost    string `json:"cost" binding:"required,money"`
	Status  string `json:"status" binding:"omitempty,oneof=awaiting_delivery received installed"`
}

type UpdatePurchaseRequest = CreatePurchaseRequest

type PurchaseResponse struct {
	ID          string  `json:"id"`
	OrderID     *string `json:"order_id"`
	OrderNumber *int64  `json:"order_number,omitempty"`
	Store       string  `json:"store"`
	Detail      string  `json:"detail"`
	Cost        string  `json:"cost"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

func toPurchaseResponse(p *model.Purchase) PurchaseResponse {
	res := PurchaseResponse{
		ID:        p.ID.String(),
		Store:     p.Store,
		Detail:    p.Detail,
		Cost:      money.Format(p.Cost),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if p.OrderID != nil {
		id := p.OrderID.String()
		res.OrderID = &id
	}
	if p.Order != nil {
		n := p.Order.Number
		res.OrderNumber = &n
	}
	return res
}

func parseMoneyPtr(field string, raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := money.Parse(field, *raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
