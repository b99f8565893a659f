package handler

import (
	"context"
	"net/http"
	"testing"

	"repairdesk/internal/apperror"
	"repairdesk/internal/service"
	"repairdesk/internal/service/mocks"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func newCatalogRouter(t *testing.T) (*gin.Engine, *mocks.MockCatalogService) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockCatalogService(ctrl)
	h := NewCatalogHandler(svc)

	r := gin.New()
	r.POST("/api/services", h.CreateService)
	r.GET("/api/services", h.ListServices)
	r.DELETE("/api/services/:id", h.DeleteService)
	return r, svc
}

func TestCatalogHandler_CreateService_Price(t *testing.T) {
	tests := []struct {
		name  string
		price string
		want  int
	}{
		{name: "negative", price: `"-10.00"`, want: http.StatusBadRequest},
		{name: "too precise", price: `"10.001"`, want: http.StatusBadRequest},
		{name: "not a number", price: `"ten"`, want: http.StatusBadRequest},
		{name: "valid", price: `"3000.00"`, want: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := newCatalogRouter(t)
			if tt.want == http.StatusCreated {
				svc.EXPECT().CreateService(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(service.ServiceResponse{ID: "1", Price: "3000.00"}, nil)
			}
			body := `{"category_id":"1","name":"Diagnostics","price":` + tt.price + `}`
			w, _ := do(t, r, http.MethodPost, "/api/services", body)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestCatalogHandler_DeleteService_InUse(t *testing.T) {
	r, svc := newCatalogRouter(t)
	svc.EXPECT().DeleteService(gomock.Any(), gomock.Any(), "4").
		Return(apperror.Referential("service_in_use", "service 4 is attached to 1 order line(s)"))

	w, env := do(t, r, http.MethodDelete, "/api/services/4", "")
	if w.Code != http.StatusConflict || env.Code != "service_in_use" {
		t.Fatalf("expected 409 service_in_use, got %d %+v", w.Code, env)
	}
}

func TestCatalogHandler_ListServices(t *testing.T) {
	r, svc := newCatalogRouter(t)
	svc.EXPECT().ListServices(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q service.ServiceListQuery) ([]service.ServiceResponse, int64, error) {
			if q.Category != "laptops" || q.Page != 2 || q.Limit != 5 {
				t.Errorf("unexpected query %+v", q)
			}
			return []service.ServiceResponse{}, int64(0), nil
		})

	w, _ := do(t, r, http.MethodGet, "/api/services?category=laptops&page=2&limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCatalogHandler_ListServicesRejectsBadPage(t *testing.T) {
	r, _ := newCatalogRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/services?page=first", "")
	if w.Code != http.StatusBadRequest || env.Code != "invalid_pagination" || env.Field != "page" {
		t.Fatalf("expected 400 invalid_pagination on page, got %d %+v", w.Code, env)
	}
}
