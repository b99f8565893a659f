package handler

import (
	"context"
	"net/http"
	"testing"

	"repairdesk/internal/apperror"
	"repairdesk/internal/config"
	"repairdesk/internal/service"
	"repairdesk/internal/service/mocks"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func newClientRouter(t *testing.T, requireSearch bool) (*gin.Engine, *mocks.MockClientService) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockClientService(ctrl)
	h := NewClientHandler(svc, config.Config{Clients: config.ClientConfig{RequireSearch: requireSearch}})

	r := gin.New()
	r.GET("/api/clients", h.ListClients)
	r.POST("/api/clients", h.CreateClient)
	r.GET("/api/clients/:id", h.GetClient)
	r.DELETE("/api/clients/:id", h.DeleteClient)
	return r, svc
}

func TestClientHandler_ListClients_SearchPolicy(t *testing.T) {
	tests := []struct {
		name          string
		requireSearch bool
		query         string
		wantCall      bool
		want          int
	}{
		{name: "required and missing", requireSearch: true, query: "", want: http.StatusBadRequest},
		{name: "required and blank", requireSearch: true, query: "?search=%20%20", want: http.StatusBadRequest},
		{name: "required and present", requireSearch: true, query: "?search=ivan", wantCall: true, want: http.StatusOK},
		{name: "not required", requireSearch: false, query: "", wantCall: true, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := newClientRouter(t, tt.requireSearch)
			if tt.wantCall {
				svc.EXPECT().ListClients(gomock.Any(), gomock.Any()).
					Return([]service.ClientResponse{{ID: "1", Name: "Ivan"}}, int64(1), nil)
			}
			w, env := do(t, r, http.MethodGet, "/api/clients"+tt.query, "")
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if tt.want == http.StatusBadRequest && env.Code != "search_required" {
				t.Fatalf("unexpected code %q", env.Code)
			}
		})
	}
}

func TestClientHandler_CreateClient(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setup    func(svc *mocks.MockClientService)
		want     int
		wantCode string
	}{
		{name: "bad phone", body: `{"name":"Ivan","phone":"89991234567"}`, want: http.StatusBadRequest},
		{name: "bad legal kind", body: `{"name":"Ivan","phone":"+79991234567","legal_kind":"company"}`, want: http.StatusBadRequest},
		{
			name: "duplicate phone",
			body: `{"name":"Ivan","phone":"+79991234567","legal_kind":"individual"}`,
			setup: func(svc *mocks.MockClientService) {
				svc.EXPECT().CreateClient(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(service.ClientResponse{}, apperror.Validation("phone", "duplicate_phone", "already exists"))
			},
			want:     http.StatusBadRequest,
			wantCode: "duplicate_phone",
		},
		{
			name: "success",
			body: `{"name":"Ivan","phone":"+79991234567","legal_kind":"individual"}`,
			setup: func(svc *mocks.MockClientService) {
				svc.EXPECT().CreateClient(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, req service.CreateClientRequest) (service.ClientResponse, error) {
						return service.ClientResponse{ID: "1", Name: req.Name, Phone: req.Phone, LegalKind: req.LegalKind}, nil
					})
			},
			want: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := newClientRouter(t, true)
			if tt.setup != nil {
				tt.setup(svc)
			}
			w, env := do(t, r, http.MethodPost, "/api/clients", tt.body)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if tt.wantCode != "" && env.Code != tt.wantCode {
				t.Fatalf("expected code %q, got %q", tt.wantCode, env.Code)
			}
		})
	}
}

func TestClientHandler_GetClient_InvalidID(t *testing.T) {
	r, svc := newClientRouter(t, true)
	svc.EXPECT().GetClient(gomock.Any(), "abc").
		Return(service.ClientResponse{}, apperror.Validation("id", "invalid_id", "must be a numeric id"))

	w, env := do(t, r, http.MethodGet, "/api/clients/abc", "")
	if w.Code != http.StatusBadRequest || env.Field != "id" {
		t.Fatalf("expected 400 on id, got %d %+v", w.Code, env)
	}
}
