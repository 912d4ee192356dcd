package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"identity-service/internal/model"
	"identity-service/internal/store"
	"identity-service/pkg/logger"
	"identity-service/prometheus"
)

// TenantHandler exposes the tenant directory. Routes using it are gated
// by the Tenants permissions, which only the root tenant's Admin role
// holds.
type TenantHandler struct {
	dir store.Directory
}

func NewTenantHandler(dir store.Directory) *TenantHandler {
	return &TenantHandler{dir: dir}
}

// CreateTenant registers a new tenant in the directory. The new tenant's
// store is provisioned on the next seeding run.
func (h *TenantHandler) CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("create")

	var req struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		ValidForYears int    `json:"valid_for_years"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.ID == "" || req.Name == "" {
		log.Error("Invalid tenant data", zap.String("id", req.ID), zap.String("name", req.Name))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id and name are required"})
	}

	if req.ID == model.RootTenantID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant id is reserved"})
	}

	if req.ValidForYears <= 0 {
		req.ValidForYears = 1
	}

	tenant := &model.Tenant{
		ID:        req.ID,
		Name:      req.Name,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Active:    true,
		ValidUpTo: time.Now().AddDate(req.ValidForYears, 0, 0),
	}

	if err := h.dir.CreateTenant(c.Request().Context(), tenant); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "tenant already exists"})
		}
		log.Error("Failed to create tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant creation failed"})
	}

	log.Info("Tenant created", zap.String("tenant_id", tenant.ID))
	return c.JSON(http.StatusCreated, tenant)
}

// ListTenants returns every tenant in the directory.
func (h *TenantHandler) ListTenants(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("list")

	tenants, err := h.dir.ListTenants(c.Request().Context())
	if err != nil {
		log.Error("Failed to list tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list tenants"})
	}

	return c.JSON(http.StatusOK, echo.Map{"tenants": tenants})
}

// GetTenant returns a single tenant by id.
func (h *TenantHandler) GetTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("get")

	tenant, err := h.dir.GetTenant(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to get tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get tenant"})
	}

	return c.JSON(http.StatusOK, tenant)
}
