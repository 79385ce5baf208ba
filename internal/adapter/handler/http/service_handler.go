package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
	"github.com/sm8ta/ridewise/internal/core/query"
	"github.com/sm8ta/ridewise/internal/core/services"
)

type ServiceHandler struct {
	serviceLog *services.ServiceLogService
	logger     ports.LoggerPort
	metrics    ports.MetricsPort
}

type GetServicesResponse struct {
	Services []domain.ServiceEntry `json:"services"`
	Count    int                   `json:"count"`
}

func NewServiceHandler(
	serviceLog *services.ServiceLogService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *ServiceHandler {
	return &ServiceHandler{
		serviceLog: serviceLog,
		logger:     logger,
		metrics:    metrics,
	}
}

// @Summary Log a service
// @Description Adds a service entry to a bike's log
// @Tags services
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.ServicePatch true "Service entry"
// @Success 201 {object} successResponse "Service logged"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /services [post]
func (h *ServiceHandler) CreateService(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req domain.ServicePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create service", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	entry, err := h.serviceLog.CreateService(c.Request.Context(), req)
	if err != nil {
		newCoreErrorResponse(c, err, "Failed to log service")
		return
	}

	newSuccessResponse(c, http.StatusCreated, "Service logged successfully", entry)
}

// @Summary List services
// @Description Lists service entries across the garage
// @Tags services
// @Security BearerAuth
// @Produce json
// @Param bike query string false "Bike id" example:"bike_01"
// @Param type query string false "Service type id" example:"oil_change"
// @Param q query string false "Text to find in vendor or notes" example:"synthetic"
// @Param sort query string false "date-desc, date-asc, odo-desc or odo-asc" example:"date-desc"
// @Success 200 {object} GetServicesResponse "Service entries"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /services [get]
func (h *ServiceHandler) ListServices(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	filter := query.Filter{
		BikeID:        c.Query("bike"),
		ServiceTypeID: c.Query("type"),
		Query:         c.Query("q"),
	}
	entries := h.serviceLog.ListServices(c.Request.Context(), filter, query.ParseSortMode(c.Query("sort")))

	c.JSON(http.StatusOK, GetServicesResponse{
		Services: entries,
		Count:    len(entries),
	})
}

// @Summary Get a service
// @Tags services
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service id" example:"svc_seed_1"
// @Success 200 {object} domain.ServiceEntry "Service found"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Service not found"
// @Router /services/{id} [get]
func (h *ServiceHandler) GetService(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	entry, err := h.serviceLog.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		newCoreErrorResponse(c, err, "Failed to get service")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// @Summary Update a service
// @Tags services
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service id" example:"svc_seed_1"
// @Param request body domain.ServicePatch true "Fields to change"
// @Success 200 {object} successResponse "Service updated"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Service not found"
// @Router /services/{id} [put]
func (h *ServiceHandler) UpdateService(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	serviceID := c.Param("id")

	var req domain.ServicePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update service", map[string]interface{}{
			"error":      err.Error(),
			"service_id": serviceID,
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	entry, err := h.serviceLog.UpdateService(c.Request.Context(), serviceID, req)
	if err != nil {
		newCoreErrorResponse(c, err, "Update failed")
		return
	}

	newSuccessResponse(c, http.StatusOK, "Service updated successfully", entry)
}

// @Summary Delete a service
// @Description Removes a service entry. Unknown ids are ignored.
// @Tags services
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service id" example:"svc_seed_1"
// @Success 200 {object} successResponse "Service deleted"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /services/{id} [delete]
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if err := h.serviceLog.DeleteService(c.Request.Context(), c.Param("id")); err != nil {
		newCoreErrorResponse(c, err, "Delete failed")
		return
	}

	newSuccessResponse(c, http.StatusOK, "Service deleted successfully", nil)
}
