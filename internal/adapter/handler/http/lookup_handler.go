package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
	"github.com/sm8ta/ridewise/internal/core/services"
)

type LookupHandler struct {
	lookup  *services.LookupService
	logger  ports.LoggerPort
	metrics ports.MetricsPort
}

type ServiceTypesResponse struct {
	ServiceTypes []domain.ServiceType `json:"serviceTypes"`
	Count        int                  `json:"count"`
}

type MakesResponse struct {
	Year  int                  `json:"year"`
	Makes []domain.VehicleMake `json:"makes"`
	Count int                  `json:"count"`
}

func NewLookupHandler(
	lookup *services.LookupService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *LookupHandler {
	return &LookupHandler{
		lookup:  lookup,
		logger:  logger,
		metrics: metrics,
	}
}

// @Summary Service types
// @Description The catalog of service types offered when logging a service
// @Tags lookup
// @Security BearerAuth
// @Produce json
// @Param refresh query bool false "Reload the catalog" example:"false"
// @Success 200 {object} ServiceTypesResponse "Service types"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /service-types [get]
func (h *LookupHandler) ServiceTypes(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	types, err := h.lookup.ServiceTypes(c.Request.Context(), refresh)
	if err != nil {
		newCoreErrorResponse(c, err, "Failed to load service types")
		return
	}

	c.JSON(http.StatusOK, ServiceTypesResponse{
		ServiceTypes: types,
		Count:        len(types),
	})
}

// @Summary Decode a VIN
// @Description Looks the VIN up in the public vehicle registry
// @Tags lookup
// @Security BearerAuth
// @Produce json
// @Param vin path string true "VIN" example:"MLHPC4618M5000001"
// @Success 200 {object} domain.VehicleSummary "Decoded vehicle"
// @Failure 400 {object} errorResponse "Invalid VIN"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 502 {object} errorResponse "Registry error"
// @Router /vin/{vin} [get]
func (h *LookupHandler) DecodeVIN(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	summary, err := h.lookup.DecodeVIN(c.Request.Context(), c.Param("vin"))
	if err != nil {
		newCoreErrorResponse(c, err, "Failed to decode VIN")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// @Summary Motorcycle makes
// @Description Motorcycle makes the registry knows for a model year
// @Tags lookup
// @Security BearerAuth
// @Produce json
// @Param year query int true "Model year" example:"2021"
// @Success 200 {object} MakesResponse "Makes"
// @Failure 400 {object} errorResponse "Invalid year"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 502 {object} errorResponse "Registry error"
// @Router /makes [get]
func (h *LookupHandler) MakesForYear(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		h.logger.Warn("Invalid year in makes lookup", map[string]interface{}{
			"year": c.Query("year"),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid year")
		return
	}

	makes, err := h.lookup.MakesForYear(c.Request.Context(), year)
	if err != nil {
		newCoreErrorResponse(c, err, "Failed to load makes")
		return
	}

	c.JSON(http.StatusOK, MakesResponse{
		Year:  year,
		Makes: makes,
		Count: len(makes),
	})
}
