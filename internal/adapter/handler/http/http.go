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

type BikeHandler struct {
	bikeService *services.BikeService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

type BikeRequest struct {
	ID       *string        `json:"id,omitempty" example:"bike_01"`
	Name     *string        `json:"name,omitempty" example:"Adventure Twin"`
	Nickname *string        `json:"nickname,omitempty" example:"Blue"`
	Make     *string        `json:"make,omitempty" example:"Honda"`
	Model    *string        `json:"model,omitempty" example:"CB500X"`
	Year     domain.Numeric `json:"year" swaggertype:"integer" example:"2021"`
	Odometer domain.Numeric `json:"odometer" swaggertype:"integer" example:"8200"`
	VIN      *string        `json:"vin,omitempty" example:"MLHPC4618M5000001"`
}

type GetBikesResponse struct {
	Bikes []domain.Bike `json:"bikes"`
	Count int           `json:"count"`
}

func (r BikeRequest) patch() domain.BikePatch {
	return domain.BikePatch{
		ID:       r.ID,
		Name:     r.Name,
		Nickname: r.Nickname,
		Make:     r.Make,
		Model:    r.Model,
		Year:     r.Year,
		Odometer: r.Odometer,
		VIN:      r.VIN,
	}
}

func NewBikeHandler(
	bikeService *services.BikeService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *BikeHandler {
	return &BikeHandler{
		bikeService: bikeService,
		logger:      logger,
		metrics:     metrics,
	}
}

// @Summary Create a bike
// @Description Adds a bike to the garage. Missing fields get defaults.
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BikeRequest true "Bike data"
// @Success 201 {object} successResponse "Bike created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /bikes [post]
func (h *BikeHandler) CreateBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req BikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create bike", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	bike, err := h.bikeService.CreateBike(c.Request.Context(), req.patch())
	if err != nil {
		newCoreErrorResponse(c, err, "Failed to create bike")
		return
	}

	newSuccessResponse(c, http.StatusCreated, "Bike created successfully", bike)
}

// @Summary List bikes
// @Description Lists every bike, optionally only those with a given service type in their log
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Param type query string false "Service type id" example:"oil_change"
// @Success 200 {object} GetBikesResponse "Bikes"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /bikes [get]
func (h *BikeHandler) ListBikes(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikes := h.bikeService.ListBikes(c.Request.Context(), c.Query("type"))

	c.JSON(http.StatusOK, GetBikesResponse{
		Bikes: bikes,
		Count: len(bikes),
	})
}

// @Summary Get a bike
// @Description Returns the bike with its stats and its service log
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike id" example:"bike_01"
// @Param sort query string false "date-desc, date-asc, odo-desc or odo-asc" example:"date-desc"
// @Param type query string false "Service type id" example:"oil_change"
// @Param q query string false "Text to find in vendor or notes" example:"synthetic"
// @Success 200 {object} services.BikeDetail "Bike found"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Bike not found"
// @Router /bikes/{id} [get]
func (h *BikeHandler) GetBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID := c.Param("id")

	filter := query.Filter{
		ServiceTypeID: c.Query("type"),
		Query:         c.Query("q"),
	}
	detail, err := h.bikeService.GetBikeDetail(c.Request.Context(), bikeID, filter, query.ParseSortMode(c.Query("sort")))
	if err != nil {
		newCoreErrorResponse(c, err, "Failed to get bike")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// @Summary Save a bike
// @Description Updates the bike, creating it under this id when it does not exist
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Bike id" example:"bike_01"
// @Param request body BikeRequest true "Fields to change"
// @Success 200 {object} successResponse "Bike saved"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /bikes/{id} [put]
func (h *BikeHandler) UpdateBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID := c.Param("id")

	var req BikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update bike", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	bike, err := h.bikeService.SaveBike(c.Request.Context(), bikeID, req.patch())
	if err != nil {
		newCoreErrorResponse(c, err, "Update failed")
		return
	}

	newSuccessResponse(c, http.StatusOK, "Bike saved successfully", bike)
}
