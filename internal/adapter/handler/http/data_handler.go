package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
	"github.com/sm8ta/ridewise/internal/core/services"
)

const maxImportBytes = 10 << 20

// DataHandler serves the dashboard, preferences and whole-document operations.
type DataHandler struct {
	stats       *services.StatsService
	preferences *services.PreferencesService
	data        *services.DataService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

type RestoreRequest struct {
	Key string `json:"key,omitempty" example:"backups/ridewise-20240405T120000Z.json"`
}

type BackupsResponse struct {
	Keys  []string `json:"keys"`
	Count int      `json:"count"`
}

func NewDataHandler(
	stats *services.StatsService,
	preferences *services.PreferencesService,
	data *services.DataService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *DataHandler {
	return &DataHandler{
		stats:       stats,
		preferences: preferences,
		data:        data,
		logger:      logger,
		metrics:     metrics,
	}
}

// @Summary Dashboard
// @Description Fleet totals plus per-bike stats
// @Tags stats
// @Security BearerAuth
// @Produce json
// @Param type query string false "Only bikes with this service type" example:"oil_change"
// @Success 200 {object} services.Dashboard "Dashboard"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /stats [get]
func (h *DataHandler) Dashboard(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	c.JSON(http.StatusOK, h.stats.Dashboard(c.Request.Context(), c.Query("type")))
}

// @Summary Get preferences
// @Tags preferences
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Preferences "Preferences"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /preferences [get]
func (h *DataHandler) GetPreferences(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	c.JSON(http.StatusOK, h.preferences.GetPreferences(c.Request.Context()))
}

// @Summary Update preferences
// @Tags preferences
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.PreferencesPatch true "Fields to change"
// @Success 200 {object} successResponse "Preferences updated"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /preferences [put]
func (h *DataHandler) UpdatePreferences(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req domain.PreferencesPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update preferences", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	prefs, err := h.preferences.UpdatePreferences(c.Request.Context(), req)
	if err != nil {
		newCoreErrorResponse(c, err, "Update failed")
		return
	}

	newSuccessResponse(c, http.StatusOK, "Preferences updated successfully", prefs)
}

// @Summary Export data
// @Description Downloads the whole document as pretty-printed JSON
// @Tags data
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Document "Document"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /data/export [get]
func (h *DataHandler) Export(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	data, err := h.data.Export(c.Request.Context())
	if err != nil {
		newCoreErrorResponse(c, err, "Export failed")
		return
	}

	filename := "ridewise-" + time.Now().UTC().Format("2006-01-02") + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(data))
}

// @Summary Import data
// @Description Replaces the whole document with an exported one. Older formats are migrated.
// @Tags data
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.Document true "Exported document"
// @Success 200 {object} successResponse "Data imported"
// @Failure 400 {object} errorResponse "Malformed document"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /data/import [post]
func (h *DataHandler) Import(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	body, err := c.GetRawData()
	if err != nil {
		h.logger.Error("Failed to read import body", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	doc, err := h.data.Import(c.Request.Context(), string(body))
	if err != nil {
		newCoreErrorResponse(c, err, "Import failed")
		return
	}

	newSuccessResponse(c, http.StatusOK, "Data imported successfully", doc)
}

// @Summary Reset data
// @Description Replaces everything with the sample garage
// @Tags data
// @Security BearerAuth
// @Produce json
// @Success 200 {object} successResponse "Data reset"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /data/reset [post]
func (h *DataHandler) Reset(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	doc, err := h.data.Reset(c.Request.Context())
	if err != nil {
		newCoreErrorResponse(c, err, "Reset failed")
		return
	}

	newSuccessResponse(c, http.StatusOK, "Data reset successfully", doc)
}

// @Summary Create backup
// @Description Uploads the current export to object storage
// @Tags data
// @Security BearerAuth
// @Produce json
// @Success 201 {object} successResponse "Backup created"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 503 {object} errorResponse "Backups not configured"
// @Router /data/backups [post]
func (h *DataHandler) Backup(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	key, err := h.data.Backup(c.Request.Context())
	if err != nil {
		newCoreErrorResponse(c, err, "Backup failed")
		return
	}

	newSuccessResponse(c, http.StatusCreated, "Backup created successfully", gin.H{"key": key})
}

// @Summary List backups
// @Tags data
// @Security BearerAuth
// @Produce json
// @Success 200 {object} BackupsResponse "Backup keys, oldest first"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 503 {object} errorResponse "Backups not configured"
// @Router /data/backups [get]
func (h *DataHandler) ListBackups(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	keys, err := h.data.ListBackups(c.Request.Context())
	if err != nil {
		newCoreErrorResponse(c, err, "Failed to list backups")
		return
	}
	if keys == nil {
		keys = []string{}
	}

	c.JSON(http.StatusOK, BackupsResponse{
		Keys:  keys,
		Count: len(keys),
	})
}

// @Summary Restore backup
// @Description Imports a stored backup. Without a key the newest one is used.
// @Tags data
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body RestoreRequest false "Backup key"
// @Success 200 {object} successResponse "Backup restored"
// @Failure 400 {object} errorResponse "Malformed backup"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Backup not found"
// @Failure 503 {object} errorResponse "Backups not configured"
// @Router /data/restore [post]
func (h *DataHandler) Restore(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req RestoreRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Error("Failed JSON parse in restore", map[string]interface{}{
				"error": err.Error(),
			})
			newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
			return
		}
	}

	doc, err := h.data.Restore(c.Request.Context(), req.Key)
	if err != nil {
		newCoreErrorResponse(c, err, "Restore failed")
		return
	}

	newSuccessResponse(c, http.StatusOK, "Backup restored successfully", doc)
}
