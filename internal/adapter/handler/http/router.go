package http

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/sm8ta/ridewise/internal/config"
	"github.com/sm8ta/ridewise/internal/core/ports"
)

type Router struct {
	router *gin.Engine
}

func NewRouter(
	cfg *config.HTTP,
	tokenService ports.TokenService,
	metrics ports.MetricsPort,
	bikeHandler *BikeHandler,
	serviceHandler *ServiceHandler,
	dataHandler *DataHandler,
	lookupHandler *LookupHandler,
) (*Router, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(cfg.AllowedOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("")
	api.Use(AuthMiddleware(tokenService))

	// Bikes routes
	bikes := api.Group("/bikes")
	{
		bikes.GET("", bikeHandler.ListBikes)
		bikes.GET("/:id", bikeHandler.GetBike)
		bikes.POST("", RequireOwner(), bikeHandler.CreateBike)
		bikes.PUT("/:id", RequireOwner(), bikeHandler.UpdateBike)
	}

	// Services routes
	serviceLog := api.Group("/services")
	{
		serviceLog.GET("", serviceHandler.ListServices)
		serviceLog.GET("/:id", serviceHandler.GetService)
		serviceLog.POST("", RequireOwner(), serviceHandler.CreateService)
		serviceLog.PUT("/:id", RequireOwner(), serviceHandler.UpdateService)
		serviceLog.DELETE("/:id", RequireOwner(), serviceHandler.DeleteService)
	}

	// Stats and preferences
	api.GET("/stats", dataHandler.Dashboard)
	api.GET("/preferences", dataHandler.GetPreferences)
	api.PUT("/preferences", RequireOwner(), dataHandler.UpdatePreferences)

	// Data routes
	data := api.Group("/data")
	{
		data.GET("/export", dataHandler.Export)
		data.GET("/backups", dataHandler.ListBackups)
		data.POST("/import", RequireOwner(), dataHandler.Import)
		data.POST("/reset", RequireOwner(), dataHandler.Reset)
		data.POST("/backups", RequireOwner(), dataHandler.Backup)
		data.POST("/restore", RequireOwner(), dataHandler.Restore)
	}

	// Lookup routes
	api.GET("/service-types", lookupHandler.ServiceTypes)
	api.GET("/vin/:vin", lookupHandler.DecodeVIN)
	api.GET("/makes", lookupHandler.MakesForYear)

	return &Router{router: router}, nil
}

func allowedOrigins(value string) []string {
	var origins []string
	for _, origin := range strings.Split(value, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"http://localhost:5173"}
	}
	return origins
}

func (r *Router) Serve(addr string) error {
	return r.router.Run(addr)
}

func (r *Router) Engine() *gin.Engine {
	return r.router
}
