// Package api assembles the gin router for the JSON API.
package api

import (
	"tax-credit-model/internal/api/handlers"
	"tax-credit-model/internal/api/middleware"
	"tax-credit-model/internal/config"
	"tax-credit-model/internal/grid"
	"tax-credit-model/internal/simulation"
	"tax-credit-model/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the handlers are built from.
type Deps struct {
	Config *config.Config
	Store  store.Store
	Grid   grid.Grid
	Engine *simulation.Engine
	Log    *logrus.Logger
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.ErrorHandler(d.Log))
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(d.Log))

	simulationHandler := handlers.NewSimulationHandler(d.Engine, d.Store, d.Grid, d.Config, d.Log)
	electrolyzerHandler := handlers.NewElectrolyzerHandler(d.Store, d.Config.ElectrolyzerDir, d.Log)
	generationHandler := handlers.NewGenerationHandler(d.Grid)

	router.GET("/health", handlers.Health(d.Config.Storage.Driver, d.Grid))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		limit := middleware.RateLimit(d.Config.Server.SimulateRPS, d.Config.Server.SimulateBurst)
		api.POST("/simulations", limit, simulationHandler.RunSimulation)
		api.GET("/simulations", simulationHandler.ListSimulations)
		api.GET("/simulations/rank", simulationHandler.RankSimulations)
		api.GET("/simulations/:id", simulationHandler.GetSimulation)
		api.GET("/simulations/:id/emissions", simulationHandler.GetEmissions)
		api.GET("/simulations/:id/hydrogen", simulationHandler.GetHydrogen)
		api.GET("/simulations/:id/energy-costs", simulationHandler.GetEnergyCosts)
		api.GET("/simulations/:id/histogram", simulationHandler.GetHistogram)
		api.GET("/simulations/:id/ledger", simulationHandler.GetLedger)

		api.POST("/electrolyzers", electrolyzerHandler.CreateElectrolyzer)
		api.GET("/electrolyzers", electrolyzerHandler.ListElectrolyzers)
		api.GET("/electrolyzers/presets", electrolyzerHandler.ListPresets)
		api.GET("/electrolyzers/:id", electrolyzerHandler.GetElectrolyzer)

		api.POST("/generations", generationHandler.AddGenerations)
		api.GET("/grid", generationHandler.GetGrid)
	}
	return router
}
