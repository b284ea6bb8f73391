package handlers

import (
	"fmt"
	"net/http"

	"tax-credit-model/internal/analysis"
	"tax-credit-model/internal/api/models"
	"tax-credit-model/internal/config"
	"tax-credit-model/internal/grid"
	"tax-credit-model/internal/model"
	"tax-credit-model/internal/simulation"
	"tax-credit-model/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SimulationHandler handles simulation runs and their results
type SimulationHandler struct {
	engine *simulation.Engine
	store  store.Store
	grid   grid.Reader
	log    *logrus.Logger

	presetDir           string
	defaultRange        config.SimulationConfig
	defaultElectrolyzer config.ElectrolyzerConfig
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(engine *simulation.Engine, s store.Store, g grid.Reader, cfg *config.Config, log *logrus.Logger) *SimulationHandler {
	return &SimulationHandler{
		engine:              engine,
		store:               s,
		grid:                g,
		log:                 log,
		presetDir:           cfg.ElectrolyzerDir,
		defaultRange:        cfg.Simulation,
		defaultElectrolyzer: cfg.Electrolyzer,
	}
}

// RunSimulation handles POST /api/v1/simulations
func (h *SimulationHandler) RunSimulation(c *gin.Context) {
	var req models.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	electrolyzer, err := h.resolveElectrolyzer(c, req)
	if err != nil {
		respondError(c, err)
		return
	}

	dtr := h.defaultRange.Range()
	if req.Start != "" {
		dtr.Start = req.Start
	}
	if req.End != "" {
		dtr.End = req.End
	}

	pg, err := h.grid.GetPowerGrid(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.engine.Simulate(ctx, req.SimulationID, pg, electrolyzer, dtr)
	if err != nil {
		respondError(c, err)
		return
	}

	st, err := h.store.GetSimulationState(ctx, res.SimulationID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := models.SimulationResponse{
		Status: "completed",
		Result: res,
		Stats:  analysis.ComputeStats(st),
	}
	if req.IncludeLedger {
		resp.Ledger = models.NewLedger(simulation.BuildLedger(st))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SimulationHandler) resolveElectrolyzer(c *gin.Context, req models.SimulationRequest) (*model.Electrolyzer, error) {
	var base config.ElectrolyzerConfig
	switch {
	case req.ElectrolyzerID != "":
		e, err := h.store.GetElectrolyzer(c.Request.Context(), req.ElectrolyzerID)
		if err != nil {
			return nil, err
		}
		base = config.FromModel(*e)
	case req.Preset != "":
		p, err := config.FindPreset(h.presetDir, req.Preset)
		if err != nil {
			return nil, err
		}
		base = config.FromModel(p.Electrolyzer)
	case req.Electrolyzer == nil:
		if h.defaultElectrolyzer.IsZero() {
			return nil, fmt.Errorf("one of electrolyzer_id, preset or electrolyzer is required: %w", model.ErrInvalidArgument)
		}
		base = h.defaultElectrolyzer
	}
	if req.Electrolyzer != nil {
		base = config.MergeElectrolyzer(base, *req.Electrolyzer)
	}

	e := base.ToModel()
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("electrolyzer: %v: %w", err, model.ErrInvalidArgument)
	}
	return &e, nil
}

// ListSimulations handles GET /api/v1/simulations
func (h *SimulationHandler) ListSimulations(c *gin.Context) {
	runs, err := h.store.ListSimulationStates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if runs == nil {
		runs = []model.SimulationSummary{}
	}
	c.JSON(http.StatusOK, models.SimulationListResponse{Simulations: runs})
}

// GetSimulation handles GET /api/v1/simulations/:id
func (h *SimulationHandler) GetSimulation(c *gin.Context) {
	st, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, st)
}

// GetEmissions handles GET /api/v1/simulations/:id/emissions
func (h *SimulationHandler) GetEmissions(c *gin.Context) {
	if st, ok := h.load(c); ok {
		c.JSON(http.StatusOK, analysis.EmissionSeries(st))
	}
}

// GetHydrogen handles GET /api/v1/simulations/:id/hydrogen
func (h *SimulationHandler) GetHydrogen(c *gin.Context) {
	if st, ok := h.load(c); ok {
		c.JSON(http.StatusOK, analysis.HydrogenSeries(st))
	}
}

// GetEnergyCosts handles GET /api/v1/simulations/:id/energy-costs
func (h *SimulationHandler) GetEnergyCosts(c *gin.Context) {
	if st, ok := h.load(c); ok {
		c.JSON(http.StatusOK, analysis.EnergyCostSeries(st.Transactions))
	}
}

// GetHistogram handles GET /api/v1/simulations/:id/histogram
func (h *SimulationHandler) GetHistogram(c *gin.Context) {
	if st, ok := h.load(c); ok {
		c.JSON(http.StatusOK, analysis.TierHistogram(st.Summary))
	}
}

// GetLedger handles GET /api/v1/simulations/:id/ledger
func (h *SimulationHandler) GetLedger(c *gin.Context) {
	if st, ok := h.load(c); ok {
		c.JSON(http.StatusOK, gin.H{"ledger": models.NewLedger(simulation.BuildLedger(st))})
	}
}

func (h *SimulationHandler) load(c *gin.Context) (*model.SimulationState, bool) {
	st, err := h.store.GetSimulationState(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return st, true
}
