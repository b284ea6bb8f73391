package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"tax-credit-model/internal/api/models"
	"tax-credit-model/internal/config"
	"tax-credit-model/internal/model"
	"tax-credit-model/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ElectrolyzerHandler handles the electrolyzer registry and preset files
type ElectrolyzerHandler struct {
	store     store.ElectrolyzerStore
	presetDir string
	log       *logrus.Logger
}

// NewElectrolyzerHandler creates a new electrolyzer handler. A relative preset
// directory is resolved against the working directory.
func NewElectrolyzerHandler(s store.ElectrolyzerStore, presetDir string, log *logrus.Logger) *ElectrolyzerHandler {
	if abs, err := filepath.Abs(presetDir); err == nil {
		presetDir = abs
	}
	log.WithField("dir", presetDir).Info("electrolyzer presets")
	return &ElectrolyzerHandler{store: s, presetDir: presetDir, log: log}
}

// PresetDir returns the resolved preset directory
func (h *ElectrolyzerHandler) PresetDir() string {
	return h.presetDir
}

// CreateElectrolyzer handles POST /api/v1/electrolyzers
func (h *ElectrolyzerHandler) CreateElectrolyzer(c *gin.Context) {
	var req models.CreateElectrolyzerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	cfg := req.Electrolyzer
	if req.Preset != "" {
		p, err := config.FindPreset(h.presetDir, req.Preset)
		if err != nil {
			respondError(c, err)
			return
		}
		base := config.FromModel(p.Electrolyzer)
		// a registered copy gets its own id unless the request names one
		base.ID = ""
		cfg = config.MergeElectrolyzer(base, cfg)
	}

	e := cfg.ToModel()
	if err := e.Validate(); err != nil {
		respondError(c, fmt.Errorf("electrolyzer: %v: %w", err, model.ErrInvalidArgument))
		return
	}
	created, err := h.store.CreateElectrolyzer(c.Request.Context(), e)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListElectrolyzers handles GET /api/v1/electrolyzers
func (h *ElectrolyzerHandler) ListElectrolyzers(c *gin.Context) {
	list, err := h.store.ListElectrolyzers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []model.Electrolyzer{}
	}
	c.JSON(http.StatusOK, models.ElectrolyzerListResponse{Electrolyzers: list})
}

// GetElectrolyzer handles GET /api/v1/electrolyzers/:id
func (h *ElectrolyzerHandler) GetElectrolyzer(c *gin.Context) {
	e, err := h.store.GetElectrolyzer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// ListPresets handles GET /api/v1/electrolyzers/presets
func (h *ElectrolyzerHandler) ListPresets(c *gin.Context) {
	resp := models.PresetListResponse{Dir: h.presetDir, Presets: []config.Preset{}}

	presets, skipped, err := config.ListPresets(h.presetDir)
	if err != nil {
		// a missing directory just means no presets
		if !os.IsNotExist(err) {
			h.log.WithError(err).WithField("dir", h.presetDir).Warn("failed to read preset directory")
		}
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Presets = presets
	if len(skipped) > 0 {
		resp.Skipped = make(map[string]string, len(skipped))
		for name, err := range skipped {
			h.log.WithError(err).WithField("file", name).Warn("skipping preset")
			resp.Skipped[name] = err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}
