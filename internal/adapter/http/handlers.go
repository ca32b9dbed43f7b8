package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crisismap/crisis-data-api/internal/dataset"
	"github.com/crisismap/crisis-data-api/internal/domain"
)

type handler struct {
	provider dataset.Provider
	region   domain.Region
}

func newHandler(provider dataset.Provider, region domain.Region) *handler {
	return &handler{
		provider: provider,
		region:   region,
	}
}

func (h *handler) registerRoutes(r *gin.Engine) {
	r.GET("/api/casualties", h.getCasualties)
	r.GET("/api/infrastructure", h.getInfrastructure)
	r.GET("/api/displacement", h.getDisplacement)
	r.GET("/api/displacement-events", h.getDisplacementEvents)
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

// datasetResponse is the envelope for the three per-record datasets.
type datasetResponse struct {
	Success   bool                    `json:"success"`
	Data      any                     `json:"data"`
	Locations []domain.GeographicData `json:"locations"`
	Bounds    domain.Bounds           `json:"bounds"`
	Count     int                     `json:"count"`
}

// eventsResponse is the envelope for the displacement-events dataset.
type eventsResponse struct {
	Success        bool                       `json:"success"`
	Data           []domain.DisplacementEvent `json:"data"`
	GazaEvents     []domain.DisplacementEvent `json:"gaza_events"`
	WestBankEvents []domain.DisplacementEvent `json:"west_bank_events"`
	Summary        domain.Summary             `json:"summary"`
	Bounds         domain.Bounds              `json:"bounds"`
	Sources        []string                   `json:"sources"`
	EventTypes     []string                   `json:"event_types"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *handler) getCasualties(c *gin.Context) {
	records, err := h.provider.Casualties(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, datasetResponse{
		Success:   true,
		Data:      records,
		Locations: domain.UniqueLocations(records),
		Bounds:    domain.ComputeBounds(records, h.region),
		Count:     len(records),
	})
}

func (h *handler) getInfrastructure(c *gin.Context) {
	records, err := h.provider.Infrastructure(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, datasetResponse{
		Success:   true,
		Data:      records,
		Locations: domain.UniqueLocations(records),
		Bounds:    domain.ComputeBounds(records, h.region),
		Count:     len(records),
	})
}

func (h *handler) getDisplacement(c *gin.Context) {
	records, err := h.provider.Displacement(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, datasetResponse{
		Success:   true,
		Data:      records,
		Locations: domain.UniqueLocations(records),
		Bounds:    domain.ComputeBounds(records, h.region),
		Count:     len(records),
	})
}

func (h *handler) getDisplacementEvents(c *gin.Context) {
	events, err := h.provider.DisplacementEvents(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	valid := domain.ValidEvents(events, h.region)
	gaza, westBank := domain.PartitionEvents(valid, h.region)

	c.JSON(http.StatusOK, eventsResponse{
		Success:        true,
		Data:           valid,
		GazaEvents:     gaza,
		WestBankEvents: westBank,
		Summary:        domain.Summarize(valid, h.region),
		Bounds:         domain.ComputeBounds(valid, h.region),
		Sources:        domain.DistinctSources(valid),
		EventTypes:     domain.DistinctEventTypes(valid),
	})
}

// fail writes the uniform error envelope. The loader already logged the
// underlying cause; the response carries only the generic message.
func (h *handler) fail(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, errorResponse{
		Success: false,
		Error:   err.Error(),
	})
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *handler) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.provider.CheckReadiness(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
