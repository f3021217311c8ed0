package server

import (
	"context"
	"log/slog"
	"net/http"

	"recipeagent"

	"github.com/gin-gonic/gin"
)

const headerRecipeSource = "X-Recipe-Source"

type recipeService interface {
	ListRecipes(ctx context.Context, ingredients []string) (recipeagent.RecipeList, error)
	RecipeDetails(ctx context.Context, recipeID string, ingredients []string) (recipeagent.RecipeDetail, error)
	FallbackEnabled() bool
}

// Info is the static metadata reported by the root and health endpoints.
type Info struct {
	Name     string
	Version  string
	Backends []string
}

type HealthResponse struct {
	Status          string   `json:"status"`
	Message         string   `json:"message"`
	Backends        []string `json:"backends"`
	FallbackEnabled bool     `json:"fallback_enabled"`
}

type RootResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type handler struct {
	svc  recipeService
	info Info
}

func (h *handler) listRecipes(c *gin.Context) {
	var req recipeagent.IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	list, err := h.svc.ListRecipes(c.Request.Context(), req.Ingredients)
	if err != nil {
		h.fail(c, "Failed to generate recipes", err)
		return
	}

	recipeResponses.WithLabelValues("recipes", string(list.Source)).Inc()
	c.Header(headerRecipeSource, string(list.Source))
	c.JSON(http.StatusOK, list)
}

func (h *handler) recipeDetails(c *gin.Context) {
	var req recipeagent.RecipeDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	detail, err := h.svc.RecipeDetails(c.Request.Context(), req.RecipeID, req.Ingredients)
	if err != nil {
		h.fail(c, "Failed to generate recipe details", err)
		return
	}

	recipeResponses.WithLabelValues("details", string(detail.Source)).Inc()
	c.Header(headerRecipeSource, string(detail.Source))
	c.JSON(http.StatusOK, detail)
}

func (h *handler) fail(c *gin.Context, prefix string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("HTTP: recipe request failed", "path", c.FullPath(), "error", err,
			"request_id", c.GetString(ctxKeyRequestID))
		writeError(c, status, prefix+": "+err.Error())
		return
	}
	writeError(c, status, err.Error())
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:          "healthy",
		Message:         "Recipe Agent API is running",
		Backends:        h.info.Backends,
		FallbackEnabled: h.svc.FallbackEnabled(),
	})
}

func (h *handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, RootResponse{
		Name:    h.info.Name,
		Version: h.info.Version,
		Endpoints: map[string]string{
			"recipes": "POST /agent/recipes",
			"details": "POST /agent/recipe/details",
			"health":  "GET /health",
			"metrics": "GET /metrics",
		},
	})
}
