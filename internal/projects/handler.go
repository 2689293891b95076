package projects

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"voluma/capture-portal/capture-portal-backend/internal/auth"
	"voluma/capture-portal/capture-portal-backend/pkg/lifecycle"
)

// Handler handles HTTP requests for project lifecycle operations
type Handler struct {
	service ProjectService
	logger  *zap.Logger
}

// NewHandler creates a new projects handler
func NewHandler(service ProjectService, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers project routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.POST("", h.createProject)
		projects.GET("", h.listProjects)
		projects.GET("/:id", h.getProject)
		projects.POST("/:id/transition", h.transitionProject)
		projects.GET("/:id/next-states", h.getNextStates)
		projects.GET("/:id/history", h.getHistory)
	}

	lc := router.Group("/lifecycle")
	{
		lc.GET("/happy-path", h.getHappyPath)
		lc.GET("/transitions/:from/:to", h.getTransitionInfo)
	}
}

func (h *Handler) createProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, ok := auth.ActorFrom(c)
	if ok && req.OwnerID == uuid.Nil {
		req.OwnerID = actor.UserID
	}

	project, err := h.service.CreateProject(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *Handler) listProjects(c *gin.Context) {
	var filter ProjectFilter
	if raw := c.Query("status"); raw != "" {
		status, err := lifecycle.ParseState(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("owner_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner_id"})
			return
		}
		filter.OwnerID = &ownerID
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}

	list, err := h.service.ListProjects(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

func (h *Handler) getProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	project, err := h.service.GetProject(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

type transitionBody struct {
	Target string `json:"target" binding:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) transitionProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	actor, ok := auth.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var body transitionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := lifecycle.ParseState(body.Target)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Transition(c.Request.Context(), TransitionRequest{
		ProjectID: id,
		Target:    target,
		UserID:    actor.UserID,
		Role:      actor.Role,
		Reason:    body.Reason,
	})
	if err != nil {
		if errors.Is(err, ErrStatusConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "project was modified concurrently, retry"})
			return
		}
		h.logger.Error("transition failed",
			zap.String("project_id", id.String()),
			zap.String("target", string(target)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transition failed"})
		return
	}

	if !result.Decision.Valid {
		c.JSON(http.StatusConflict, gin.H{"error": result.Decision.Error})
		return
	}

	resp := gin.H{
		"project":   result.Project,
		"committed": result.Committed,
	}
	if result.Decision.Rule != nil {
		resp["requires_approval"] = result.Decision.Rule.RequiresApproval
		resp["description"] = result.Decision.Rule.Description
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getNextStates(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	actor, ok := auth.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	states, err := h.service.NextStates(c.Request.Context(), id, actor.Role)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if states == nil {
		states = []lifecycle.ProjectState{}
	}
	c.JSON(http.StatusOK, gin.H{"next_states": states})
}

func (h *Handler) getHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	events, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to load project history", zap.String("project_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) getHappyPath(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"states": lifecycle.HappyPath()})
}

func (h *Handler) getTransitionInfo(c *gin.Context) {
	from, err := lifecycle.ParseState(c.Param("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := lifecycle.ParseState(c.Param("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"description":       lifecycle.Description(from, to),
		"requires_approval": lifecycle.RequiresApproval(from, to),
	})
}
