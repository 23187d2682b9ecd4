package onboarding

import (
	"errors"
	"net/http"

	"cattlesense/internal/user"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	machine *Machine
}

func NewHandler(machine *Machine) *Handler {
	return &Handler{machine: machine}
}

// RegisterRoutes mounts the onboarding API under an authenticated group.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/onboarding/status", h.status)
	r.POST("/onboarding/basic", h.submitBasic)
	r.POST("/onboarding/researcher", h.submitResearcher)
}

func statusBody(st Status) gin.H {
	return gin.H{
		"role":                st.Role,
		"onboarding_step":     st.Step,
		"is_profile_complete": st.Complete,
		"state":               st.State.String(),
	}
}

func (h *Handler) status(c *gin.Context) {
	st, err := h.machine.Status(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load onboarding status"})
		return
	}
	c.JSON(http.StatusOK, statusBody(st))
}

type basicInfoRequest struct {
	Role  user.Role `json:"role" binding:"required"`
	Phone string    `json:"phone"`
}

func (h *Handler) submitBasic(c *gin.Context) {
	var req basicInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	st, err := h.machine.SubmitBasicInfo(c.Request.Context(), c.GetString("userID"), req.Role, req.Phone)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, statusBody(st))
	case errors.Is(err, ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
	case errors.Is(err, ErrWrongState):
		c.JSON(http.StatusConflict, gin.H{"error": "basic info already submitted"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
	}
}

type researcherDetailsRequest struct {
	InstitutionName string `json:"institution_name" binding:"required"`
	InstitutionType string `json:"institution_type"`
	RoleDesignation string `json:"role_designation"`
	ProjectName     string `json:"project_name"`
	ResearchArea    string `json:"research_area"`
}

func (h *Handler) submitResearcher(c *gin.Context) {
	var req researcherDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.InstitutionType == "" {
		req.InstitutionType = "university"
	}

	st, err := h.machine.SubmitRoleDetails(c.Request.Context(), c.GetString("userID"), ResearcherDetails{
		InstitutionName: req.InstitutionName,
		InstitutionType: req.InstitutionType,
		RoleDesignation: req.RoleDesignation,
		ProjectName:     req.ProjectName,
		ResearchArea:    req.ResearchArea,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, statusBody(st))
	case errors.Is(err, ErrWrongState):
		c.JSON(http.StatusConflict, gin.H{"error": "role details not expected in current step"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save researcher profile"})
	}
}
