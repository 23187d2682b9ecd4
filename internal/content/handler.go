package content

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterPublicRoutes mounts the read-only site content endpoints.
func (h *Handler) RegisterPublicRoutes(r gin.IRoutes) {
	r.GET("/blog", h.listPublishedPosts)
	r.GET("/blog/:id", h.getPost)
	r.GET("/jobs", h.listOpenJobs)
}

// RegisterUserRoutes mounts endpoints available to any signed-in user.
func (h *Handler) RegisterUserRoutes(r gin.IRoutes) {
	r.POST("/support/tickets", h.createTicket)
}

// RegisterAdminRoutes mounts the content console. Callers must wrap the
// group with the admin role check.
func (h *Handler) RegisterAdminRoutes(r gin.IRoutes) {
	r.GET("/tickets", h.listTickets)
	r.PATCH("/tickets/:id", h.updateTicketStatus)

	r.GET("/posts", h.listAllPosts)
	r.POST("/posts", h.createPost)
	r.PUT("/posts/:id", h.updatePost)
	r.DELETE("/posts/:id", h.deletePost)

	r.GET("/jobs", h.listAllJobs)
	r.POST("/jobs", h.createJob)
	r.PUT("/jobs/:id", h.updateJob)
	r.DELETE("/jobs/:id", h.deleteJob)
}

func (h *Handler) listPublishedPosts(c *gin.Context) {
	posts, err := h.store.ListPosts(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": postBodies(posts)})
}

func (h *Handler) getPost(c *gin.Context) {
	p, err := h.store.GetPost(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil && p.Published:
		c.JSON(http.StatusOK, postBody(*p))
	case err == nil, errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load post"})
	}
}

func (h *Handler) listOpenJobs(c *gin.Context) {
	jobs, err := h.store.ListJobs(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobBodies(jobs)})
}

type ticketRequest struct {
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func (h *Handler) createTicket(c *gin.Context) {
	var req ticketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject and message are required"})
		return
	}

	t := Ticket{
		UserID:  c.GetString("userID"),
		Subject: req.Subject,
		Message: req.Message,
		Status:  TicketOpen,
	}
	if err := h.store.CreateTicket(c.Request.Context(), &t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create ticket"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     t.ID,
		"status": t.Status,
	})
}

func (h *Handler) listTickets(c *gin.Context) {
	tickets, err := h.store.ListTickets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tickets"})
		return
	}

	out := make([]gin.H, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, gin.H{
			"id":         t.ID,
			"user_id":    t.UserID,
			"subject":    t.Subject,
			"message":    t.Message,
			"status":     t.Status,
			"created_at": t.CreatedAt,
			"updated_at": t.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tickets": out})
}

type ticketStatusRequest struct {
	Status TicketStatus `json:"status" binding:"required"`
}

func (h *Handler) updateTicketStatus(c *gin.Context) {
	var req ticketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	err := h.store.UpdateTicketStatus(c.Request.Context(), c.Param("id"), req.Status)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update ticket"})
	}
}

type postRequest struct {
	Title     string `json:"title" binding:"required"`
	Author    string `json:"author"`
	Body      string `json:"body" binding:"required"`
	Published bool   `json:"published"`
}

func (h *Handler) listAllPosts(c *gin.Context) {
	posts, err := h.store.ListPosts(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": postBodies(posts)})
}

func (h *Handler) createPost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and body are required"})
		return
	}

	p := Post{Title: req.Title, Author: req.Author, Body: req.Body, Published: req.Published}
	if err := h.store.CreatePost(c.Request.Context(), &p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
		return
	}
	c.JSON(http.StatusCreated, postBody(p))
}

func (h *Handler) updatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and body are required"})
		return
	}

	p := Post{ID: c.Param("id"), Title: req.Title, Author: req.Author, Body: req.Body, Published: req.Published}
	err := h.store.UpdatePost(c.Request.Context(), &p)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update post"})
	}
}

func (h *Handler) deletePost(c *gin.Context) {
	err := h.store.DeletePost(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete post"})
	}
}

type jobRequest struct {
	Title       string `json:"title" binding:"required"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Open        bool   `json:"open"`
}

func (h *Handler) listAllJobs(c *gin.Context) {
	jobs, err := h.store.ListJobs(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobBodies(jobs)})
}

func (h *Handler) createJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	j := Job{Title: req.Title, Location: req.Location, Description: req.Description, Open: req.Open}
	if err := h.store.CreateJob(c.Request.Context(), &j); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}
	c.JSON(http.StatusCreated, jobBody(j))
}

func (h *Handler) updateJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	j := Job{ID: c.Param("id"), Title: req.Title, Location: req.Location, Description: req.Description, Open: req.Open}
	err := h.store.UpdateJob(c.Request.Context(), &j)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update job"})
	}
}

func (h *Handler) deleteJob(c *gin.Context) {
	err := h.store.DeleteJob(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete job"})
	}
}

func postBody(p Post) gin.H {
	return gin.H{
		"id":         p.ID,
		"title":      p.Title,
		"author":     p.Author,
		"body":       p.Body,
		"published":  p.Published,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}

func postBodies(posts []Post) []gin.H {
	out := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		out = append(out, postBody(p))
	}
	return out
}

func jobBody(j Job) gin.H {
	return gin.H{
		"id":          j.ID,
		"title":       j.Title,
		"location":    j.Location,
		"description": j.Description,
		"open":        j.Open,
		"created_at":  j.CreatedAt,
		"updated_at":  j.UpdatedAt,
	}
}

func jobBodies(jobs []Job) []gin.H {
	out := make([]gin.H, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, jobBody(j))
	}
	return out
}
