package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/blogilista/internal/application"
	"github.com/oksasatya/blogilista/internal/domain/entity"
	"github.com/oksasatya/blogilista/internal/interface/middleware"
	"github.com/oksasatya/blogilista/pkg/response"
)

type BlogHandler struct {
	Svc *application.BlogService
}

func NewBlogHandler(svc *application.BlogService) *BlogHandler {
	return &BlogHandler{Svc: svc}
}

// blogRequest is shared by create and update; absent fields stay nil.
type blogRequest struct {
	Title  *string `json:"title" binding:"blogtext"`
	Author *string `json:"author" binding:"blogtext"`
	URL    *string `json:"url" binding:"blogtext"`
	Likes  *int    `json:"likes" binding:"likes"`
}

type statsResponse struct {
	TotalLikes int           `json:"total_likes"`
	Favourite  *userBlogView `json:"favourite"`
}

// List GET /api/blogs
func (h *BlogHandler) List(c *gin.Context) {
	blogs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toBlogViews(blogs))
}

// Create POST /api/blogs (bearer token required)
func (h *BlogHandler) Create(c *gin.Context) {
	var req blogRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), application.CreateBlogInput{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, toBlogView(*b))
}

// Get GET /api/blogs/:id
func (h *BlogHandler) Get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toBlogView(*b))
}

// Update PUT /api/blogs/:id
func (h *BlogHandler) Update(c *gin.Context) {
	var req blogRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := entity.BlogPatch{Title: req.Title, Author: req.Author, URL: req.URL, Likes: req.Likes}
	if err := h.Svc.Update(c.Request.Context(), c.Param("id"), patch); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Delete DELETE /api/blogs/:id
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Stats GET /api/blogs/stats
func (h *BlogHandler) Stats(c *gin.Context) {
	st, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := statsResponse{TotalLikes: st.TotalLikes}
	if f := st.Favourite; f != nil {
		out.Favourite = &userBlogView{ID: f.ID, Title: f.Title, Author: f.Author, URL: f.URL, Likes: f.Likes}
	}
	response.JSON(c, http.StatusOK, out)
}

// Search GET /api/blogs/search?q=&size=
func (h *BlogHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	blogs, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toBlogViews(blogs))
}
