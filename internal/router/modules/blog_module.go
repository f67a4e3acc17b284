package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/blogilista/internal/interface/http"
	"github.com/oksasatya/blogilista/internal/interface/middleware"
)

// BlogModule wires the blog routes.
// Public: GET /api/blogs, /blogs/:id, /blogs/stats, /blogs/search; PUT and DELETE /blogs/:id
// Bearer token: POST /api/blogs
type BlogModule struct {
	Handler *handlers.BlogHandler
	Tokens  middleware.TokenVerifier
	Limiter *middleware.RateLimiter
}

func NewBlogModule(h *handlers.BlogHandler, tokens middleware.TokenVerifier, limiter *middleware.RateLimiter) *BlogModule {
	return &BlogModule{Handler: h, Tokens: tokens, Limiter: limiter}
}

func (m *BlogModule) Register(rg *gin.RouterGroup) {
	blogs := rg.Group("/blogs")
	blogs.GET("", m.Handler.List)
	blogs.POST("", m.Limiter.Handler(), middleware.Auth(m.Tokens), m.Handler.Create)
	blogs.GET("/stats", m.Handler.Stats)
	blogs.GET("/search", m.Handler.Search)
	blogs.GET("/:id", m.Handler.Get)
	blogs.PUT("/:id", m.Handler.Update)
	blogs.DELETE("/:id", m.Handler.Delete)
}
