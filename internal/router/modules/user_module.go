package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/blogilista/internal/interface/http"
	"github.com/oksasatya/blogilista/internal/interface/middleware"
)

// UserModule wires registration, listing and login.
// Public: GET /api/users, POST /api/users, POST /api/login
type UserModule struct {
	Users   *handlers.UserHandler
	Login   *handlers.LoginHandler
	Limiter *middleware.RateLimiter
}

func NewUserModule(users *handlers.UserHandler, login *handlers.LoginHandler, limiter *middleware.RateLimiter) *UserModule {
	return &UserModule{Users: users, Login: login, Limiter: limiter}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/users", m.Users.List)
	rg.POST("/users", m.Limiter.Handler(), m.Users.Register)
	rg.POST("/login", m.Limiter.Handler(), m.Login.Login)
}
