package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/blogilista/internal/application"
	"github.com/oksasatya/blogilista/pkg/response"
)

type UserHandler struct {
	Svc *application.UserService
}

func NewUserHandler(svc *application.UserService) *UserHandler {
	return &UserHandler{Svc: svc}
}

// Password length and username presence are checked by UserService.Register.
type registerRequest struct {
	Username string `json:"username" binding:"username"`
	Password string `json:"password"`
	Name     string `json:"name" binding:"max=128"`
	Adult    *bool  `json:"adult"`
}

// Register POST /api/users
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Adult:    req.Adult,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, toUserView(*u, nil))
}

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, toUserView(u.User, u.Blogs))
	}
	response.JSON(c, http.StatusOK, out)
}
