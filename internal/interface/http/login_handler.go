package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/blogilista/internal/application"
	"github.com/oksasatya/blogilista/pkg/response"
)

type LoginHandler struct {
	Svc *application.UserService
}

func NewLoginHandler(svc *application.UserService) *LoginHandler {
	return &LoginHandler{Svc: svc}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Login POST /api/login
func (h *LoginHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, loginResponse{Token: res.Token, Username: res.Username, Name: res.Name})
}
