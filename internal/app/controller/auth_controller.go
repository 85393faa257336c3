package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/internal/app/service"
	"github.com/ikkim/minishop-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type LoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// Login exchanges a mini-program login code for a session token
// POST /api/v1/user/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "login")
		return
	}

	result, err := ctrl.authService.Login(c.Request.Context(), req.Code)
	if err != nil {
		respondServiceError(c, err, "login")
		return
	}

	log.Info("User logged in", map[string]interface{}{
		"user_id": result.User.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

// Logout ends the current session
// POST /api/v1/user/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), userID); err != nil {
		respondServiceError(c, err, "logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
