package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/service"
	apperrors "github.com/ikkim/minishop-backend/internal/errors"
	"github.com/ikkim/minishop-backend/internal/middleware"
)

const avatarFormField = "file"

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

type UpdateProfileRequest struct {
	Nickname   *string `json:"nickname" binding:"omitempty,max=64"`
	Mobile     *string `json:"mobile" binding:"omitempty,max=30"`
	Gender     *int    `json:"gender" binding:"omitempty,oneof=0 1 2"`
	Birthday   *string `json:"birthday"`
	Profession *string `json:"profession" binding:"omitempty,max=64"`
}

// GetProfile returns the current user
// GET /api/v1/user/profile
func (ctrl *UserController) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := ctrl.userService.GetProfile(userID)
	if err != nil {
		respondServiceError(c, err, "get user profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// UpdateProfile changes the supplied fields only
// PUT /api/v1/user/profile
func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "update user profile")
		return
	}

	input := service.UpdateProfileInput{
		Nickname:   req.Nickname,
		Mobile:     req.Mobile,
		Birthday:   req.Birthday,
		Profession: req.Profession,
	}
	if req.Gender != nil {
		g := model.Gender(*req.Gender)
		input.Gender = &g
	}

	user, err := ctrl.userService.UpdateProfile(userID, input)
	if err != nil {
		respondServiceError(c, err, "update user profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// UploadAvatar stores a multipart image and sets it as the avatar
// POST /api/v1/user/avatar
func (ctrl *UserController) UploadAvatar(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	header, err := c.FormFile(avatarFormField)
	if err != nil {
		log.Warn("Avatar upload without file", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "file is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		respondServiceError(c, err, "open avatar upload")
		return
	}
	defer file.Close()

	url, err := ctrl.userService.UpdateAvatar(
		c.Request.Context(),
		userID,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
	)
	if err != nil {
		respondServiceError(c, err, "update user avatar")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"avatar": url,
	})
}
