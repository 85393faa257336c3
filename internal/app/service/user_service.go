package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/internal/storage"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrUploadFailed    = errors.New("upload failed")
	ErrInvalidFileType = errors.New("file type not allowed")
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidBirthday = errors.New("invalid birthday")
)

// BlobStore stores bytes under a key and returns their public URL
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// UpdateProfileInput holds optional profile fields; nil leaves a field unchanged
type UpdateProfileInput struct {
	Nickname   *string
	Mobile     *string
	Gender     *model.Gender
	Birthday   *string // YYYY-MM-DD, empty clears it
	Profession *string
}

type UserService interface {
	GetProfile(userID uint) (*model.User, error)
	UpdateProfile(userID uint, input UpdateProfileInput) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID uint, filename, contentType string, size int64, body io.Reader) (string, error)
}

type userService struct {
	userRepo     repository.UserRepository
	blobs        BlobStore
	avatarFolder string
}

func NewUserService(userRepo repository.UserRepository, blobs BlobStore, avatarFolder string) UserService {
	return &userService{
		userRepo:     userRepo,
		blobs:        blobs,
		avatarFolder: avatarFolder,
	}
}

func (s *userService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(userID uint, input UpdateProfileInput) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if input.Nickname != nil {
		user.Nickname = *input.Nickname
	}
	if input.Mobile != nil {
		user.Mobile = *input.Mobile
	}
	if input.Gender != nil {
		user.Gender = *input.Gender
	}
	if input.Profession != nil {
		user.Profession = *input.Profession
	}
	if input.Birthday != nil {
		if *input.Birthday == "" {
			user.Birthday = nil
		} else {
			birthday, err := time.Parse("2006-01-02", *input.Birthday)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidBirthday, *input.Birthday)
			}
			user.Birthday = &birthday
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("User profile updated", map[string]interface{}{
		"user_id": userID,
	})
	return user, nil
}

// UpdateAvatar uploads the image under a fresh unique key and points the user at it
func (s *userService) UpdateAvatar(ctx context.Context, userID uint, filename, contentType string, size int64, body io.Reader) (string, error) {
	if err := storage.ValidateContentType(contentType, storage.AllowedImageTypes); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidFileType, contentType)
	}
	if err := storage.ValidateFileSize(size, storage.MaxAvatarSize); err != nil {
		return "", ErrFileTooLarge
	}

	if _, err := s.GetProfile(userID); err != nil {
		return "", err
	}

	key := storage.ObjectKey(s.avatarFolder, filename)
	url, err := s.blobs.Upload(ctx, key, contentType, body)
	if err != nil {
		logger.Error("Avatar upload failed", err, map[string]interface{}{
			"user_id": userID,
			"key":     key,
		})
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if err := s.userRepo.UpdateAvatar(userID, url); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	logger.Info("User avatar updated", map[string]interface{}{
		"user_id": userID,
		"url":     url,
	})
	return url, nil
}
