package service

import (
	"context"
	"errors"
	"strings"

	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
	"foodgram/internal/middleware/auth"
)

// reservedUsername collides with the /users/me/ route.
const reservedUsername = "me"

type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// UserProfile is a user as seen by a viewer.
type UserProfile struct {
	User         models.User
	IsSubscribed bool
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Get(ctx context.Context, viewerID, userID int64) (*UserProfile, error)
	List(ctx context.Context, viewerID int64, page, pageSize int) ([]UserProfile, int64, error)
	SetPassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
}

type userService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
}

func NewUserService(users repository.UserRepository, follows repository.FollowRepository) UserService {
	return &userService{users: users, follows: follows}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if strings.EqualFold(in.Username, reservedUsername) {
		return nil, fieldError("username", `username "me" is not allowed`)
	}

	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameInUse
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, viewerID, userID int64) (*UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	profiles, err := s.profiles(ctx, viewerID, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &profiles[0], nil
}

func (s *userService) List(ctx context.Context, viewerID int64, page, pageSize int) ([]UserProfile, int64, error) {
	users, total, err := s.users.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	profiles, err := s.profiles(ctx, viewerID, users)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// profiles annotates users with the viewer's subscription state.
func (s *userService) profiles(ctx context.Context, viewerID int64, users []models.User) ([]UserProfile, error) {
	return annotateUsers(ctx, s.follows, viewerID, users)
}

func annotateUsers(ctx context.Context, follows repository.FollowRepository, viewerID int64, users []models.User) ([]UserProfile, error) {
	followed := map[int64]bool{}
	if viewerID != 0 && len(users) > 0 {
		ids := make([]int64, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		var err error
		if followed, err = follows.FollowedAmong(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}

	out := make([]UserProfile, 0, len(users))
	for _, u := range users {
		out = append(out, UserProfile{User: u, IsSubscribed: followed[u.ID]})
	}
	return out, nil
}

func (s *userService) SetPassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := auth.VerifyPassword(user.Password, currentPassword); err != nil {
		return fieldError("current_password", "invalid password")
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hashed)
}
