package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/appdotbuilder/octa-focus/model"
	"github.com/appdotbuilder/octa-focus/repository"
	"github.com/appdotbuilder/octa-focus/services"
	"github.com/appdotbuilder/octa-focus/utils"

	"github.com/google/uuid"
)

type UserService struct {
	UsersRepo *repository.UsersRepo
}

func NewUserService(repo *repository.UsersRepo) *UserService {
	return &UserService{UsersRepo: repo}
}

func (svc *UserService) CreateUser(ctx context.Context, user *model.User) error {
	if !utils.ValidatePassword(user.Password) {
		return errors.New("password must be at least 6 characters and contain a number and a special character")
	}

	hashed, err := services.HashPassword(user.Password)
	if err != nil {
		return err
	}

	now := time.Now()
	user.UserID = uuid.New().String()
	user.Password = hashed
	user.CreatedAt = now
	user.UpdatedAt = now

	return svc.UsersRepo.AddUser(ctx, user)
}

// Authenticate verifies credentials and returns the user on success.
func (svc *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := svc.UsersRepo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("invalid credentials")
	}

	ok, err := services.VerifyPassword(password, user.Password)
	if err != nil || !ok {
		return nil, errors.New("invalid credentials")
	}
	return user, nil
}
