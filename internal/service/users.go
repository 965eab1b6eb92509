package service

import (
	"context"
	"errors"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles sign-up and sign-in. It is a collaborator of the
// commerce core, which only ever references users by their username.
type UserService struct {
	store  UserStore
	logger *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(store UserStore) *UserService {
	return &UserService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// SignUp registers a new user with an empty cart. The checks run in a
// fixed order and the first failing one wins: username present, username
// free, password present, email present, email free.
func (s *UserService) SignUp(ctx context.Context, username, password, email string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.SignUp")
	defer span.End()

	if username == "" {
		return nil, models.Validationf("username", "Username not provided")
	}
	if _, err := s.store.GetUser(ctx, username); err == nil {
		return nil, models.Validationf("username", "Username already being used")
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}
	if password == "" {
		return nil, models.Validationf("password", "Password not provided")
	}
	if email == "" {
		return nil, models.Validationf("email", "Email not provided")
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, models.Validationf("email", "Email already registered")
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Cart:         []string{},
	}
	if err := s.store.InsertUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("username", username))
	return s.Get(ctx, username)
}

// SignIn verifies a user's credentials. Fails with ErrUserNotFound or
// ErrBadCredentials; the two are distinct on purpose.
func (s *UserService) SignIn(ctx context.Context, username, password string) error {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.ErrBadCredentials
	}
	return nil
}

// Get retrieves a user by username with the credential hash stripped.
func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
