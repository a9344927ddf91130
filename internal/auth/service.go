package auth

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/citypulse/citypulse/internal/apperr"
)

// Service implements account registration, login and admin user management.
type Service struct {
	repo     Repository
	jwt      *JWTService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(repo Repository, jwtService *JWTService, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		jwt:      jwtService,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates an account, using the default role when the request
// names none. Password cost follows the bcrypt default.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return UserResponse{}, apperr.Validation(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, apperr.Internalf("hashing password: %v", err)
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}

	user, err := s.repo.CreateUser(ctx, req.Username, req.Email, string(hash), role)
	if errors.Is(err, ErrUserExists) {
		return UserResponse{}, apperr.Validation("Username or email already exists")
	}
	if err != nil {
		return UserResponse{}, apperr.Database(err)
	}

	s.logger.Info().Str("username", user.Username).Msg("user registered")
	return user.Public(), nil
}

// Login verifies credentials and issues a token carrying the role's
// permissions. Unknown users and bad passwords get the same answer.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return LoginResponse{}, apperr.Validation(err.Error())
	}

	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, ErrUserNotFound) {
		return LoginResponse{}, apperr.Auth("Invalid username or password")
	}
	if err != nil {
		return LoginResponse{}, apperr.Database(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return LoginResponse{}, apperr.Auth("Invalid username or password")
	}

	permissions, err := s.repo.PermissionsForRole(ctx, user.Role)
	if err != nil {
		return LoginResponse{}, apperr.Database(err)
	}

	token, err := s.jwt.GenerateToken(user, permissions)
	if err != nil {
		return LoginResponse{}, err
	}

	s.logger.Info().Str("username", user.Username).Str("role", user.Role).Msg("user logged in")
	return LoginResponse{Token: token, User: user.Public()}, nil
}

// ListUsers returns every account. Callers gate this behind the admin role.
func (s *Service) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Database(err)
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// DeleteUser removes an account by id.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteUser(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return apperr.Validation("User not found")
	}
	if err != nil {
		return apperr.Database(err)
	}

	s.logger.Info().Str("user_id", id.String()).Msg("user deleted")
	return nil
}
