package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lozanotech/task-manager-api/internal/model"
	"github.com/lozanotech/task-manager-api/internal/repository"
	"github.com/lozanotech/task-manager-api/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("unable to log in")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	emails     *EmailService
	jwtSecret  string
	jwtExpiry  time.Duration
	bcryptCost int
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	emails *EmailService,
	jwtSecret string,
	jwtExpiry time.Duration,
	bcryptCost int,
) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		emails:     emails,
		jwtSecret:  jwtSecret,
		jwtExpiry:  jwtExpiry,
		bcryptCost: bcryptCost,
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Password string `json:"password"`
}

// Register validates the input, stores the user with a hashed password, sends
// the welcome email and signs the first session token.
func (s *AuthService) Register(input RegisterInput) (*model.User, string, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if err := validation.ValidateName(name); err != nil {
		return nil, "", invalidInput(err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", invalidInput(err)
	}
	if err := validation.ValidateAge(input.Age); err != nil {
		return nil, "", invalidInput(err)
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, "", invalidInput(err)
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Age:          input.Age,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.users.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrEmailAlreadyExists
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	err = s.emails.SendWelcomeEmail(user.Email, user.Name)
	if err != nil {
		slog.Warn("failed to send welcome email", "error", err, "user_id", user.ID)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies the credentials and signs a new session token. It never
// reveals whether the email or the password was the wrong half.
func (s *AuthService) Login(email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// IssueToken signs a JWT for the user and records it as a live session. A
// user can hold any number of concurrent sessions.
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	err = s.sessions.Create(&model.Session{
		UserID: user.ID,
		Token:  token,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

func (s *AuthService) GenerateJWT(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
	}
	if s.jwtExpiry > 0 {
		claims["exp"] = now.Add(s.jwtExpiry).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// VerifyToken checks the signature and expiry and returns the embedded user
// ID. It does NOT consult the session store; callers that need revocation
// semantics combine it with SessionRepository.ByUserAndToken.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}

// CheckSession reports whether the token is still live for the user.
func (s *AuthService) CheckSession(userID, token string) error {
	_, err := s.sessions.ByUserAndToken(userID, token)
	return err
}

// Logout revokes exactly one session token. The remaining sessions of the
// user stay valid.
func (s *AuthService) Logout(userID, token string) error {
	err := s.sessions.DeleteByUserAndToken(userID, token)
	if errors.Is(err, repository.ErrSessionNotFound) {
		// Already revoked by a concurrent request
		return nil
	}
	return err
}

// LogoutAll revokes every session of the user.
func (s *AuthService) LogoutAll(userID string) error {
	return s.sessions.DeleteByUser(userID)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}
