package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/task-sphere/internal/auth"
	"github.com/yukikurage/task-sphere/internal/constants"
	"github.com/yukikurage/task-sphere/internal/models"
	"github.com/yukikurage/task-sphere/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("user with this email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
	ErrFailedToIssueToken   = errors.New("failed to issue session token")
)

// ValidationError reports the first input field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// validationMessages maps "Field.tag" to the message shown to clients.
var validationMessages = map[string]string{
	"Name.min":          fmt.Sprintf("Name must be at least %d characters", constants.MinNameLength),
	"Email.required":    "Invalid email address",
	"Email.email":       "Invalid email address",
	"Password.min":      fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength),
	"Password.required": "Password is required",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput checks struct tags in declaration order and returns the first
// failure as a *ValidationError.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	first := fieldErrs[0]
	message, ok := validationMessages[first.Field()+"."+first.Tag()]
	if !ok {
		message = fmt.Sprintf("Invalid %s", strings.ToLower(first.Field()))
	}
	return &ValidationError{Field: strings.ToLower(first.Field()), Message: message}
}

// NormalizeEmail trims and lower-cases an address so lookups and the unique
// index agree regardless of how the user typed it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

// dummyHash is compared against when the email is unknown, so both login
// failures cost one bcrypt comparison.
var dummyHash = mustHash("task-sphere-timing-guard")

func mustHash(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), constants.BcryptCost)
	if err != nil {
		panic(fmt.Sprintf("services: hash timing guard: %v", err))
	}
	return hash
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Name     string `validate:"min=2"`
	Email    string `validate:"required,email"`
	Password string `validate:"min=8"`
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Session is an authenticated user together with a freshly issued token.
type Session struct {
	User  *models.User
	Token string
}

// Signup creates a new user and opens a session for them.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*Session, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = NormalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), constants.BcryptCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	return s.openSession(user)
}

// Login verifies credentials and opens a session. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	input.Email = NormalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(input.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(user)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (s *AuthService) openSession(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(auth.Identity{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToIssueToken, err)
	}

	return &Session{User: user, Token: token}, nil
}
