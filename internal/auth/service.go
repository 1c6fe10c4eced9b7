package auth

import (
	"context" // Request scoped operations
	"errors"  // Error inspection
	"strings" // String manipulation
	"time"    // Token lifetime

	"expense_tracker/internal/domain" // Importing domain models
	"expense_tracker/internal/utils"  // JWT and cache helpers

	"github.com/go-playground/validator/v10" // Email format check
	"github.com/google/uuid"                 // Identity ids
	"github.com/sirupsen/logrus"             // Logging library
	"golang.org/x/crypto/bcrypt"             // Password hashing
	"gorm.io/gorm"                           // GORM ORM library
)

const (
	opSignUp = "auth.sign_up"
	opSignIn = "auth.sign_in"
	opVerify = "auth.verify"
	opRevoke = "auth.revoke"

	minPasswordLength = 6  // Shortest accepted password
	maxPasswordLength = 72 // bcrypt ignores anything longer
	revokedKeyPrefix  = "auth:revoked:"
)

var validate = validator.New() // Same validator gin binds with

// Credential Model, owned by the authentication provider
type Credential struct {
	UID          string    `gorm:"primaryKey;size:36"`            // Identity id
	Email        string    `gorm:"uniqueIndex;size:191;not null"` // Lowercased email
	PasswordHash string    `gorm:"not null"`                      // bcrypt hash
	CreatedAt    time.Time `gorm:"not null"`                      // Registration time
}

// Service authenticates credentials and issues bearer tokens
type Service struct {
	db      *gorm.DB      // Credential storage
	secret  string        // JWT signing secret
	ttl     time.Duration // Token lifetime
	revoked utils.Cache   // Revoked token ids
}

// NewService builds the authentication provider backend
func NewService(db *gorm.DB, secret string, ttl time.Duration, revoked utils.Cache) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour // Default token lifetime
	}
	return &Service{db: db, secret: secret, ttl: ttl, revoked: revoked}
}

// SignUp creates a credential and returns the new identity
func (s *Service) SignUp(ctx context.Context, email, password string) (domain.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email)) // Emails are case insensitive
	// Validate email format
	if err := validate.Var(email, "required,email"); err != nil {
		return domain.Identity{}, domain.NewError(domain.ErrAuth, opSignUp, "Invalid email address", nil)
	}
	// Validate password length
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return domain.Identity{}, domain.NewError(domain.ErrAuth, opSignUp, "Password must be 6-72 characters", nil)
	}
	var count int64 // Existing credentials with this email
	if err := s.db.WithContext(ctx).Model(&Credential{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return domain.Identity{}, domain.Network(opSignUp, err)
	}
	if count > 0 {
		return domain.Identity{}, domain.NewError(domain.ErrAuth, opSignUp, "Email already in use", nil)
	}
	// Hash the password and create the credential
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Identity{}, domain.NewError(domain.ErrAuth, opSignUp, "Failed to hash password", err)
	}
	credential := Credential{UID: uuid.NewString(), Email: email, PasswordHash: string(hash), CreatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(&credential).Error; err != nil {
		return domain.Identity{}, domain.Network(opSignUp, err)
	}
	// Log successful registration
	logrus.WithFields(logrus.Fields{
		"uid":   credential.UID, // New identity id
		"email": email,          // Registered email
	}).Info("Identity created")
	return domain.Identity{UID: credential.UID, Email: email}, nil
}

// SignIn checks the password and returns the identity
func (s *Service) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email)) // Emails are case insensitive
	var credential Credential                         // Fetch credential from database
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Identity{}, domain.NewError(domain.ErrAuth, opSignIn, "Invalid credentials", nil)
		}
		return domain.Identity{}, domain.Network(opSignIn, err)
	}
	// Compare provided password with stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(password)); err != nil {
		return domain.Identity{}, domain.NewError(domain.ErrAuth, opSignIn, "Invalid credentials", nil)
	}
	return domain.Identity{UID: credential.UID, Email: credential.Email}, nil
}

// IssueToken signs a bearer token for identity
func (s *Service) IssueToken(identity domain.Identity) (string, error) {
	return utils.GenerateJWT(identity.UID, identity.Email, s.secret, s.ttl)
}

// Verify parses a bearer token and rejects revoked ones
func (s *Service) Verify(ctx context.Context, token string) (*utils.Claims, error) {
	claims, err := utils.ParseJWT(token, s.secret) // Parse the JWT token
	if err != nil {
		return nil, domain.NewError(domain.ErrAuth, opVerify, "Invalid or expired token", err)
	}
	if s.revoked != nil && claims.ID != "" {
		_, err := s.revoked.Get(ctx, revokedKeyPrefix+claims.ID)
		switch {
		case err == nil:
			return nil, domain.NewError(domain.ErrAuth, opVerify, "Token has been revoked", nil)
		case !errors.Is(err, utils.ErrCacheMiss):
			return nil, domain.Network(opVerify, err)
		}
	}
	return claims, nil
}

// Revoke marks the token as signed out until it expires
func (s *Service) Revoke(ctx context.Context, token string) error {
	claims, err := utils.ParseJWT(token, s.secret)
	if err != nil {
		return nil // Already unusable
	}
	if s.revoked == nil || claims.ID == "" {
		return nil
	}
	ttl := s.ttl // Keep the marker as long as the token could live
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Set(ctx, revokedKeyPrefix+claims.ID, []byte("1"), ttl); err != nil {
		return domain.Network(opRevoke, err)
	}
	return nil
}
