package api

import (
	"errors"   // Validation error matching
	"net/http" // HTTP status codes

	"expense_tracker/internal/assets"     // Image variants
	"expense_tracker/internal/auth"       // Authentication service
	"expense_tracker/internal/domain"     // Results and models
	"expense_tracker/internal/middleware" // Context keys
	"expense_tracker/internal/session"    // Session component

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding validation errors
	"github.com/sirupsen/logrus"             // Logging library
)

// Request struct for registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided and well formed
	Password string `json:"password" binding:"required"`    // Password must be provided
	Name     string `json:"name" binding:"required"`        // Display name must be provided
}

// registerBindMessage turns a binding failure into a user-facing message
func registerBindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Email" && fe.Tag() == "email" {
				return "Invalid email address" // Present but malformed
			}
		}
	}
	return "Please fill in all fields"
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email"`    // Email, checked by the session
	Password string `json:"password"` // Password, checked by the session
}

// Request struct for a profile edit, JSON or multipart
type UpdateUserRequest struct {
	Name  string `json:"name" form:"name"`   // New display name
	Image string `json:"image" form:"image"` // Remote avatar URL, ignored when a file is uploaded
}

// Response struct for authentication
type AuthResponse struct {
	Token string       `json:"token"` // JWT token
	User  *domain.User `json:"user"`  // Loaded profile
}

// newSession builds a request-scoped session over a fresh provider
func newSession(c *gin.Context, authService *auth.Service, profiles session.Profiles, host assets.Host) (*session.Session, *auth.Provider) {
	provider := auth.NewProvider(authService) // Signed-out provider
	sess := session.New(provider, profiles,
		session.WithAssetHost(host),
		session.WithContext(c.Request.Context()),
		session.WithLogger(logrus.WithField("path", c.FullPath())),
	)
	return sess, provider
}

// resumeSession builds a session signed in with the request's bearer token
func resumeSession(c *gin.Context, authService *auth.Service, profiles session.Profiles, host assets.Host) (*session.Session, *auth.Provider, error) {
	provider := auth.NewProvider(authService)
	if err := provider.Resume(c.Request.Context(), c.GetString(middleware.ContextToken)); err != nil {
		return nil, nil, err
	}
	sess := session.New(provider, profiles,
		session.WithAssetHost(host),
		session.WithContext(c.Request.Context()),
		session.WithLogger(logrus.WithField("path", c.FullPath())),
	)
	return sess, provider, nil
}

// RegisterHandler creates the identity and profile and returns a JWT token
func RegisterHandler(authService *auth.Service, profiles session.Profiles, host assets.Host) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			fail(c, domain.Validation("api.register", registerBindMessage(err)))
			return
		}
		sess, provider := newSession(c, authService, profiles, host)
		defer sess.Close()
		result := sess.Register(c.Request.Context(), req.Email, req.Password, req.Name) // Identity, then profile
		if !result.Success {
			respond(c, http.StatusCreated, result)
			return
		}
		// Return the token with the new profile
		c.JSON(http.StatusCreated, domain.OK(result.Msg, AuthResponse{Token: provider.Token(), User: sess.User()}))
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(authService *auth.Service, profiles session.Profiles, host assets.Host) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			badRequest(c)
			return
		}
		sess, provider := newSession(c, authService, profiles, host)
		defer sess.Close()
		result := sess.Login(c.Request.Context(), req.Email, req.Password) // Profile loads on the auth-state event
		if !result.Success {
			respond(c, http.StatusOK, result)
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, domain.OK(result.Msg, AuthResponse{Token: provider.Token(), User: sess.User()}))
	}
}

// LogoutHandler revokes the request's token
func LogoutHandler(authService *auth.Service, profiles session.Profiles) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _, err := resumeSession(c, authService, profiles, nil)
		if err != nil {
			fail(c, err)
			return
		}
		defer sess.Close()
		respond(c, http.StatusOK, sess.Logout(c.Request.Context())) // Revoke and sign out
	}
}

// GetUserHandler returns the signed-in user's profile
func GetUserHandler(authService *auth.Service, profiles session.Profiles) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _, err := resumeSession(c, authService, profiles, nil)
		if err != nil {
			fail(c, err)
			return
		}
		defer sess.Close()
		// Reload the profile document
		if err := sess.UpdateUserData(c.Request.Context(), currentUser(c)); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, domain.OK("", sess.User()))
	}
}

// UpdateUserHandler changes the signed-in user's name and avatar
func UpdateUserHandler(authService *auth.Service, profiles session.Profiles, host assets.Host) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateUserRequest // Bind JSON or multipart request to struct
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c)
			return
		}
		image, err := imageFromRequest(c, req.Image) // Uploaded file or remote URL
		if err != nil {
			fail(c, err)
			return
		}
		sess, _, err := resumeSession(c, authService, profiles, host)
		if err != nil {
			fail(c, err)
			return
		}
		defer sess.Close()
		respond(c, http.StatusOK, sess.UpdateProfile(c.Request.Context(), currentUser(c), session.ProfileInput{Name: req.Name, Image: image}))
	}
}
