package api

import (
	"context"  // Context for cache operations
	"errors"   // Error matching
	"io"       // Reading uploaded files
	"net/http" // HTTP status codes

	"expense_tracker/internal/assets"     // Image variants
	"expense_tracker/internal/domain"     // Results and error kinds
	"expense_tracker/internal/ledger"     // Statistics periods
	"expense_tracker/internal/middleware" // Context keys
	"expense_tracker/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusFor maps an error kind to an HTTP status
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.ErrValidation:
		return http.StatusBadRequest
	case domain.ErrAuth:
		return http.StatusUnauthorized
	case domain.ErrForbidden:
		return http.StatusForbidden
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrUpload:
		return http.StatusBadGateway
	case domain.ErrNetwork:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respond writes result with okStatus on success or the mapped error status
func respond(c *gin.Context, okStatus int, result domain.Result) {
	if !result.Success {
		c.JSON(statusFor(result.Err), result) // Failure, status from the error kind
		return
	}
	c.JSON(okStatus, result) // Success
}

// fail writes err as a failed result
func fail(c *gin.Context, err error) {
	respond(c, http.StatusOK, domain.Fail(err))
}

// badRequest writes a validation failure for an unparseable body
func badRequest(c *gin.Context) {
	fail(c, domain.Validation("api.bind", "Invalid request"))
}

// currentUser returns the authenticated user id set by the JWT middleware
func currentUser(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

// imageFromRequest reads an "image" file part when the request is multipart
// and falls back to the given remote URL otherwise
func imageFromRequest(c *gin.Context, url string) (assets.Asset, error) {
	file, err := c.FormFile("image") // Look for an uploaded file
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return assets.Remote(url), nil // No file, keep the URL or nothing
	case err != nil:
		return assets.None(), domain.Validation("api.image", "Invalid image upload")
	}
	f, err := file.Open() // Open the uploaded part
	if err != nil {
		return assets.None(), domain.Validation("api.image", "Invalid image upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f) // Read the image into memory
	if err != nil {
		return assets.None(), domain.Validation("api.image", "Invalid image upload")
	}
	return assets.LocalBytes(file.Filename, file.Header.Get("Content-Type"), data), nil
}

// Cache keys
func walletsCacheKey(uid string) string { return "wallets:user:" + uid }

func statsCacheKey(uid string, period ledger.Period) string {
	return "stats:user:" + uid + ":" + string(period)
}

// invalidateUser drops every cached view of the user's ledger
func invalidateUser(ctx context.Context, cache utils.Cache, uid string) {
	keys := []string{walletsCacheKey(uid)}
	for _, period := range []ledger.Period{ledger.PeriodWeek, ledger.PeriodMonth, ledger.PeriodYear, ledger.PeriodAll} {
		keys = append(keys, statsCacheKey(uid, period))
	}
	if err := utils.DeleteCache(ctx, cache, keys...); err != nil {
		logrus.WithFields(logrus.Fields{"uid": uid, "error": err.Error()}).Warn("Cache invalidation failed")
	}
}
