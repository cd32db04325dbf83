package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/freelance-platform/marketplace-api/middleware"
	"github.com/freelance-platform/marketplace-api/policy"
	"github.com/freelance-platform/marketplace-api/services"
	"github.com/gin-gonic/gin"
)

var kindStatus = map[services.Kind]int{
	services.KindUnauthenticated: http.StatusUnauthorized,
	services.KindForbidden:       http.StatusForbidden,
	services.KindNotFound:        http.StatusNotFound,
	services.KindPrecondition:    http.StatusBadRequest,
}

// respondError writes err as {"message", "code"}. Internal errors are logged
// and answered with a generic message.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		if status, ok := kindStatus[svcErr.Kind]; ok {
			c.JSON(status, gin.H{"message": svcErr.Message, "code": svcErr.Code})
			return
		}
	}

	slog.Error("request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"message": services.ErrInternal.Message,
		"code":    services.ErrInternal.Code,
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "Invalid request data",
		"code":    "VALIDATION_ERROR",
		"details": err.Error(),
	})
}

func respondDeleted(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// callerFrom returns the authenticated caller or answers 401
func callerFrom(c *gin.Context) (policy.Caller, bool) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": middleware.ErrMissingToken.Message,
			"code":    middleware.ErrMissingToken.Code,
		})
		return policy.Caller{}, false
	}
	return caller, true
}

// paramID parses a positive numeric path parameter or answers 400
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid " + name,
			"code":    "INVALID_ID",
		})
		return 0, false
	}
	return uint(id), true
}
