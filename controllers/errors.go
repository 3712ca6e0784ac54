package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Kariqs/myfood-api/services"
	"github.com/gin-gonic/gin"
)

func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	ctx.JSON(statusCode, gin.H{
		"message": message,
		"error":   errMsg,
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrSignatureMismatch):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrPriceIntegrity), errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, services.ErrPaymentDeclined), errors.Is(err, services.ErrPaymentRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, services.ErrProvider):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError maps a service error to its HTTP status. Internal
// errors are logged and not echoed to the client.
func respondWithServiceError(ctx *gin.Context, message string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", message, err)
		respondWithError(ctx, status, message, nil)
		return
	}
	respondWithError(ctx, status, message, err)
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		respondWithError(ctx, http.StatusBadRequest, "Invalid "+param, err)
		return 0, false
	}
	return uint(id), true
}
