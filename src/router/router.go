package router

import (
	"log/slog"
	"net/http"

	ginlogger "github.com/FabienMht/ginslog/logger"
	ginrecovery "github.com/FabienMht/ginslog/recovery"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed API request
type ErrorResponse struct {
	Success bool     `json:"success"`
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// DefaultRouter returns a gin engine logging requests and recovering panics through logger.
func DefaultRouter(logger *slog.Logger) *gin.Engine {
	r := gin.New()

	r.Use(ginlogger.New(logger))
	r.Use(ginrecovery.New(logger))

	r.NoRoute(func(ctx *gin.Context) {
		AbortWithError(ctx, http.StatusNotFound, "not_found", "route "+ctx.Request.URL.Path+" not found")
	})

	return r
}

// AbortWithError stops the handler chain and writes an ErrorResponse.
func AbortWithError(ctx *gin.Context, status int, kind, message string, errors ...string) {
	ctx.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Kind:    kind,
		Message: message,
		Errors:  errors,
	})
}
