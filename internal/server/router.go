package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/shipyard/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/shipyard/backend/internal/metrics"
	"github.com/MarcoPoloResearchLab/shipyard/backend/internal/ships"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	operatorContextKey = "shipyard_operator"
	requestIDHeader    = "X-Request-ID"
	shipsRoute         = "/rest/ships"
)

var (
	errMissingShipsService  = errors.New("ships service dependency required")
	errInvalidAuthorization = errors.New("authorization header missing or invalid")
)

// TokenValidator validates operator bearer tokens and returns their subject.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// Dependencies wires the HTTP handler. TokenValidator and Metrics are optional:
// without a validator the mutating routes are open.
type Dependencies struct {
	ShipsService   *ships.Service
	TokenValidator TokenValidator
	Metrics        *metrics.Recorder
	Logger         *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.ShipsService == nil {
		return nil, errMissingShipsService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware(logger))
	router.Use(corsMiddleware())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	handler := &httpHandler{
		shipsService: deps.ShipsService,
		tokens:       deps.TokenValidator,
		metrics:      deps.Metrics,
		logger:       logger,
	}

	catalog := router.Group(shipsRoute)
	catalog.GET("", handler.handleListShips)
	catalog.GET("/count", handler.handleCountShips)
	catalog.GET("/:id", handler.handleGetShip)

	mutating := router.Group(shipsRoute)
	if handler.tokens != nil {
		mutating.Use(handler.authorizeRequest)
	}
	mutating.POST("", handler.handleCreateShip)
	mutating.POST("/:id", handler.handleUpdateShip)
	mutating.DELETE("/:id", handler.handleDeleteShip)

	return router, nil
}

type httpHandler struct {
	shipsService *ships.Service
	tokens       TokenValidator
	metrics      *metrics.Recorder
	logger       *zap.Logger
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	})
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(operatorContextKey, subject)
	c.Next()
}

// respondWithServiceError maps catalog errors onto the two outward client errors.
func (h *httpHandler) respondWithServiceError(c *gin.Context, err error) {
	code := ""
	var serviceErr *ships.ServiceError
	if errors.As(err, &serviceErr) {
		code = serviceErr.Code()
	}

	switch {
	case errors.Is(err, ships.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "code": code})
	case errors.Is(err, ships.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "code": code})
	default:
		h.logger.Error("ships request failed", zap.Error(err), zap.String("request_id", c.GetString(requestIDContextKey)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "code": code})
	}
}

func mutationOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ships.ErrMalformedInput):
		return "rejected"
	case errors.Is(err, ships.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
