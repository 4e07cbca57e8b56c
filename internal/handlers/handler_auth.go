package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/renohub/reno_backend/internal/core/ports/services"
	"github.com/renohub/reno_backend/internal/dto"
	"github.com/renohub/reno_backend/internal/middleware"
)

// authHandler handles registration and password login.
type authHandler struct {
	userService portssvc.UserSvcFacade
}

func newAuthHandler(userService portssvc.UserSvcFacade) *authHandler {
	return &authHandler{userService: userService}
}

// register godoc
// @Summary Register a new account
// @Description Creates a customer or craftsman account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.RegisterRequest true "Account details"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 409 {object} map[string]string "Phone already registered"
// @Router /auth/register [post]
func (h *authHandler) register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for register", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

// login godoc
// @Summary Log in with phone and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 403 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for login", slog.String("error", err.Error()))
		respondBindError(c, err)
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// registerAuthRoutes registers the public authentication routes.
func registerAuthRoutes(r *gin.Engine, userService portssvc.UserSvcFacade) {
	h := newAuthHandler(userService)

	auth := r.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
}
