// Package http exposes the account endpoints of the loan review service.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/loanflow/internal/auth/application"
	"github.com/wyfcoding/loanflow/internal/auth/domain"
	"github.com/wyfcoding/pkg/logging"
)

type Handler struct {
	cmd   *application.AuthCommandService
	query *application.AuthQueryService
	auth  *Authenticator
}

func NewHandler(cmd *application.AuthCommandService, query *application.AuthQueryService, auth *Authenticator) *Handler {
	return &Handler{cmd: cmd, query: query, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)

	protected := g.Group("")
	protected.Use(h.auth.RequireAuth())
	protected.GET("/profile", h.Profile)
	protected.GET("/users", RequireRoles(domain.RoleAdmin), h.ListUsers)
	protected.DELETE("/users/:id", RequireRoles(domain.RoleAdmin), h.DeleteUser)
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := h.cmd.Register(c.Request.Context(), application.RegisterCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.UserRole(req.Role),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			c.JSON(http.StatusBadRequest, gin.H{"message": domain.ErrDuplicateUser.Error()})
			return
		}
		logging.Error(c.Request.Context(), "register failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "error creating user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"token":   result.Token,
		"user":    result.User,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := h.cmd.Login(c.Request.Context(), application.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}
		logging.Error(c.Request.Context(), "login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "error during login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

func (h *Handler) Profile(c *gin.Context) {
	actor, ok := CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}

	user, err := h.query.Profile(c.Request.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		logging.Error(c.Request.Context(), "profile lookup failed", "user_id", actor.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "error fetching profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.query.ListUsers(c.Request.Context())
	if err != nil {
		logging.Error(c.Request.Context(), "user listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "error fetching users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	actor, ok := CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
		return
	}

	if err := h.cmd.DeleteUser(c.Request.Context(), actor.ID, uint(targetID)); err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfDeletion):
			c.JSON(http.StatusBadRequest, gin.H{"message": domain.ErrSelfDeletion.Error()})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		default:
			logging.Error(c.Request.Context(), "user deletion failed", "user_id", targetID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "error deleting user"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
