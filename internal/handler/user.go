package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"karsdrive/internal/devstore"
	"karsdrive/internal/domain"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	store *devstore.Store
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store *devstore.Store) *UserHandler {
	return &UserHandler{store: store}
}

// Find handles GET /users?login=&password=
func (h *UserHandler) Find(c *gin.Context) {
	login := c.Query("login")
	password := c.Query("password")

	users := h.store.FindUsers(login, password)
	if users == nil {
		users = []*domain.User{}
	}
	c.JSON(http.StatusOK, users)
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.store.GetUser(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Register handles POST /users
func (h *UserHandler) Register(c *gin.Context) {
	var user domain.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if user.Login == "" || user.Password == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "login and password are required"})
		return
	}

	if user.Role == "" {
		user.Role = domain.RoleDriver
	}
	if user.Status == "" {
		// New driver accounts await moderation.
		user.Status = domain.ApprovalPending
	}

	c.JSON(http.StatusCreated, h.store.CreateUser(&user))
}

// Patch handles PATCH /users/:id
func (h *UserHandler) Patch(c *gin.Context) {
	var patch devstore.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.store.PatchUser(c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteUser(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
