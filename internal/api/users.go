package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/forum"
)

// UserAPI serves public profiles and the admin user panel.
type UserAPI struct {
	users *forum.UserService
}

// NewUserAPI creates a new user API
func NewUserAPI(users *forum.UserService) *UserAPI {
	return &UserAPI{users: users}
}

// GetProfile handles GET /api/users/:username
func (a *UserAPI) GetProfile(c *gin.Context) {
	view, err := a.users.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type updateProfileRequest struct {
	Name      *string `json:"name"`
	Username  *string `json:"username"`
	Bio       *string `json:"bio"`
	BannerURL *string `json:"bannerUrl"`
}

// UpdateProfile handles PUT /api/profile for the calling user.
func (a *UserAPI) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid profile payload")
		return
	}

	view, err := a.users.UpdateProfile(c.Request.Context(), auth.FromContext(c), forum.ProfileUpdate{
		Name:      req.Name,
		Username:  req.Username,
		Bio:       req.Bio,
		BannerURL: req.BannerURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListUsers handles GET /api/admin/users
func (a *UserAPI) ListUsers(c *gin.Context) {
	users, err := a.users.ListUsers(c.Request.Context(), auth.FromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole handles PUT /api/admin/users/:id/role. Banning a user revokes
// all of their sessions atomically with the role change.
func (a *UserAPI) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "role is required")
		return
	}

	err := a.users.UpdateRole(c.Request.Context(), auth.FromContext(c), c.Param("id"), req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "role": req.Role})
}
