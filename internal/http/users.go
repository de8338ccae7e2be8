package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
)

// UsersController is the admin-only account management API.
type UsersController struct {
	service *auth.Service
	audit   *audit.Service
}

func NewUsersController(service *auth.Service, auditService *audit.Service) *UsersController {
	return &UsersController{service: service, audit: auditService}
}

// List handles GET /api/admin/users
func (uc *UsersController) List(c *gin.Context) {
	offset, limit, ok := parsePagination(c)
	if !ok {
		return
	}
	users, err := uc.service.ListUsers(c.Request.Context(), offset, limit)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Create handles POST /api/admin/users
func (uc *UsersController) Create(c *gin.Context) {
	var in auth.CreateUserInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := uc.service.CreateUser(c.Request.Context(), in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	uc.audit.LogUser(auth.GetUserID(c), "user_create", user.ID, user.Login)
	c.JSON(http.StatusCreated, user)
}

// Get handles GET /api/admin/users/:id
func (uc *UsersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := uc.service.GetUser(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update handles PUT /api/admin/users/:id
func (uc *UsersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in auth.UpdateUserInput
	if !bindJSON(c, &in) {
		return
	}
	if id == auth.GetUserID(c) && in.IsAdmin != nil && !*in.IsAdmin {
		respondAppError(c, apperr.Conflictf("you cannot revoke your own admin role"))
		return
	}
	user, err := uc.service.UpdateUser(c.Request.Context(), id, in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	uc.audit.LogUser(auth.GetUserID(c), "user_update", user.ID, user.Login)
	c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/admin/users/:id. The user's reading log and
// reports go with the account.
func (uc *UsersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id == auth.GetUserID(c) {
		respondAppError(c, apperr.Conflictf("you cannot delete your own account"))
		return
	}
	user, err := uc.service.GetUser(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	if err := uc.service.DeleteUser(c.Request.Context(), id); err != nil {
		respondAppError(c, err)
		return
	}
	uc.audit.LogUser(auth.GetUserID(c), "user_delete", id, user.Login)
	c.Status(http.StatusNoContent)
}
