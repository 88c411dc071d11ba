package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teamplan/planboard/internal/apperr"
	"github.com/teamplan/planboard/internal/auth"
	"github.com/teamplan/planboard/internal/models"
	"github.com/teamplan/planboard/internal/roles"
)

// ListHandler returns every account. Any authenticated role may read the
// directory.
func ListHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := store.List(c.Request.Context())
		if err != nil {
			respondError(c, apperr.Storage("failed to list users", err))
			return
		}
		if list == nil {
			list = []models.User{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// CreateHandler registers a new account.
func CreateHandler(store Store, table roles.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorRole(c)
		if !table.CanManageUsers(actor) {
			respondError(c, apperr.Forbidden("insufficient permissions to manage users"))
			return
		}

		raw, ok := bindBody(c)
		if !ok {
			return
		}
		values, err := normalize(raw, false, table.AssignableRoles(actor))
		if err != nil {
			respondError(c, err)
			return
		}

		user := toUser(values)
		if err := store.Create(c.Request.Context(), &user); err != nil {
			if err == ErrDuplicateLogin {
				respondError(c, apperr.Conflict("login already in use"))
				return
			}
			respondError(c, apperr.Storage("failed to create user", err))
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// UpdateHandler applies a partial update to an account.
func UpdateHandler(store Store, table roles.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorRole(c)
		if !table.CanManageUsers(actor) {
			respondError(c, apperr.Forbidden("insufficient permissions to manage users"))
			return
		}

		id, err := parseID(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		target, err := store.FindByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, apperr.Storage("failed to load user", err))
			return
		}
		if target == nil {
			respondError(c, apperr.NotFound("user not found"))
			return
		}
		targetRole, _ := roles.Parse(target.Role)
		if !table.CanManageUser(actor, targetRole) {
			respondError(c, apperr.Forbidden("cannot modify this user"))
			return
		}

		raw, ok := bindBody(c)
		if !ok {
			return
		}
		values, err := normalize(raw, true, table.AssignableRoles(actor))
		if err != nil {
			respondError(c, err)
			return
		}

		updated, err := store.Update(c.Request.Context(), id, values)
		if err != nil {
			if err == ErrDuplicateLogin {
				respondError(c, apperr.Conflict("login already in use"))
				return
			}
			respondError(c, apperr.Storage("failed to update user", err))
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteHandler removes an account.
func DeleteHandler(store Store, table roles.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorRole(c)
		if !table.CanManageUsers(actor) {
			respondError(c, apperr.Forbidden("insufficient permissions to manage users"))
			return
		}

		id, err := parseID(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		target, err := store.FindByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, apperr.Storage("failed to load user", err))
			return
		}
		if target == nil {
			respondError(c, apperr.NotFound("user not found"))
			return
		}
		targetRole, _ := roles.Parse(target.Role)
		if !table.CanManageUser(actor, targetRole) {
			respondError(c, apperr.Forbidden("cannot modify this user"))
			return
		}

		if _, err := store.Delete(c.Request.Context(), id); err != nil {
			respondError(c, apperr.Storage("failed to delete user", err))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid user id")
	}
	return uint(id), nil
}

func bindBody(c *gin.Context) (map[string]any, bool) {
	raw := map[string]any{}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return raw, true
	}
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return nil, false
	}
	return raw, true
}

func actorRole(c *gin.Context) roles.Role {
	principal, _ := auth.FromContext(c)
	return principal.Role
}

func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("User request failed",
			"path", c.FullPath(),
			"error", err.Error(),
		)
	}
	c.JSON(status, gin.H{"message": apperr.Message(err)})
}
