package admin

import (
	"strconv"

	"github.com/retailsetu/delivery-engine/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RolePolicyRequest grants or revokes one role permission.
type RolePolicyRequest struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// SetUserRolesRequest replaces a user's role set.
type SetUserRolesRequest struct {
	Roles []string `json:"roles"`
}

// CreateRoleRequest declares a new role.
type CreateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handler) requireAuthz(c *gin.Context) bool {
	if h.AuthzService == nil {
		respondError(c, response.CodeInternal, "authorization service unavailable", nil)
		return false
	}
	return true
}

// ListAuthzRoles lists the known roles.
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	if !h.requireAuthz(c) {
		return
	}
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "role listing failed", err)
		return
	}
	response.Success(c, roles)
}

// CreateAuthzRole declares a role so policies can be attached to it.
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	if !h.requireAuthz(c) {
		return
	}
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "role creation failed", err)
		return
	}
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole removes a role and its policies.
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	if !h.requireAuthz(c) {
		return
	}
	if err := h.AuthzService.DeleteRole(c.Param("role")); err != nil {
		respondError(c, response.CodeBadRequest, "role deletion failed", err)
		return
	}
	response.Success(c, nil)
}

// GetAuthzRolePolicies returns the permissions attached to a role.
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	if !h.requireAuthz(c) {
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "role policy listing failed", err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy attaches a permission to a role.
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	if !h.requireAuthz(c) {
		return
	}
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "policy grant failed", err)
		return
	}
	response.Success(c, nil)
}

// RevokeAuthzPolicy detaches a permission from a role.
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	if !h.requireAuthz(c) {
		return
	}
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "policy revoke failed", err)
		return
	}
	response.Success(c, nil)
}

// GetAuthzUserRoles returns the roles held by one user.
func (h *Handler) GetAuthzUserRoles(c *gin.Context) {
	if !h.requireAuthz(c) {
		return
	}
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetUserRoles(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "user role listing failed", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzUserRoles replaces the roles held by one user.
func (h *Handler) SetAuthzUserRoles(c *gin.Context) {
	if !h.requireAuthz(c) {
		return
	}
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	var req SetUserRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthzService.SetUserRoles(userID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "user role update failed", err)
		return
	}
	response.Success(c, nil)
}

func parseUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid user id", nil)
		return 0, false
	}
	return uint(id), true
}
