package authz

import (
	"fmt"

	"github.com/retailsetu/delivery-engine/internal/constants"
)

// RoleSeed is a built-in role definition.
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds is the default role matrix for the four platform roles.
// Order ownership checks (this wholesaler owns that order, this partner is
// assigned to it) live in the services; these policies gate the route
// surface per role.
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleRetailer,
			Policies: []Policy{
				{Object: "/orders", Action: "GET"},
				{Object: "/orders/:id", Action: "GET"},
				{Object: "/orders/:id/events", Action: "GET"},
				{Object: "/orders/:id/proof", Action: "GET"},
				{Object: "/notifications", Action: "GET"},
				{Object: "/notifications/unread-count", Action: "GET"},
				{Object: "/notifications/:id/read", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     constants.RoleWholesaler,
			Inherits: []string{constants.RoleRetailer},
			Policies: []Policy{
				{Object: "/orders/:id/transition", Action: "POST"},
				{Object: "/orders/:id/assign", Action: "POST"},
				{Object: "/orders/:id/confirm-cash", Action: "POST"},
				{Object: "/orders/:id/transaction", Action: "GET"},
				{Object: "/partners", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     constants.RoleDeliveryPartner,
			Inherits: []string{constants.RoleRetailer},
			Policies: []Policy{
				{Object: "/orders/:id/transition", Action: "POST"},
				{Object: "/partners/me", Action: "GET"},
				{Object: "/partners/me", Action: "POST"},
				{Object: "/earnings", Action: "GET"},
				{Object: "/earnings/total", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role: constants.RoleAdmin,
			Policies: []Policy{
				{Object: "/*", Action: "*"},
				{Object: "/admin/*", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles seeds the default roles and their policies. Safe to
// run on every startup; existing rules are left alone.
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
