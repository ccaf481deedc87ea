package authz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix     = "/api/v1"
	casbinTableName = "casbin_rule"
	userSubjectFmt  = "user:%d"
	rolePrefix      = "role:"
	roleAnchor      = "role:__anchor__"
)

const defaultRBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Policy is one authorization rule.
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// Service wraps the Casbin enforcer: policy loading, authorization checks,
// and role management.
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService creates the authorization service backed by the engine store.
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}

	m, err := model.NewModelFromString(defaultRBACModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}

	return &Service{enforcer: enforcer}, nil
}

// Enforcer exposes the underlying enforcer for policy-management handlers.
func (s *Service) Enforcer() *casbin.SyncedEnforcer {
	if s == nil {
		return nil
	}
	return s.enforcer
}

// Enforce evaluates one authorization request.
func (s *Service) Enforce(sub, obj, act string) (bool, error) {
	if s == nil || s.enforcer == nil {
		return false, fmt.Errorf("authz service unavailable")
	}
	return s.enforcer.Enforce(strings.TrimSpace(sub), NormalizeObject(obj), NormalizeAction(act))
}

// EnforceUser evaluates a request for a user id.
func (s *Service) EnforceUser(userID uint, obj, act string) (bool, error) {
	return s.Enforce(SubjectForUser(userID), obj, act)
}

// EnforceUserWithRole evaluates a request for a user id, falling back to the
// user's profile role when no explicit user grouping grants access. The
// profile role is authoritative for the built-in route matrix; explicit
// groupings assigned through role management extend it.
func (s *Service) EnforceUserWithRole(userID uint, profileRole, obj, act string) (bool, error) {
	allowed, err := s.EnforceUser(userID, obj, act)
	if err != nil || allowed {
		return allowed, err
	}
	role, rerr := NormalizeRole(profileRole)
	if rerr != nil || role == roleAnchor {
		return false, nil
	}
	return s.Enforce(role, obj, act)
}

// ReloadPolicy re-reads policies from the store.
func (s *Service) ReloadPolicy() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	return s.enforcer.LoadPolicy()
}

// EnsureRole creates a role if missing and returns its normalized name.
func (s *Service) EnsureRole(role string) (string, error) {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if s == nil || s.enforcer == nil {
		return "", fmt.Errorf("authz service unavailable")
	}
	if normalized == roleAnchor {
		return "", fmt.Errorf("reserved role is not allowed")
	}

	exists, err := s.enforcer.HasNamedGroupingPolicy("g", normalized, roleAnchor)
	if err != nil {
		return "", fmt.Errorf("check role failed: %w", err)
	}
	if exists {
		return normalized, nil
	}

	if _, err := s.enforcer.AddNamedGroupingPolicy("g", normalized, roleAnchor); err != nil {
		return "", fmt.Errorf("create role failed: %w", err)
	}
	return normalized, nil
}

// ListRoles returns every known role.
func (s *Service) ListRoles() ([]string, error) {
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	rules, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 0)
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	roleSet := make(map[string]struct{})
	for _, rule := range rules {
		if len(rule) >= 1 {
			if strings.HasPrefix(rule[0], rolePrefix) && rule[0] != roleAnchor {
				roleSet[rule[0]] = struct{}{}
			}
		}
		if len(rule) >= 2 {
			if strings.HasPrefix(rule[1], rolePrefix) && rule[1] != roleAnchor {
				roleSet[rule[1]] = struct{}{}
			}
		}
	}
	roles := make([]string, 0, len(roleSet))
	for role := range roleSet {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles, nil
}

// DeleteRole removes a role and every policy attached to it.
func (s *Service) DeleteRole(role string) error {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	if normalized == roleAnchor {
		return fmt.Errorf("reserved role is not allowed")
	}
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	if _, err := s.enforcer.RemoveFilteredPolicy(0, normalized); err != nil {
		return fmt.Errorf("remove role policy failed: %w", err)
	}
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, normalized); err != nil {
		return fmt.Errorf("remove role link failed: %w", err)
	}
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 1, normalized); err != nil {
		return fmt.Errorf("remove role incoming link failed: %w", err)
	}
	return nil
}

// GrantRolePolicy attaches a policy to a role.
func (s *Service) GrantRolePolicy(role, object, action string) error {
	normalizedRole, err := s.EnsureRole(role)
	if err != nil {
		return err
	}
	normalizedObject := NormalizeObject(object)
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return fmt.Errorf("action is required")
	}

	if _, err := s.enforcer.AddPolicy(normalizedRole, normalizedObject, normalizedAction); err != nil {
		return fmt.Errorf("grant policy failed: %w", err)
	}
	return nil
}

// RevokeRolePolicy detaches a policy from a role.
func (s *Service) RevokeRolePolicy(role, object, action string) error {
	normalizedRole, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	normalizedObject := NormalizeObject(object)
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return fmt.Errorf("action is required")
	}
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	if _, err := s.enforcer.RemovePolicy(normalizedRole, normalizedObject, normalizedAction); err != nil {
		return fmt.Errorf("revoke policy failed: %w", err)
	}
	return nil
}

// GetRolePolicies lists the policies attached to a role.
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	normalizedRole, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}

	rules, err := s.enforcer.GetFilteredPolicy(0, normalizedRole)
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	return convertPolicies(rules), nil
}

// SetUserRoles replaces a user's role assignments.
func (s *Service) SetUserRoles(userID uint, roles []string) error {
	if userID == 0 {
		return fmt.Errorf("user id is required")
	}
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	subject := SubjectForUser(userID)

	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, subject); err != nil {
		return fmt.Errorf("clear user roles failed: %w", err)
	}

	for _, role := range roles {
		normalizedRole, err := s.EnsureRole(role)
		if err != nil {
			return err
		}
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", subject, normalizedRole); err != nil {
			return fmt.Errorf("assign user role failed: %w", err)
		}
	}
	return nil
}

// GetUserRoles lists a user's roles.
func (s *Service) GetUserRoles(userID uint) ([]string, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user id is required")
	}
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	roles, err := s.enforcer.GetRolesForUser(SubjectForUser(userID))
	if err != nil {
		return nil, fmt.Errorf("get user roles failed: %w", err)
	}
	filtered := make([]string, 0, len(roles))
	for _, role := range roles {
		if !strings.HasPrefix(role, rolePrefix) || role == roleAnchor {
			continue
		}
		filtered = append(filtered, role)
	}
	sort.Strings(filtered)
	return filtered, nil
}

// GetUserPolicies lists the effective policies for a user, role-derived and
// directly attached.
func (s *Service) GetUserPolicies(userID uint) ([]Policy, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user id is required")
	}
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	subject := SubjectForUser(userID)
	policyMap := map[string]Policy{}

	appendRules := func(rules [][]string) {
		for _, item := range convertPolicies(rules) {
			key := item.Subject + "|" + item.Object + "|" + item.Action
			policyMap[key] = item
		}
	}

	directRules, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("get direct policies failed: %w", err)
	}
	appendRules(directRules)

	roles, err := s.GetUserRoles(userID)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		rules, err := s.enforcer.GetFilteredPolicy(0, role)
		if err != nil {
			return nil, fmt.Errorf("get role policies failed: %w", err)
		}
		appendRules(rules)
	}

	result := make([]Policy, 0, len(policyMap))
	for _, item := range policyMap {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Subject == result[j].Subject {
			if result[i].Object == result[j].Object {
				return result[i].Action < result[j].Action
			}
			return result[i].Object < result[j].Object
		}
		return result[i].Subject < result[j].Subject
	})
	return result, nil
}

func convertPolicies(rules [][]string) []Policy {
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	return policies
}

// SubjectForUser builds the enforcement subject for a user id.
func SubjectForUser(userID uint) string {
	return fmt.Sprintf(userSubjectFmt, userID)
}

// NormalizeRole canonicalizes a role name.
func NormalizeRole(role string) (string, error) {
	normalized := strings.TrimSpace(role)
	if normalized == "" {
		return "", fmt.Errorf("role is required")
	}
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if !strings.HasPrefix(normalized, rolePrefix) {
		normalized = rolePrefix + normalized
	}
	if len(normalized) <= len(rolePrefix) {
		return "", fmt.Errorf("role is required")
	}
	return normalized, nil
}

// NormalizeObject canonicalizes a resource path.
func NormalizeObject(object string) string {
	normalized := strings.TrimSpace(object)
	if normalized == "" {
		return "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if strings.HasPrefix(normalized, apiV1Prefix+"/") {
		return strings.TrimPrefix(normalized, apiV1Prefix)
	}
	if normalized == apiV1Prefix {
		return "/"
	}
	return normalized
}

// NormalizeAction canonicalizes an HTTP action.
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
