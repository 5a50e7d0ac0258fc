package rbac

import "strings"

// Checker evaluates role → permission grants.
type Checker struct {
	RolePermissions map[string][]string
}

// NewChecker returns a Checker over the given policy, falling back to the
// default RolePermissions table when rp is nil.
func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

// Has reports whether the role grants the permission.
func (c *Checker) Has(role, perm string) bool {
	perms, ok := c.RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if matchPerm(p, perm) {
			return true
		}
	}
	return false
}

// AnyRole reports whether any of the roles grants the permission.
func (c *Checker) AnyRole(roles []string, perm string) bool {
	for _, role := range roles {
		if c.Has(role, perm) {
			return true
		}
	}
	return false
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}
