package rbac

import "github.com/yourusername/testhub-api/internal/domain/entity"

// Subject is the caller identity the policy predicates operate on.
type Subject struct {
	UserID uint
	Roles  []string
}

// IsAdmin reports whether the subject carries the ADMIN role.
func (s Subject) IsAdmin() bool {
	return s.hasRole(entity.RoleAdmin)
}

// IsAuthor reports whether the subject carries the AUTHOR role.
func (s Subject) IsAuthor() bool {
	return s.hasRole(entity.RoleAuthor)
}

func (s Subject) hasRole(name string) bool {
	for _, r := range s.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// CanViewTest reports whether the subject may see the test at all.
// Published tests are visible to everyone; unpublished tests only to their
// owner and admins.
func CanViewTest(s Subject, ownerID uint, published bool) bool {
	if published {
		return true
	}
	return s.IsAdmin() || s.UserID == ownerID
}

// CanManageTest reports whether the subject may edit, delete, publish or
// export the test.
func CanManageTest(s Subject, ownerID uint) bool {
	if s.IsAdmin() {
		return true
	}
	return s.IsAuthor() && s.UserID == ownerID
}

// CanAttemptTest reports whether the subject may start an attempt on the
// test. Attempts require a published test; only admins may attempt drafts.
func CanAttemptTest(s Subject, ownerID uint, published bool) bool {
	return published || s.IsAdmin()
}

// CanViewAttempt reports whether the subject may read the attempt and its
// result. Only the attempt owner and admins qualify.
func CanViewAttempt(s Subject, attemptUserID uint) bool {
	return s.IsAdmin() || s.UserID == attemptUserID
}
