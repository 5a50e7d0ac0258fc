package rbac

import "github.com/yourusername/testhub-api/internal/domain/entity"

// RolePermissions is the default route-level policy.
// Ownership-sensitive decisions (viewing unpublished tests, managing a
// specific test) are made by the predicates in policy.go, not here.
var RolePermissions = map[string][]string{
	entity.RoleTestTaker: {
		"test:view",
		"attempt:create",
		"attempt:submit",
		"attempt:view-own",
		"attempt:feedback",
	},
	entity.RoleAuthor: {
		"test:view",
		"test:create",
		"test:manage-own",
		"test:export-own",
		"attempt:create",
		"attempt:submit",
		"attempt:view-own",
		"attempt:feedback",
	},
	entity.RoleAdmin: {
		"*", // everything
	},
}
