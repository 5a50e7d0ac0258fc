package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/testhub-api/internal/domain/entity"
)

func taker(id uint) Subject  { return Subject{UserID: id, Roles: []string{entity.RoleTestTaker}} }
func author(id uint) Subject { return Subject{UserID: id, Roles: []string{entity.RoleAuthor, entity.RoleTestTaker}} }
func admin(id uint) Subject  { return Subject{UserID: id, Roles: []string{entity.RoleAdmin}} }

func TestCanViewTest_VisibilityMatrix(t *testing.T) {
	const ownerID = 7

	tests := []struct {
		name      string
		subject   Subject
		published bool
		want      bool
	}{
		{"taker sees published", taker(1), true, true},
		{"taker cannot see unpublished", taker(1), false, false},
		{"other author cannot see unpublished", author(2), false, false},
		{"owner sees own unpublished", author(ownerID), false, true},
		{"admin sees unpublished", admin(3), false, true},
		{"anonymous sees published", Subject{}, true, true},
		{"anonymous cannot see unpublished", Subject{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewTest(tt.subject, ownerID, tt.published))
		})
	}
}

func TestCanManageTest(t *testing.T) {
	const ownerID = 7

	assert.True(t, CanManageTest(author(ownerID), ownerID))
	assert.True(t, CanManageTest(admin(3), ownerID))
	assert.False(t, CanManageTest(author(2), ownerID), "other authors cannot manage")
	assert.False(t, CanManageTest(taker(ownerID), ownerID), "owner without author role cannot manage")
}

func TestCanAttemptTest_RequiresPublished(t *testing.T) {
	const ownerID = 7

	assert.True(t, CanAttemptTest(taker(1), ownerID, true))
	assert.False(t, CanAttemptTest(taker(1), ownerID, false))
	assert.False(t, CanAttemptTest(author(ownerID), ownerID, false), "drafts cannot be attempted, not even by their owner")
	assert.True(t, CanAttemptTest(admin(3), ownerID, false))
}

func TestCanViewAttempt(t *testing.T) {
	assert.True(t, CanViewAttempt(taker(5), 5))
	assert.False(t, CanViewAttempt(taker(5), 6))
	assert.True(t, CanViewAttempt(admin(1), 6))
	assert.False(t, CanViewAttempt(author(5), 6), "authors do not see other users' attempts")
}

func TestChecker_Permissions(t *testing.T) {
	checker := NewChecker(nil)

	tests := []struct {
		role string
		perm string
		want bool
	}{
		{entity.RoleTestTaker, "test:view", true},
		{entity.RoleTestTaker, "attempt:create", true},
		{entity.RoleTestTaker, "test:create", false},
		{entity.RoleTestTaker, "test:export-own", false},
		{entity.RoleAuthor, "test:create", true},
		{entity.RoleAuthor, "test:manage-own", true},
		{entity.RoleAuthor, "test:export-own", true},
		{entity.RoleAdmin, "test:create", true},
		{entity.RoleAdmin, "anything:at-all", true},
		{"UNKNOWN_ROLE", "test:view", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, checker.Has(tt.role, tt.perm), "%s / %s", tt.role, tt.perm)
	}
}

func TestChecker_AnyRole(t *testing.T) {
	checker := NewChecker(nil)

	assert.True(t, checker.AnyRole([]string{entity.RoleTestTaker, entity.RoleAuthor}, "test:create"))
	assert.False(t, checker.AnyRole([]string{entity.RoleTestTaker}, "test:create"))
	assert.False(t, checker.AnyRole(nil, "test:view"))
}
