package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivilegeNameIsValid(t *testing.T) {
	for name := range AllPrivileges() {
		assert.True(t, name.IsValid(), string(name))
	}

	assert.False(t, PrivilegeName("").IsValid())
	assert.False(t, PrivilegeName("create_courses").IsValid())
	assert.False(t, PrivilegeName("CREATE_COURSE").IsValid())
}

func TestAllPrivilegesIsACopy(t *testing.T) {
	first := AllPrivileges()
	assert.Len(t, first, 33)

	delete(first, PrivilegeCreateCourse)
	assert.Len(t, AllPrivileges(), 33, "callers must not be able to mutate the catalog")
}

func TestPrivilegeDescriptions(t *testing.T) {
	for name, description := range AllPrivileges() {
		assert.NotEmpty(t, description, string(name))
		assert.Equal(t, description, name.Description())
	}
}

func TestDefaultInstructorPrivileges(t *testing.T) {
	defaults := DefaultInstructorPrivileges()
	require.Len(t, defaults, 10)

	seen := make(map[PrivilegeName]bool, len(defaults))
	for _, name := range defaults {
		assert.True(t, name.IsValid(), string(name))
		assert.False(t, seen[name], "defaults must not repeat")
		seen[name] = true
	}

	assert.Contains(t, defaults, PrivilegeCreateCourse)
	assert.Contains(t, defaults, PrivilegeSetDiscounts)
	assert.NotContains(t, defaults, PrivilegePublishCourse, "publishing stays an explicit grant")
	assert.NotContains(t, defaults, PrivilegeEnrollStudents)
}
