package domain

import "testing"

func TestRole_AtLeast(t *testing.T) {
	cases := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleUser, RoleUser, true},
		{RoleUser, RoleManager, false},
		{RoleManager, RoleManager, true},
		{RoleManager, RoleAdmin, false},
		{RoleAdmin, RoleManager, true},
		{RoleSuperAdmin, RoleAdmin, true},
		{Role("INTRUDER"), RoleUser, false}, // unknown roles never pass
	}

	for _, c := range cases {
		if got := c.role.AtLeast(c.min); got != c.want {
			t.Errorf("%s.AtLeast(%s): got %v, want %v", c.role, c.min, got, c.want)
		}
	}
}

func TestIdentity_IsStaff(t *testing.T) {
	cases := []struct {
		role Role
		want bool
	}{
		{RoleUser, false},
		{RoleManager, true},
		{RoleAdmin, true},
		{RoleSuperAdmin, true},
	}

	for _, c := range cases {
		id := &Identity{Role: c.role}
		if got := id.IsStaff(); got != c.want {
			t.Errorf("%s: IsStaff() = %v, want %v", c.role, got, c.want)
		}
	}
}
