package auth

import "testing"

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleSecretary, RoleProfessional, RoleAssistant} {
		if !ValidRole(r) {
			t.Fatalf("%q should be valid", r)
		}
	}
	if ValidRole("LEGAL_GUARDIAN") || ValidRole("") {
		t.Fatal("unknown role accepted")
	}
}

func TestNavFor(t *testing.T) {
	admin := NavFor(RoleAdmin)
	if len(admin) != 8 {
		t.Fatalf("admin should see every entry, got %d", len(admin))
	}

	assistant := NavFor(RoleAssistant)
	if len(assistant) != 1 || assistant[0].Key != "referrals" {
		t.Fatalf("assistant should only see referrals: %+v", assistant)
	}

	secretary := NavFor(RoleSecretary)
	for _, e := range secretary {
		if e.Key == "users" {
			t.Fatal("secretary must not see user management")
		}
	}

	if len(NavFor("nope")) != 0 {
		t.Fatal("unknown role should see nothing")
	}
}
