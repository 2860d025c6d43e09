package auth

import (
	"testing"
)

func TestUser_IsAdmin(t *testing.T) {
	u := User{ID: "u1", Role: RoleAdmin}
	if !u.IsAdmin() {
		t.Fatalf("expected admin")
	}
	if (User{ID: "u1", Role: RoleUser}).IsAdmin() {
		t.Fatalf("did not expect admin")
	}
	if (User{ID: "u1", Role: "moderator"}).IsAdmin() {
		t.Fatalf("unknown roles must not be admin")
	}
}

func TestUser_Valid(t *testing.T) {
	if (User{}).Valid() {
		t.Fatalf("empty user must not be valid")
	}
	if (User{ID: "   "}).Valid() {
		t.Fatalf("blank id must not be valid")
	}
	if !(User{ID: "u1"}).Valid() {
		t.Fatalf("expected valid user")
	}
}

func TestNewView(t *testing.T) {
	v := NewView(nil, true)
	if v.LoggedIn || v.Admin || v.User != nil || !v.Loading {
		t.Fatalf("unexpected anonymous view: %+v", v)
	}

	u := &User{ID: "a1", Role: RoleAdmin}
	v = NewView(u, false)
	if !v.LoggedIn || !v.Admin || v.Loading {
		t.Fatalf("unexpected admin view: %+v", v)
	}
	u.Role = RoleUser
	if !v.User.IsAdmin() {
		t.Fatalf("view must hold its own copy of the user")
	}
}

func TestCallbackCode_Message(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range []CallbackCode{CallbackAuthFailed, CallbackNoUser, CallbackTokenError, "other"} {
		msg := c.Message()
		if msg == "" {
			t.Fatalf("empty message for %q", c)
		}
		if seen[msg] {
			t.Fatalf("duplicate message for %q", c)
		}
		seen[msg] = true
	}
}

func TestCallbackParams_Empty(t *testing.T) {
	if !(CallbackParams{}).Empty() {
		t.Fatalf("expected empty")
	}
	if (CallbackParams{Token: "abc"}).Empty() || (CallbackParams{Error: "no_user"}).Empty() {
		t.Fatalf("expected non-empty")
	}
}
