package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	key, err := NewKey(32)
	if err != nil {
		t.Fatal("Error creating key: ", err)
	}

	tok, err := key.NewToken(RoleSend, "lock", 0)
	if err != nil {
		t.Fatal("Error creating token: ", err)
	}

	role, source, err := key.Verify(Bearer(tok))
	if err != nil {
		t.Fatal("Error verifying token: ", err)
	}

	if role != RoleSend {
		t.Error("Expected send role, got: ", role)
	}

	if source != "lock" {
		t.Error("Expected lock scope, got: ", source)
	}
}

func TestTokenManageRole(t *testing.T) {
	key, _ := NewKey(32)

	tok, err := key.NewToken(RoleManage, "", 0)
	if err != nil {
		t.Fatal("Error creating token: ", err)
	}

	role, source, err := key.Verify(Bearer(tok))
	if err != nil {
		t.Fatal("Error verifying token: ", err)
	}

	if role != RoleManage || source != "" {
		t.Errorf("Expected unscoped manage, got %v %q", role, source)
	}
}

func TestTokenFailsClosed(t *testing.T) {
	key, _ := NewKey(32)
	otherKey, _ := NewKey(32)

	good, err := key.NewToken(RoleSend, "lock", 0)
	if err != nil {
		t.Fatal("Error creating token: ", err)
	}

	expired, err := key.NewToken(RoleSend, "lock", -time.Minute)
	if err != nil {
		t.Fatal("Error creating token: ", err)
	}

	unknownRole, err := key.NewToken(Role("admin"), "", 0)
	if err != nil {
		t.Fatal("Error creating token: ", err)
	}

	bad := []struct {
		desc   string
		header string
	}{
		{"empty header", ""},
		{"missing scheme", good},
		{"wrong scheme", "Basic " + good},
		{"garbage token", "Bearer notatoken"},
		{"wrong key", Bearer(good)},
		{"expired", Bearer(expired)},
		{"unknown role", Bearer(unknownRole)},
	}

	for _, c := range bad {
		k := key
		if c.desc == "wrong key" {
			k = otherKey
		}

		if _, _, err := k.Verify(c.header); err == nil {
			t.Error("Expected verify error: ", c.desc)
		}
	}
}

func TestKeyFromBytes(t *testing.T) {
	key, _ := NewKey(32)

	tok, err := key.NewToken(RoleManage, "", 0)
	if err != nil {
		t.Fatal("Error creating token: ", err)
	}

	// a key restored from persisted bytes must validate old tokens
	restored := KeyFromBytes(key.Bytes())

	if _, _, err := restored.Verify(Bearer(tok)); err != nil {
		t.Fatal("Restored key failed to verify: ", err)
	}
}
