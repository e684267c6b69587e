package auth

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/vaultwire/crypto"
)

func TestStoreVerify(t *testing.T) {
	store := NewStore()
	store.Add("Wild", "password123")

	cases := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{name: "Correct credentials", username: "Wild", password: "password123", want: true},
		{name: "Wrong password", username: "Wild", password: "wrong", want: false},
		{name: "Unknown user", username: "Ghost", password: "password123", want: false},
		{name: "Empty password", username: "Wild", password: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := store.Verify(tc.username, tc.password); got != tc.want {
				t.Errorf("Verify(%q, %q) = %v, want %v", tc.username, tc.password, got, tc.want)
			}
		})
	}
}

func TestStoreKeyMatchesLocalDerivation(t *testing.T) {
	store := NewStore()
	store.Add("Wild", "password123")

	stored, err := store.Key("Wild")
	if err != nil {
		t.Fatalf("Key() error: %v", err)
	}

	// The client derives the same key locally from the password alone.
	local := crypto.DeriveKey("password123")
	if !bytes.Equal(stored[:], local[:]) {
		t.Error("stored key does not match locally derived key")
	}
}

func TestStoreKeyUnknownUser(t *testing.T) {
	store := NewStore()
	if _, err := store.Key("Ghost"); err != ErrUnknownUser {
		t.Errorf("Key() error = %v, want ErrUnknownUser", err)
	}
}

func TestStoreReAddReplaces(t *testing.T) {
	store := NewStore()
	store.Add("Wild", "old-password")
	store.Add("Wild", "new-password")

	if store.Verify("Wild", "old-password") {
		t.Error("old password still verifies after re-provisioning")
	}
	if !store.Verify("Wild", "new-password") {
		t.Error("new password does not verify after re-provisioning")
	}
}

func TestUsernamesSorted(t *testing.T) {
	store := NewStore()
	store.Add("Yadav", "12345678")
	store.Add("Wild", "password123")

	names := store.Usernames()
	if len(names) != 2 || names[0] != "Wild" || names[1] != "Yadav" {
		t.Errorf("Usernames() = %v, want [Wild Yadav]", names)
	}
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.toml")
	seed := `
[[users]]
name = "Wild"
password = "password123"

[[users]]
name = "Yadav"
password = "12345678"
`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	store := NewStore()
	if err := LoadSeed(store, path); err != nil {
		t.Fatalf("LoadSeed() error: %v", err)
	}

	if !store.Verify("Wild", "password123") || !store.Verify("Yadav", "12345678") {
		t.Error("seeded users do not verify")
	}
}

func TestLoadSeedRejectsNamelessEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.toml")
	if err := os.WriteFile(path, []byte("[[users]]\npassword = \"x\"\n"), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	if err := LoadSeed(NewStore(), path); err == nil {
		t.Fatal("LoadSeed() accepted an entry without a name")
	}
}

func TestSeedDefaults(t *testing.T) {
	store := NewStore()
	SeedDefaults(store)

	if !store.Verify("Wild", "password123") {
		t.Error("default user Wild does not verify")
	}
	if !store.Verify("Yadav", "12345678") {
		t.Error("default user Yadav does not verify")
	}
}
