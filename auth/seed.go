package auth

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// SeedUser is one provisioning entry in a seed file.
type SeedUser struct {
	Name     string `toml:"name"`
	Password string `toml:"password"`
}

// SeedFile is the on-disk provisioning format.
type SeedFile struct {
	Users []SeedUser `toml:"users"`
}

// LoadSeed provisions every user listed in the TOML file at path.
func LoadSeed(store *Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("auth: read seed file: %w", err)
	}

	var seed SeedFile
	if err := toml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("auth: parse seed file: %w", err)
	}

	for i, user := range seed.Users {
		if user.Name == "" {
			return fmt.Errorf("auth: seed entry %d has no name", i)
		}
		store.Add(user.Name, user.Password)
	}

	logrus.WithFields(logrus.Fields{
		"function": "LoadSeed",
		"path":     path,
		"users":    len(seed.Users),
	}).Info("Provisioned users from seed file")
	return nil
}

// SeedDefaults provisions the built-in development users. A deployment
// normally replaces these through a seed file.
func SeedDefaults(store *Store) {
	store.Add("Wild", "password123")
	store.Add("Yadav", "12345678")

	logrus.WithFields(logrus.Fields{
		"function": "SeedDefaults",
	}).Warn("No seed file configured; using built-in development users")
}
