package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/slotbook/internal/constants"
)

// ConfigPrefix selects a keyring profile in --config: "keyring" for the
// default profile, "keyring:<name>" for a named one.
const ConfigPrefix = "keyring"

var (
	ErrNotFound           = errors.New("connection string not found in keyring")
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	ErrInvalidProfile     = errors.New("invalid keyring profile")
)

// Profile names one PostgreSQL connection string in the OS keyring. The zero
// value is the default profile.
type Profile string

// ParseConfig reports whether config refers to the keyring and, if so, which
// profile it names.
func ParseConfig(config string) (Profile, bool) {
	if config == ConfigPrefix {
		return "", true
	}
	name, ok := strings.CutPrefix(config, ConfigPrefix+":")
	if !ok {
		return "", false
	}
	return Profile(name), true
}

func (p Profile) Validate() error {
	for _, r := range p {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return fmt.Errorf("%w %q: use letters, digits, '-' or '_'", ErrInvalidProfile, string(p))
		}
	}
	return nil
}

// Config is the --config value that selects p.
func (p Profile) Config() string {
	if p == "" {
		return ConfigPrefix
	}
	return ConfigPrefix + ":" + string(p)
}

func (p Profile) String() string {
	if p == "" {
		return "default"
	}
	return string(p)
}

func (p Profile) user() string {
	if p == "" {
		return constants.DefaultKeyringUser
	}
	return constants.DefaultKeyringUser + ":" + string(p)
}

// Get returns the stored connection string, ErrNotFound if the profile is empty.
func (p Profile) Get() (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	connStr, err := keyring.Get(constants.AppName, p.user())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w (profile %s)", ErrNotFound, p)
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

func (p Profile) Set(connStr string) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, p.user(), connStr); err != nil {
		return fmt.Errorf("failed to store connection string for profile %s: %w", p, err)
	}
	return nil
}

func (p Profile) Delete() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := keyring.Delete(constants.AppName, p.user()); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w (profile %s)", ErrNotFound, p)
		}
		return fmt.Errorf("failed to delete connection string for profile %s: %w", p, err)
	}
	return nil
}

// IsAvailable reports whether the OS keyring answers a lookup.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
