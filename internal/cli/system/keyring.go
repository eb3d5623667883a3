package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/slotbook/internal/cli"
	"github.com/julianstephens/slotbook/internal/keyring"
	"github.com/julianstephens/slotbook/internal/storage"
)

// KeyringSetCmd stores the PostgreSQL connection string in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring."`
	Profile          string `short:"p" help:"Named profile, selected later with --config keyring:<profile>."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if _, err := storage.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, storage.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is encrypted, so a password is acceptable here.
		ctx.Println("⚠ Warning: Connection string contains embedded credentials.")
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	profile := keyring.Profile(cmd.Profile)
	if err := profile.Set(cmd.ConnectionString); err != nil {
		return err
	}
	ctx.Printf("✓ Connection string stored in OS keyring (profile %s)\n", profile)
	ctx.Printf("  Use it with: slotbook --config %s <command>\n", profile.Config())
	return nil
}

type KeyringGetCmd struct {
	Profile string `short:"p" help:"Named profile."`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.Profile(cmd.Profile).Get()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w. Use 'slotbook keyring set' to store one", err)
		}
		return err
	}
	ctx.Println(storage.MaskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct {
	Profile string `short:"p" help:"Named profile."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	profile := keyring.Profile(cmd.Profile)
	if err := profile.Delete(); err != nil {
		return err
	}
	ctx.Printf("✓ Connection string deleted from OS keyring (profile %s)\n", profile)
	return nil
}

type KeyringStatusCmd struct {
	Profile string `short:"p" help:"Named profile."`
}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.Println("✓ OS keyring is available")

	profile := keyring.Profile(cmd.Profile)
	_, err := profile.Get()
	switch {
	case err == nil:
		ctx.Printf("✓ Connection string is stored for profile %s\n", profile)
	case errors.Is(err, keyring.ErrNotFound):
		ctx.Printf("ℹ No connection string stored for profile %s\n", profile)
	default:
		return err
	}
	return nil
}
