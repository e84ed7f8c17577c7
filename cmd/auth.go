package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Shrike-Security/shrike-guard-go/internal/keychain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored Shrike API key",
}

var authLoginCmd = &cobra.Command{
	Use:   "login [api-key]",
	Short: "Store a Shrike API key in the OS keychain",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored Shrike API key",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an API key is stored",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = strings.TrimSpace(args[0])
	} else {
		entered, err := pterm.DefaultInteractiveTextInput.
			WithMask("*").
			Show("Shrike API key")
		if err != nil {
			return err
		}
		key = strings.TrimSpace(entered)
	}
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	store, err := keychain.Open()
	if err != nil {
		pterm.Println("❌ Secure storage is not available on this system")
		return err
	}
	if err := store.SaveAPIKey(key); err != nil {
		return fmt.Errorf("storing API key: %w", err)
	}

	pterm.Println("✔ API key stored in the OS keychain")
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	store, err := keychain.Open()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clearing API key: %w", err)
	}
	pterm.Println("✔ Stored API key removed")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	store, err := keychain.Open()
	if err != nil {
		pterm.Println("❌ Secure storage is not available on this system")
		return err
	}
	key, err := store.LoadAPIKey()
	if err != nil {
		if errors.Is(err, keychain.ErrNotFound) {
			pterm.Println("⚠️  No API key stored")
			pterm.Println("   Run: shrike-guard auth login")
			return nil
		}
		return err
	}

	pterm.Println("✔ API key stored (" + maskKey(key) + ")")
	return nil
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 4) + key[len(key)-4:]
}
