package cmd

import (
	"fmt"
	"os"

	"emperror.dev/errors"
	"github.com/spf13/cobra"

	"github.com/chukul/split-token-publisher/internal/secret"
	"github.com/chukul/split-token-publisher/internal/ui"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage the AWS secret access key",
	Long: `Manage where the secret access key for the access_key_id_and_secret method comes
from when the configuration leaves access_key_secret empty.

Lookup order is $` + secret.EnvSecret + `, then the macOS Keychain.`,
}

var secretImportCmd = &cobra.Command{
	Use:   "import <access-key-id> [secret]",
	Short: "Store a secret access key in the keychain",
	Long:  "Save the secret access key for an access key id into your macOS Keychain.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := readValue(args[1:], os.Stdin, "Enter AWS secret access key for "+args[0], "")
		if err != nil {
			return err
		}
		if value == "" {
			return errors.New("secret cannot be empty")
		}

		if err := secret.Store(args[0], value); err != nil {
			return errors.WrapIf(err, "failed to store secret")
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Secret imported to Keychain for "+args[0]))
		return nil
	},
}

var secretCheckCmd = &cobra.Command{
	Use:   "check <access-key-id>",
	Short: "Check that a secret access key can be found",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := secret.Resolve("", args[0]); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Secret found for "+args[0]))
		return nil
	},
}

func init() {
	secretCmd.AddCommand(secretImportCmd)
	secretCmd.AddCommand(secretCheckCmd)
	rootCmd.AddCommand(secretCmd)
}
