package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chukul/split-token-publisher/internal/config"
	"github.com/chukul/split-token-publisher/internal/token"
)

var hashAlgorithm string

func init() {
	hashCmd.Flags().StringVarP(&hashAlgorithm, "algorithm", "a", "", "SHA-256, SHA-384 or SHA-512 (default from --config, else SHA-256)")

	rootCmd.AddCommand(hashCmd)
}

var hashCmd = &cobra.Command{
	Use:   "hash [token-or-signature]",
	Short: "Print the lookup key for a token",
	Long: `Print the value stored in the key column for a token. A full JWT is split
first; any other input is treated as a bare signature.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := hashAlgorithm
		if name == "" && (configPath != "" || os.Getenv(config.EnvConfigPath) != "") {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			name = string(cfg.HashingAlgorithm)
		}

		algorithm, err := token.ParseAlgorithm(name)
		if err != nil {
			return err
		}

		value, err := readValue(args, os.Stdin, "Enter token or signature", "")
		if err != nil {
			return err
		}

		signature := value
		if split, _, ok := token.SplitToken(value); ok {
			signature = split.Signature
		}

		hashed, err := token.HashSignature(signature, algorithm)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), hashed)
		return nil
	},
}
