package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/chukul/split-token-publisher/internal/config"
	"github.com/chukul/split-token-publisher/internal/logging"
	"github.com/chukul/split-token-publisher/internal/ui"
)

var (
	configPath string
	verbose    bool

	logger = logr.Discard()
)

func printLogo() {
	// Blue -> Purple -> Pink
	ascii := []string{
		`  ┏━┓┏━┓╻  ╻╺┳╸   ╺┳╸┏━┓╻┏ ┏━╸┏┓╻`,
		`  ┗━┓┣━┛┃  ┃ ┃     ┃ ┃ ┃┣┻┓┣╸ ┃┗┫`,
		`  ┗━┛╹  ┗━╸╹ ╹     ╹ ┗━┛╹ ╹┗━╸╹ ╹`,
	}

	fmt.Fprintln(os.Stderr)
	for _, line := range ascii {
		runes := []rune(line)
		for i, char := range runes {
			ratio := float64(i) / float64(len(runes))

			var r, g, b int
			if ratio < 0.5 {
				sub := ratio * 2
				r = int(170 * sub)
				g = int(176 * (1 - sub))
				b = 255
			} else {
				sub := (ratio - 0.5) * 2
				r = int(170*(1-sub) + 255*sub)
				g = 0
				b = int(255*(1-sub) + 128*sub)
			}

			fmt.Fprintf(os.Stderr, "\x1b[38;2;%d;%d;%dm%c\x1b[0m", r, g, b, char)
		}
		fmt.Fprintln(os.Stderr)
	}
	fmt.Fprintln(os.Stderr, "\x1b[1m  Publishes the head and body of issued JWTs to DynamoDB, keyed by the hashed signature\x1b[0m")
	fmt.Fprintln(os.Stderr)
}

var rootCmd = &cobra.Command{
	Use:   "split-token-publisher",
	Short: "Publish split access tokens to DynamoDB",
	Long: `split-token-publisher stores the head and body of issued JWT access tokens in a
DynamoDB table keyed by a hash of the token signature. Clients keep only the
signature; a resource server hashes it to look the rest of the token up.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the YAML configuration (default $"+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable diagnostic logging")
}

// Execute runs the CLI
func Execute() {
	if len(os.Args) <= 1 || os.Args[1] == "help" {
		printLogo()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Failure(err.Error()))
		if verbose {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
