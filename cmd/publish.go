package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/spf13/cobra"

	"github.com/chukul/split-token-publisher/internal/config"
	"github.com/chukul/split-token-publisher/internal/listener"
	"github.com/chukul/split-token-publisher/internal/token"
	"github.com/chukul/split-token-publisher/internal/ui"
)

var (
	publishExpiresIn time.Duration
	publishExpires   int64
)

func init() {
	publishCmd.Flags().DurationVar(&publishExpiresIn, "expires-in", time.Hour, "Token lifetime from now")
	publishCmd.Flags().Int64Var(&publishExpires, "expires", 0, "Token expiry as epoch seconds (overrides --expires-in)")

	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish [token]",
	Short: "Publish one issued access token",
	Long: `Handle a single issued access token event: split the token, hash its signature
and write the record to the configured table.

The token is taken from the argument, piped stdin, or a hidden prompt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		value, err := readValue(args, os.Stdin, "Enter access token", "eyJhbGciOi...")
		if err != nil {
			return err
		}
		if value == "" {
			return errors.New("token cannot be empty")
		}

		expires := time.Now().Add(publishExpiresIn)
		if publishExpires > 0 {
			expires = time.Unix(publishExpires, 0)
		}

		li, err := listener.New(*cfg, listener.WithLogger(logger))
		if err != nil {
			return err
		}

		ev := listener.Event{AccessTokenValue: value, Expires: expires}
		var res listener.Result
		handle := func(ctx context.Context) error {
			var err error
			res, err = li.Handle(ctx, ev)
			return err
		}
		if isTerminal(os.Stderr) && !verbose {
			err = ui.Spin(cmd.Context(), "Publishing split token to "+cfg.TableName+"...", handle)
		} else {
			err = handle(cmd.Context())
		}
		if err != nil {
			return err
		}

		printResult(cmd.OutOrStdout(), li.Config(), res, time.Now())
		return nil
	},
}

func printResult(out io.Writer, cfg config.Config, res listener.Result, now time.Time) {
	switch {
	case res.Skipped:
		fmt.Fprintln(out, ui.Warning(fmt.Sprintf("Token has %d parts, not %d; nothing published", res.Parts, token.PartCount)))
		return
	case !res.Confirmed:
		fmt.Fprintln(out, ui.Warning(fmt.Sprintf("Split token sent but DynamoDB answered with status %d", res.Status)))
	default:
		fmt.Fprintln(out, ui.Success("Split token published"))
	}

	fmt.Fprintln(out, ui.Summary("Record", []ui.Field{
		{Label: "Table", Value: cfg.TableName},
		{Label: cfg.KeyColumn, Value: res.Record.HashedSignature},
		{Label: "expiration", Value: ui.FormatExpiration(res.Record.Expiration, now)},
	}))
}
