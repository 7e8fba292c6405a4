package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chukul/split-token-publisher/internal/config"
	"github.com/chukul/split-token-publisher/internal/listener"
	"github.com/chukul/split-token-publisher/internal/ui"
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate the configuration and show what will be used",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		li, err := listener.New(*cfg, listener.WithLogger(logger))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Summary("Configuration", configFields(li.Config())))
		fmt.Fprintln(out, ui.Success("Configuration is valid for "+li.EventType()))
		return nil
	},
}

func configFields(cfg config.Config) []ui.Field {
	fields := []ui.Field{
		{Label: "Region", Value: cfg.Region},
		{Label: "Table", Value: cfg.TableName},
		{Label: "Key column", Value: cfg.KeyColumn},
		{Label: "Algorithm", Value: string(cfg.HashingAlgorithm)},
		{Label: "Access method", Value: string(cfg.AccessMethod.Kind())},
	}

	switch m := cfg.AccessMethod; m.Kind() {
	case config.KindStaticKeys:
		fields = append(fields,
			ui.Field{Label: "Access key id", Value: m.StaticKeys.AccessKeyID},
			ui.Field{Label: "Secret", Value: "resolved"},
		)
	case config.KindProfile:
		fields = append(fields, ui.Field{Label: "Profile", Value: m.Profile.Name})
	}

	return append(fields,
		ui.Field{Label: "Role ARN", Value: orDash(cfg.AccessMethod.RoleARN())},
		ui.Field{Label: "Cache credentials", Value: strconv.FormatBool(cfg.CacheCredentials)},
	)
}

func init() {
	rootCmd.AddCommand(checkConfigCmd)
}
