package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/groutoutlook/VietType-powershell/internal/config"
)

// NewConfigCommand creates the config command and its subcommands.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(newConfigPathCommand(rootOpts))
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	cmd.AddCommand(newConfigInitCommand(rootOpts))
	cmd.AddCommand(newConfigSchemaCommand(rootOpts))

	return cmd
}

func newConfigPathCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			if formatter.JSON() {
				return formatter.Success(map[string]string{"path": rootOpts.ConfigPath})
			}
			return formatter.Success(rootOpts.ConfigPath)
		},
	}
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults and VIETTYPE_* environment
overrides have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			if formatter.JSON() {
				return formatter.Success(rootOpts.Config)
			}
			if !slices.Contains(config.SupportedConfigFormats(), as) {
				return formatter.Fail(ExitCommandError, ErrCodeInput,
					fmt.Sprintf("unknown config format %q", as), nil)
			}
			data, err := config.Encode(rootOpts.Config, "."+as)
			if err != nil {
				return formatter.Fail(ExitFailure, ErrCodeConfig, "encode config", err)
			}
			_, err = formatter.Writer.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&as, "as", "toml", "text output format (toml|json|yaml|yml)")
	return cmd
}

func newConfigInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file if there is none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			_, created, err := config.LoadOrCreate(rootOpts.ConfigPath)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeConfig, "init config", err)
			}
			if created {
				rootOpts.Logger.Info("config created", "path", rootOpts.ConfigPath)
			}
			if formatter.JSON() {
				return formatter.Success(map[string]any{"path": rootOpts.ConfigPath, "created": created})
			}
			if created {
				return formatter.Success("created " + rootOpts.ConfigPath)
			}
			return formatter.Success("exists " + rootOpts.ConfigPath)
		},
	}
}

func newConfigSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema config files are checked against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := rootOpts.formatter(cmd).Writer.Write(config.SchemaJSON())
			return err
		},
	}
}
