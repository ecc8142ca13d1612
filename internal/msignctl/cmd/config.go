package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesophy/mesophy-signage/internal/msignctl/config"
	"github.com/mesophy/mesophy-signage/internal/msignctl/util"
)

// newConfigCmd creates the config command that manages CLI contexts. Each
// context names a server endpoint plus its operator token, so switching
// between environments is a single use-context away.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `The config command manages msignctl's configuration, principally the
server contexts used to talk to different control server environments.

A context holds a server URL, an operator token, and TLS settings. The
current context supplies credentials for every other command unless the
MSIGN_API_URL and MSIGN_API_TOKEN environment variables override it.`,
	}

	cmd.AddCommand(
		newConfigGetContextCmd(),
		newConfigSetContextCmd(),
		newConfigDeleteContextCmd(),
		newConfigUseContextCmd(),
		newConfigViewCmd(),
	)

	return cmd
}

func newConfigGetContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-context [name]",
		Short: "Display one or many contexts",
		Example: `  # List all contexts
  msignctl config get-context

  # Show details for one context
  msignctl config get-context production`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				names := make([]string, 0, len(cfg.Contexts))
				for name := range cfg.Contexts {
					names = append(names, name)
				}
				sort.Strings(names)

				tw := util.NewTabWriter(os.Stdout)
				fmt.Fprintln(tw, "CURRENT\tNAME\tSERVER")
				for _, name := range names {
					current := ""
					if name == cfg.CurrentContext {
						current = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", current, name, cfg.Contexts[name].Server)
				}
				return tw.Flush()
			}

			name := args[0]
			ctx, ok := cfg.Contexts[name]
			if !ok {
				return fmt.Errorf("context %q not found", name)
			}

			fmt.Printf("Name: %s\n", name)
			fmt.Printf("Server: %s\n", ctx.Server)
			fmt.Printf("Insecure Skip Verify: %v\n", ctx.InsecureSkipVerify)
			if ctx.Token != "" {
				fmt.Println("Token: (set)")
			}
			return nil
		},
	}
}

func newConfigSetContextCmd() *cobra.Command {
	var (
		server          string
		token           string
		insecureSkipTLS bool
	)

	cmd := &cobra.Command{
		Use:   "set-context NAME",
		Short: "Create or update a context",
		Example: `  # Create a context for local development
  msignctl config set-context dev --server=http://localhost:8080

  # Point the production context at its server with a token
  msignctl config set-context prod --server=https://signage.example.com --token=mytoken`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			cfg.AddContext(name, &config.Context{
				Server:             server,
				Token:              token,
				InsecureSkipVerify: insecureSkipTLS,
			})

			// The first context becomes current automatically.
			if cfg.CurrentContext == "" {
				cfg.CurrentContext = name
			}

			if err := config.SaveConfig(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Printf("Context %q updated\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Server URL (required)")
	cmd.Flags().StringVar(&token, "token", "", "Operator token")
	cmd.Flags().BoolVar(&insecureSkipTLS, "insecure-skip-tls", false, "Skip TLS certificate verification")
	_ = cmd.MarkFlagRequired("server")

	return cmd
}

func newConfigDeleteContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context NAME",
		Short: "Delete a context",
		Example: `  # Delete the 'staging' context
  msignctl config delete-context staging`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RemoveContext(name); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Printf("Context %q deleted\n", name)
			return nil
		},
	}
}

func newConfigUseContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-context NAME",
		Short: "Switch to a different context",
		Example: `  # Switch to the production context
  msignctl config use-context production`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.SetCurrentContext(name); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Printf("Switched to context %q\n", name)
			return nil
		},
	}
}

func newConfigViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Display the full configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			redacted := &config.Config{
				CurrentContext: cfg.CurrentContext,
				Contexts:       make(map[string]*config.Context, len(cfg.Contexts)),
			}
			for name, ctx := range cfg.Contexts {
				c := *ctx
				if c.Token != "" {
					c.Token = "(redacted)"
				}
				redacted.Contexts[name] = &c
			}
			return util.PrintJSON(os.Stdout, redacted)
		},
	}
}
