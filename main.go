package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/spf13/cobra"

	"ticketsale/internal/app"
	"ticketsale/internal/config"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "ticketsale",
		Short:        "Ticket sale payments service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file, environment variables take precedence")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(remindCmd(&configPath))
	rootCmd.AddCommand(bufferCmd(&configPath))
	rootCmd.AddCommand(adminsCmd(&configPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp loads the configuration and builds the application without running it.
func newApp(ctx context.Context, configPath string) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log.Init(cfg.LogLevel)

	return app.NewApp(ctx, cfg, watermill.NewStdLogger(false, false))
}

func serve(ctx context.Context, configPath string) error {
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, event handlers and scheduled jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

func remindCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send payment reminders for transfers waiting for approval, once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Remind(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}
}

func bufferCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buffer",
		Short: "Inspect and retry buffered emails",
	}

	var failed bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List buffered emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Buffer().List()
			if failed {
				entries, err = a.Buffer().Failed()
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, entries)
		},
	}
	list.Flags().BoolVar(&failed, "failed", false, "list emails whose retries are exhausted")

	retry := &cobra.Command{
		Use:   "retry <file>",
		Short: "Deliver a failed email again and remove it from the buffer on success",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Buffer().RetryFailed(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s delivered\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, retry)
	return cmd
}

func adminsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Manage admin accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create a super-admin and an admin when no admin exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.SeedAdmins(cmd.Context())
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "admins already exist, nothing seeded")
				return nil
			}
			for _, admin := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", admin.AdminID, admin.Role, admin.Name)
			}
			return nil
		},
	})

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
