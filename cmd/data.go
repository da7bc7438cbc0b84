package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	app "github.com/okian/apmboard/internal/app"
	"github.com/okian/apmboard/pkg/logger"
)

var errNotConfirmed = errors.New("refusing to clear data without --yes")

var (
	exportOut  string
	clearForce bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every job and analytics event as JSON",
	Long:  "Writes a snapshot of the configured store. The output is accepted by the import command and the admin bulk import action.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(cmd, func(ctx context.Context, svc *app.Service) error {
			return runExport(ctx, svc, cmd.OutOrStdout(), exportOut)
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the stored jobs with a JSON export",
	Long:  "Replaces the jobs collection with the file contents. The event log is replaced only when the file carries an analytics array.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *app.Service) error {
			return runImport(ctx, svc, cmd.OutOrStdout(), args[0])
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every job and analytics event",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !clearForce {
			return errNotConfirmed
		}
		return withService(cmd, func(ctx context.Context, svc *app.Service) error {
			if err := svc.ClearAll(ctx); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "All data cleared successfully")
			return err
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (defaults to stdout)")
	clearCmd.Flags().BoolVar(&clearForce, "yes", false, "Confirm deletion")

	rootCmd.AddCommand(exportCmd, importCmd, clearCmd)
}

// withService runs fn against a service over the configured store. Logs go
// to stderr so stdout stays clean for exported data.
func withService(cmd *cobra.Command, fn func(context.Context, *app.Service) error) error {
	ctx := cmd.Context()
	if err := logger.SetOutput(cmd.ErrOrStderr()); err != nil {
		return err
	}
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}
	svc, err := openService(ctx, cfg, log)
	if err != nil {
		return err
	}
	// Started so change notifications are delivered before Stop returns.
	if err := svc.Start(ctx); err != nil {
		return err
	}
	runErr := fn(ctx, svc)
	if err := svc.Stop(ctx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func runExport(ctx context.Context, svc *app.Service, stdout io.Writer, path string) error {
	snap, err := svc.Export(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "Exported %d jobs and %d events to %s\n", len(snap.Jobs), len(snap.Analytics), path)
	return err
}

func runImport(ctx context.Context, svc *app.Service, stdout io.Writer, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading import: %w", err)
	}
	ok, err := svc.Import(ctx, raw)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: invalid data format", path)
	}
	_, err = fmt.Fprintln(stdout, "Data imported successfully")
	return err
}
