package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/repositories/postgres"
)

var (
	grantSuper bool

	exportOut    string
	exportStatus string
	exportQuery  string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin <principal>",
	Short: "Add a principal to the admin roster",
	Long: `Add a principal to the admin roster.

With --super the principal becomes super admin, which only succeeds while
the roster has no super admin. Without it the principal is added on behalf
of the current super admin.`,
	Args: cobra.ExactArgs(1),
	RunE: runGrantAdmin,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the candidate roster to an XLSX file",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := postgres.AutoMigrate(e.db); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
	return nil
}

func runGrantAdmin(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	principal := args[0]
	admins := e.services.Admin()

	if grantSuper {
		initialized, err := admins.InitializeSuperAdmin(ctx, principal)
		if err != nil {
			return err
		}
		if !initialized {
			return fmt.Errorf("a super admin already exists")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now super admin\n", principal)
		return nil
	}

	super, err := e.repo.Admin().GetSuperAdmin(ctx, nil)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("no super admin exists, run grant-admin --super first")
		}
		return err
	}

	added, err := admins.AddAdmin(ctx, super.Principal, principal)
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already an admin\n", principal)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s added to the admin roster\n", principal)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()

	var filters repositories.CandidateFilters
	filters.Query = exportQuery
	if exportStatus != "" {
		status := models.CandidateStatus(exportStatus)
		if !status.IsValid() {
			return fmt.Errorf("unknown status %q", exportStatus)
		}
		filters.Status = &status
	}

	super, err := e.repo.Admin().GetSuperAdmin(ctx, nil)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("no super admin exists, run grant-admin --super first")
		}
		return err
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}

	if err := e.services.Export().ExportCandidates(ctx, f, filters, super.Principal); err != nil {
		f.Close()
		os.Remove(exportOut)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported candidates to %s\n", exportOut)
	return nil
}
