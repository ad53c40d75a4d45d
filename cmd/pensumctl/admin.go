package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/EnmanuelReynoso23/el-pensum/database"
	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/utils/validation"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		// openEnv migrates on open
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
		return nil
	},
}

var (
	seedAdminEmail    string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the sample catalog and the first admin",
	Long: `Seed sample universities, programs and offerings.

The admin account is created from --admin-email and --admin-password,
which default to ADMIN_EMAIL and ADMIN_PASSWORD. Existing rows are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := database.NewSeeder(e.store.DB(), e.logger).SeedAll(seedAdminEmail, seedAdminPassword); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Seeding completed")
		return nil
	},
}

var (
	adminEmail    string
	adminPassword string
	adminName     string
	adminRole     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an operator account",
	RunE:  runCreateAdmin,
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", os.Getenv("ADMIN_EMAIL"), "Email of the first admin")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", os.Getenv("ADMIN_PASSWORD"), "Password of the first admin")

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Account email (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Account password (required)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrador", "Display name")
	createAdminCmd.Flags().StringVar(&adminRole, "role", model.RoleAdmin, "Role: admin or editor")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	if adminRole != model.RoleAdmin && adminRole != model.RoleEditor {
		return fmt.Errorf("role must be %q or %q", model.RoleAdmin, model.RoleEditor)
	}
	if ok, problems := validation.ValidatePassword(adminPassword); !ok {
		return fmt.Errorf("password is too weak: %s", strings.Join(problems, "; "))
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := database.NewSeeder(e.store.DB(), e.logger).CreateUser(adminEmail, adminPassword, adminName, adminRole)
	if err != nil {
		if errors.Is(err, database.ErrUserExists) {
			return fmt.Errorf("a user with email %s already exists", strings.ToLower(strings.TrimSpace(adminEmail)))
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (id %d)\n", user.Role, user.Email, user.ID)
	return nil
}
