package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"certivault/internal/app"
	"certivault/internal/config"
	"certivault/internal/cvault"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Sync", "AddRecord").
func newApp(cmd *cobra.Command, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cmd.Context(), cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptSecret reads a line from the terminal without echo.
func promptSecret(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

var rootCmd = &cobra.Command{
	Use:   "certivault",
	Short: "Personal certificate vault",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Vault Name:   %s\n", cfg.VaultName)
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Year Start:   month %d\n", cfg.StartMonth())
		fmt.Printf("Drive:        %s\n", cfg.Drive.Type)
		fmt.Printf("Database:     %s\n", cfg.Database.Type)
		fmt.Printf("Extraction:   %s\n", cfg.Extraction.Type)
		return nil
	},
}

// profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage profiles",
}

var profileAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "CreateProfile")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.CreateProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Created profile %s\n", p.Name)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListProfiles")
		if err != nil {
			return err
		}
		defer a.Close()

		profiles, activeID, err := a.ListProfiles(cmd.Context())
		if err != nil {
			return err
		}

		if len(profiles) == 0 {
			fmt.Println("No profiles. Create one with: certivault profile add NAME")
			return nil
		}

		for _, p := range profiles {
			marker := " "
			if p.ID == activeID {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, p.Name)
		}
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use NAME",
	Short: "Switch the active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "UseProfile")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.UseProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Active profile: %s\n", p.Name)
		return nil
	},
}

// category command
var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a custom category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "AddCategory")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.AddCategory(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Added category %s\n", args[0])
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListCategories")
		if err != nil {
			return err
		}
		defer a.Close()

		categories, err := a.Categories(cmd.Context())
		if err != nil {
			return err
		}

		for _, c := range categories {
			fmt.Println(c)
		}
		return nil
	},
}

// record command
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage certificate records",
}

var recordAddCmd = &cobra.Command{
	Use:   "add [IMAGE]",
	Short: "Capture a certificate",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "AddRecord")
		if err != nil {
			return err
		}
		defer a.Close()

		imagePath := ""
		if len(args) > 0 {
			imagePath = args[0]
		}

		tags, _ := cmd.Flags().GetStringSlice("tag")
		fields := app.RecordFields{Tags: tags}
		fields.Title, _ = cmd.Flags().GetString("title")
		fields.StudentName, _ = cmd.Flags().GetString("student")
		fields.Issuer, _ = cmd.Flags().GetString("issuer")
		fields.Date, _ = cmd.Flags().GetString("date")
		fields.Category, _ = cmd.Flags().GetString("category")
		fields.Subject, _ = cmd.Flags().GetString("subject")
		fields.Summary, _ = cmd.Flags().GetString("summary")

		cert, err := a.AddRecord(cmd.Context(), imagePath, fields)
		if err != nil {
			return err
		}

		fmt.Printf("Created record %q (%s)\n", cert.Title, cert.ID)
		return nil
	},
}

var recordEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a record's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "EditRecord")
		if err != nil {
			return err
		}
		defer a.Close()

		fields := app.RecordFields{}
		fields.Title, _ = cmd.Flags().GetString("title")
		fields.StudentName, _ = cmd.Flags().GetString("student")
		fields.Issuer, _ = cmd.Flags().GetString("issuer")
		fields.Date, _ = cmd.Flags().GetString("date")
		fields.Category, _ = cmd.Flags().GetString("category")
		fields.Subject, _ = cmd.Flags().GetString("subject")
		fields.Summary, _ = cmd.Flags().GetString("summary")
		if cmd.Flags().Changed("tag") {
			tags, _ := cmd.Flags().GetStringSlice("tag")
			if tags == nil {
				tags = []string{}
			}
			fields.Tags = tags
		}

		cert, err := a.EditRecord(cmd.Context(), args[0], fields)
		if err != nil {
			return err
		}

		fmt.Printf("Updated record %q (%s)\n", cert.Title, cert.ID)
		if !cert.Synced {
			fmt.Println("The record will be re-uploaded on the next sync.")
		}
		return nil
	},
}

var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records grouped by year and category",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListRecords")
		if err != nil {
			return err
		}
		defer a.Close()

		query, _ := cmd.Flags().GetString("query")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		showIDs, _ := cmd.Flags().GetBool("ids")

		grouped, err := a.ListRecords(cmd.Context(), query, tags)
		if err != nil {
			return err
		}

		if len(grouped) == 0 {
			fmt.Println("No records found.")
			return nil
		}

		for _, period := range cvault.SortedPeriods(grouped) {
			fmt.Println(period)
			byCategory := grouped[period]
			for _, category := range cvault.SortedCategories(byCategory) {
				fmt.Printf("  %s\n", category)
				for _, cert := range byCategory[category] {
					status := " "
					if cert.Synced {
						status = "✓"
					}
					line := cert.Title
					if cert.Issuer != "" {
						line += " — " + cert.Issuer
					}
					if len(cert.Tags) > 0 {
						line += "  [" + strings.Join(cert.Tags, ", ") + "]"
					}
					if showIDs {
						line += "  (" + cert.ID + ")"
					}
					fmt.Printf("    %s %s\n", status, line)
				}
			}
		}
		return nil
	},
}

// sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror unsynced records to the remote drive",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Sync")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Sync(cmd.Context(), func(entry cvault.LogEntry) {
			fmt.Printf("[%s] %s\n", entry.Status, entry.Message)
		})
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		fmt.Printf("Synced %d record(s), %d failed\n", res.Synced, res.Failed)
		return nil
	},
}

// auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage drive credentials",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a drive bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "SaveToken")
		if err != nil {
			return err
		}
		defer a.Close()

		token, err := promptSecret("Drive bearer token")
		if err != nil {
			return err
		}

		if err := a.SaveToken(token); err != nil {
			return err
		}

		fmt.Println("Token saved.")
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage export encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the export key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "SetupEncryption")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := promptSecret("Passphrase")
		if err != nil {
			return err
		}

		if err := a.SetupEncryption(passphrase); err != nil {
			return err
		}

		fmt.Println("Export keys generated.")
		return nil
	},
}

// export / import commands
var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export the vault state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		a, err := newApp(cmd, "Export")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Export(cmd.Context(), args[0], encrypt); err != nil {
			return err
		}

		fmt.Printf("Exported vault state to %s\n", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a vault state export",
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypted, _ := cmd.Flags().GetBool("encrypted")

		a, err := newApp(cmd, "Import")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase := ""
		if encrypted {
			passphrase, err = promptSecret("Passphrase")
			if err != nil {
				return err
			}
		}

		if err := a.Import(cmd.Context(), args[0], passphrase); err != nil {
			return err
		}

		fmt.Println("Import complete.")
		return nil
	},
	Args: cobra.ExactArgs(1),
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileUseCmd)

	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryListCmd)

	recordAddCmd.Flags().String("title", "", "certificate title")
	recordAddCmd.Flags().String("student", "", "student name")
	recordAddCmd.Flags().String("issuer", "", "issuing organization")
	recordAddCmd.Flags().String("date", "", "award date (YYYY-MM-DD)")
	recordAddCmd.Flags().String("category", "", "record category")
	recordAddCmd.Flags().String("subject", "", "subject")
	recordAddCmd.Flags().String("summary", "", "free-text summary")
	recordAddCmd.Flags().StringSlice("tag", nil, "tag (repeatable)")
	recordEditCmd.Flags().String("title", "", "certificate title")
	recordEditCmd.Flags().String("student", "", "student name")
	recordEditCmd.Flags().String("issuer", "", "issuing organization")
	recordEditCmd.Flags().String("date", "", "award date (YYYY-MM-DD)")
	recordEditCmd.Flags().String("category", "", "record category")
	recordEditCmd.Flags().String("subject", "", "subject")
	recordEditCmd.Flags().String("summary", "", "free-text summary")
	recordEditCmd.Flags().StringSlice("tag", nil, "replacement tag set (repeatable)")
	recordListCmd.Flags().String("query", "", "free-text filter")
	recordListCmd.Flags().StringSlice("tag", nil, "facet filter (repeatable)")
	recordListCmd.Flags().Bool("ids", false, "show record ids")
	recordCmd.AddCommand(recordAddCmd)
	recordCmd.AddCommand(recordEditCmd)
	recordCmd.AddCommand(recordListCmd)

	authCmd.AddCommand(authLoginCmd)
	keysCmd.AddCommand(keysInitCmd)

	exportCmd.Flags().Bool("encrypt", false, "encrypt the export with the vault keys")
	importCmd.Flags().Bool("encrypted", false, "the file is an encrypted export")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
