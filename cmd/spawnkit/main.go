package main

import (
	"fmt"
	"os"
	"strings"

	"spawnkit/internal/app"
	"spawnkit/internal/config"
	"spawnkit/internal/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "AssetAdd", "Import").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts on stderr and reads a passphrase without echo.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pw), nil
}

// newTable returns a table writer configured for terminal output.
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	return t
}

var rootCmd = &cobra.Command{
	Use:   "spawnkit",
	Short: "Local configuration store for streaming overlay spawns",
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
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Store:      %s\n", cfg.Store.Type)
		fmt.Printf("Sync:       %s\n", cfg.Sync.Type)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		return nil
	},
}

// setup-keys command
var setupKeysCmd = &cobra.Command{
	Use:   "setup-keys",
	Short: "Generate the encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetupKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase for private key: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.SetupKeys(passphrase); err != nil {
			return fmt.Errorf("setting up keys: %w", err)
		}
		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// asset commands
var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage media assets",
}

var assetAddCmd = &cobra.Command{
	Use:   "add NAME PATH",
	Short: "Register a media asset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		isURL, _ := cmd.Flags().GetBool("url")

		a, err := newApp("AssetAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		asset, err := a.Service().AddAsset(args[0], args[1], isURL, model.AssetType(typ), model.PartialProperties{})
		if err != nil {
			return fmt.Errorf("adding asset: %w", err)
		}
		fmt.Printf("Added asset %s (%s)\n", asset.Name, asset.ID)
		return nil
	},
}

var assetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List media assets",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AssetList")
		if err != nil {
			return err
		}
		defer a.Close()

		assets, err := a.Service().GetAssets()
		if err != nil {
			return err
		}
		if len(assets) == 0 {
			fmt.Println("No assets.")
			return nil
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Name", "Type", "Path"})
		for _, as := range assets {
			t.AppendRow(table.Row{as.ID, as.Name, as.Type, as.Path})
		}
		t.Render()
		return nil
	},
}

var assetRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a media asset and detach it everywhere",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AssetDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().DeleteAsset(args[0]); err != nil {
			return fmt.Errorf("deleting asset: %w", err)
		}
		fmt.Printf("Deleted asset %s\n", args[0])
		return nil
	},
}

// profile commands
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage spawn profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a spawn profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")

		a, err := newApp("ProfileCreate")
		if err != nil {
			return err
		}
		defer a.Close()

		profile, err := a.Service().CreateProfile(args[0], description)
		if err != nil {
			return fmt.Errorf("creating profile: %w", err)
		}
		fmt.Printf("Created profile %s (%s)\n", profile.Name, profile.ID)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List spawn profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ProfileList")
		if err != nil {
			return err
		}
		defer a.Close()

		profiles, err := a.Service().GetProfiles()
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles.")
			return nil
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Name", "Spawns", "Active", "Modified"})
		for _, p := range profiles {
			active := ""
			if p.IsActive {
				active = "*"
			}
			t.AppendRow(table.Row{p.ID, p.Name, len(p.Spawns), active, p.LastModified.Format("2006-01-02 15:04:05")})
		}
		t.Render()
		return nil
	},
}

var profileRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a spawn profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ProfileDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().DeleteProfile(args[0]); err != nil {
			return fmt.Errorf("deleting profile: %w", err)
		}
		fmt.Printf("Deleted profile %s\n", args[0])
		return nil
	},
}

var profileActivateCmd = &cobra.Command{
	Use:   "activate ID",
	Short: "Set the active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ProfileActivate")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().SetActiveProfile(args[0]); err != nil {
			return fmt.Errorf("activating profile: %w", err)
		}
		fmt.Printf("Activated profile %s\n", args[0])
		return nil
	},
}

// spawn commands
var spawnCmd = &cobra.Command{
	Use:   "spawn",
	Short: "Manage spawns within a profile",
}

var spawnCreateCmd = &cobra.Command{
	Use:   "create PROFILE_ID NAME",
	Short: "Create a spawn",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		duration, _ := cmd.Flags().GetInt64("duration")

		a, err := newApp("SpawnCreate")
		if err != nil {
			return err
		}
		defer a.Close()

		sp, err := a.Service().CreateSpawn(args[0], args[1], description, model.ManualTrigger(), duration)
		if err != nil {
			return fmt.Errorf("creating spawn: %w", err)
		}
		fmt.Printf("Created spawn %s (%s)\n", sp.Name, sp.ID)
		return nil
	},
}

var spawnListCmd = &cobra.Command{
	Use:   "list PROFILE_ID",
	Short: "List spawns in a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SpawnList")
		if err != nil {
			return err
		}
		defer a.Close()

		profile, err := a.Service().GetProfile(args[0])
		if err != nil {
			return err
		}
		if len(profile.Spawns) == 0 {
			fmt.Println("No spawns.")
			return nil
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Name", "Enabled", "Trigger", "Duration", "Assets"})
		for _, sp := range profile.Spawns {
			t.AppendRow(table.Row{sp.ID, sp.Name, sp.Enabled, sp.Trigger.Type, sp.Duration, len(sp.Assets)})
		}
		t.Render()
		return nil
	},
}

var spawnRmCmd = &cobra.Command{
	Use:   "rm PROFILE_ID SPAWN_ID",
	Short: "Delete a spawn",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SpawnDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().DeleteSpawn(args[0], args[1]); err != nil {
			return fmt.Errorf("deleting spawn: %w", err)
		}
		fmt.Printf("Deleted spawn %s\n", args[1])
		return nil
	},
}

var spawnEnableCmd = &cobra.Command{
	Use:   "enable PROFILE_ID SPAWN_ID",
	Short: "Enable a spawn",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setSpawnEnabled(args[0], args[1], true)
	},
}

var spawnDisableCmd = &cobra.Command{
	Use:   "disable PROFILE_ID SPAWN_ID",
	Short: "Disable a spawn",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setSpawnEnabled(args[0], args[1], false)
	},
}

func setSpawnEnabled(profileID, spawnID string, enabled bool) error {
	a, err := newApp("SpawnSetEnabled")
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Service().SetSpawnEnabled(profileID, spawnID, enabled); err != nil {
		return fmt.Errorf("updating spawn: %w", err)
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Printf("Spawn %s %s\n", spawnID, state)
	return nil
}

var spawnAttachCmd = &cobra.Command{
	Use:   "attach PROFILE_ID SPAWN_ID ASSET_ID",
	Short: "Attach an asset to a spawn",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SpawnAttach")
		if err != nil {
			return err
		}
		defer a.Close()

		placement, err := a.Service().AttachAsset(args[0], args[1], args[2])
		if err != nil {
			return fmt.Errorf("attaching asset: %w", err)
		}
		fmt.Printf("Attached asset as placement %s (order %d)\n", placement.ID, placement.Order)
		return nil
	},
}

var spawnDetachCmd = &cobra.Command{
	Use:   "detach PROFILE_ID SPAWN_ID PLACEMENT_ID",
	Short: "Detach an asset placement from a spawn",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SpawnDetach")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().DetachAsset(args[0], args[1], args[2]); err != nil {
			return fmt.Errorf("detaching asset: %w", err)
		}
		fmt.Printf("Detached placement %s\n", args[2])
		return nil
	},
}

// resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve PROFILE_ID SPAWN_ID PLACEMENT_ID",
	Short: "Show the effective properties for an asset placement",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Resolve")
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.Service().ResolvePlacement(args[0], args[1], args[2])
		if err != nil {
			return fmt.Errorf("resolving placement: %w", err)
		}

		p := r.Properties
		t := newTable()
		t.AppendHeader(table.Row{"Property", "Value"})
		t.AppendRows([]table.Row{
			{"duration", r.Duration},
			{"width", p.Width},
			{"height", p.Height},
			{"x", p.X},
			{"y", p.Y},
			{"scale", p.Scale},
			{"positionMode", p.PositionMode},
			{"volume", p.Volume},
			{"loop", p.Loop},
			{"autoplay", p.Autoplay},
			{"muted", p.Muted},
		})
		t.Render()
		return nil
	},
}

// export / import commands
var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export the store to a bundle file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ExportToFile(args[0]); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the store contents from a bundle file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Import")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ImportFromFile(args[0]); err != nil {
			return err
		}
		fmt.Printf("Imported from %s\n", args[0])
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Recover from an interrupted import",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RestoreFromBackup")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().RestoreFromBackup(); err != nil {
			return err
		}
		fmt.Println("Restored store from import backup.")
		return nil
	},
}

// sync commands
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the store bundle to the sync target",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Push")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Push(); err != nil {
			return err
		}
		fmt.Println("Pushed bundle to sync target.")
		return nil
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download the store bundle from the sync target and import it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Pull")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase := ""
		if strings.TrimSpace(os.Getenv("SPAWNKIT_PASSPHRASE")) != "" {
			passphrase = os.Getenv("SPAWNKIT_PASSPHRASE")
		} else {
			passphrase, err = readPassphrase("Passphrase for private key (empty if unencrypted): ")
			if err != nil {
				return err
			}
		}

		if err := a.Pull(passphrase); err != nil {
			return err
		}
		fmt.Println("Pulled and imported bundle.")
		return nil
	},
}

var syncValidateCmd = &cobra.Command{
	Use:   "sync-validate",
	Short: "Verify the sync target is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SyncValidate")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ValidateSync(); err != nil {
			return err
		}
		fmt.Println("Sync target OK.")
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// asset subcommands
	assetCmd.AddCommand(assetAddCmd)
	assetAddCmd.Flags().String("type", "image", "Asset type: image, video, or audio")
	assetAddCmd.Flags().Bool("url", false, "Treat PATH as a URL")
	assetCmd.AddCommand(assetListCmd)
	assetCmd.AddCommand(assetRmCmd)

	// profile subcommands
	profileCmd.AddCommand(profileCreateCmd)
	profileCreateCmd.Flags().String("description", "", "Profile description")
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileRmCmd)
	profileCmd.AddCommand(profileActivateCmd)

	// spawn subcommands
	spawnCmd.AddCommand(spawnCreateCmd)
	spawnCreateCmd.Flags().String("description", "", "Spawn description")
	spawnCreateCmd.Flags().Int64("duration", 5000, "Display duration in milliseconds")
	spawnCmd.AddCommand(spawnListCmd)
	spawnCmd.AddCommand(spawnRmCmd)
	spawnCmd.AddCommand(spawnEnableCmd)
	spawnCmd.AddCommand(spawnDisableCmd)
	spawnCmd.AddCommand(spawnAttachCmd)
	spawnCmd.AddCommand(spawnDetachCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(setupKeysCmd)
	rootCmd.AddCommand(assetCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(spawnCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(syncValidateCmd)
}
