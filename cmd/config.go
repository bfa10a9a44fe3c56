package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/config"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/ini"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/scheduler"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/utils"
)

var showPath bool

// configKeys is the list of known configuration keys for shell completion
var configKeys = config.Keys

// configKeysCompletion returns config keys for shell completion
func configKeysCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return configKeys, cobra.ShellCompDirectiveNoFileComp
	}
	if len(args) == 1 {
		if vals := configValueCompletion(args[0]); vals != nil {
			return vals, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveDefault
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// configValueCompletion returns suggested values for a config key
func configValueCompletion(key string) []string {
	switch key {
	case "dry_run":
		return []string{"true", "false"}
	case "ack_contract":
		var out []string
		for _, v := range scheduler.Contracts() {
			out = append(out, strconv.Itoa(v.Version))
		}
		return out
	case "ini_name":
		return []string{ini.DefaultName}
	default:
		return nil
	}
}

// getConfigEnvVars returns the environment variables overriding config keys.
func getConfigEnvVars() []string {
	vars := make([]string, 0, len(configKeys))
	for _, key := range configKeys {
		vars = append(vars, config.EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	sort.Strings(vars)
	return vars
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage hpcss configuration",
	Long: `Manage hpcss settings and inspect the job INI file.

Settings priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (HPCSS_*)
  3. Config file (~/.config/hpcss/config.yaml, ~/.hpcss, /etc/hpcss or .)
  4. Defaults

Job options such as --partition or --gmx-exe are not settings; they live in
the INI file (default hpcssrc.ini). See 'hpcss config ini'.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display current configuration values and their sources.

Shows:
  - Config file search paths and which one is in use
  - All settings with the values in effect
  - Environment variable overrides`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if showPath {
			configPath, err := config.GetUserConfigPath()
			if err != nil {
				utils.PrintError("Failed to get config path: %v", err)
				os.Exit(1)
			}
			fmt.Println(configPath)
			return
		}

		fmt.Println(utils.StyleTitle("Config File Search Paths:"))
		foundActive := false
		for i, sp := range config.GetConfigSearchPaths() {
			status := ""
			if sp.InUse {
				status = " " + utils.StyleSuccess("← in use")
				foundActive = true
			} else if sp.Exists {
				status = " " + utils.StyleInfo("(exists)")
			}
			fmt.Printf("  %d. [%s] %s%s\n", i+1, sp.Type, sp.Path, status)
		}
		if !foundActive {
			fmt.Printf("  %s (use 'hpcss config init' to create)\n", utils.StyleWarning("No config file found"))
		}
		fmt.Println()

		fmt.Println(utils.StyleTitle("Current Configuration:"))
		sbatchBin := config.Global.SbatchBin
		if sbatchBin == "" {
			sbatchBin = "sbatch (from PATH)"
		}
		fmt.Printf("  sbatch_bin:    %s\n", sbatchBin)
		fmt.Printf("  ini_name:      %s\n", config.Global.IniName)
		fmt.Printf("  ack_contract:  %d\n", config.Global.Contract)
		fmt.Printf("  dry_run:       %v\n", config.Global.DryRun)
		fmt.Printf("  project_root:  %s\n", config.Global.ProjectRoot)
		fmt.Println()

		fmt.Println(utils.StyleTitle("Derived Paths:"))
		fmt.Printf("  bash:          %s\n", config.Global.BashDir())
		fmt.Printf("  lmod:          %s\n", config.Global.LmodFile(""))
		fmt.Printf("  mdrun script:  %s\n", config.Global.MdrunScript())
		fmt.Printf("  analysis:      %s\n", config.Global.AnalysisDir())
		fmt.Println()

		fmt.Println(utils.StyleTitle("Environment Variable Overrides:"))
		hasEnvOverrides := false
		for _, envVar := range getConfigEnvVars() {
			if val := os.Getenv(envVar); val != "" {
				fmt.Printf("  %s=%s\n", envVar, val)
				hasEnvOverrides = true
			}
		}
		if !hasEnvOverrides {
			fmt.Printf("  %s\n", utils.StyleInfo("none"))
		}
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value.

Examples:
  hpcss config get sbatch_bin
  hpcss config get ini_name`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: configKeysCompletion,
	Run: func(cmd *cobra.Command, args []string) {
		value := viper.Get(args[0])
		if value == nil {
			utils.PrintError("Unknown config key: %s", args[0])
			os.Exit(1)
		}
		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it to the user config file.

Examples:
  hpcss config set sbatch_bin /usr/bin/sbatch
  hpcss config set ini_name myjobs.ini
  hpcss config set ack_contract 2`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: configKeysCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := validateConfigValue(key, value); err != nil {
			return err
		}
		viper.Set(key, value)
		if err := config.SaveConfig(); err != nil {
			return err
		}
		configPath, _ := config.GetUserConfigPath()
		utils.PrintSuccess("Set %s = %s", utils.StyleInfo(key), utils.StyleInfo(value))
		utils.PrintNote("Config saved to: %s", configPath)
		return nil
	},
}

// validateConfigValue rejects values that would break every later run.
func validateConfigValue(key, value string) error {
	switch key {
	case "sbatch_bin":
		if !config.ValidateBinary(value) {
			utils.PrintWarning("%s is not an executable file", value)
		}
	case "ack_contract":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("ack_contract must be a number: %q", value)
		}
		if _, err := scheduler.Contract(v); err != nil {
			return err
		}
	case "dry_run":
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("dry_run must be true or false: %q", value)
		}
	case "ini_name", "project_root":
		if value == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	default:
		utils.PrintWarning("'%s' is not a standard config key", key)
	}
	return nil
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with defaults",
	Long: `Create the user config file with default values and the sbatch binary
detected from PATH.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			utils.PrintError("Failed to get config path: %v", err)
			os.Exit(1)
		}

		if _, err := os.Stat(configPath); err == nil {
			utils.PrintWarning("Config file already exists: %s", configPath)
			fmt.Print("Overwrite? [y/N]: ")
			var response string
			fmt.Scanln(&response)
			response = strings.ToLower(strings.TrimSpace(response))
			if response != "y" && response != "yes" {
				utils.PrintNote("Cancelled")
				return
			}
		}

		updated, err := config.ForceDetectAndSave()
		if err != nil {
			utils.PrintError("Failed to save config: %v", err)
			os.Exit(1)
		}
		if updated {
			utils.PrintSuccess("Config file created with auto-detected settings")
		} else {
			utils.PrintSuccess("Config file created")
		}
		fmt.Printf("  Location: %s\n", utils.StylePath(configPath))
		fmt.Println()
		fmt.Println(utils.StyleTitle("Detected settings:"))
		if bin := viper.GetString("sbatch_bin"); bin != "" {
			fmt.Printf("  sbatch: %s\n", bin)
		} else {
			fmt.Printf("  sbatch: %s\n", utils.StyleWarning("not found"))
		}
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit config file in default editor",
	Long:  "Open the configuration file in your default text editor ($EDITOR)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			utils.PrintError("Failed to get config path: %v", err)
			os.Exit(1)
		}

		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			utils.PrintNote("Config file doesn't exist, creating it first...")
			if err := config.SaveConfig(); err != nil {
				utils.PrintError("Failed to create config: %v", err)
				os.Exit(1)
			}
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}
		editorCmd := exec.Command(editor, configPath)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr
		if err := editorCmd.Run(); err != nil {
			utils.PrintError("Failed to open editor: %v", err)
			os.Exit(1)
		}
	},
}

var configIniCmd = &cobra.Command{
	Use:   "ini",
	Short: "Show the job INI file in use",
	Long: `Show where the job INI file is searched for and list the options of
the first one found, with the line each option is set on.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		home, _ := os.UserHomeDir()

		fmt.Println(utils.StyleTitle("INI File Search Paths:"))
		var inUse string
		for i, c := range ini.Candidates(cwd, home, config.Global.ProjectRoot, config.Global.IniName) {
			status := ""
			switch {
			case c.Exists && inUse == "":
				inUse = c.Path
				status = " " + utils.StyleSuccess("← in use")
			case c.Exists:
				status = " " + utils.StyleInfo("(exists)")
			}
			fmt.Printf("  %d. [%s] %s%s\n", i+1, c.Type, c.Path, status)
		}
		if inUse == "" {
			fmt.Printf("  %s\n", utils.StyleWarning("No INI file found; built-in defaults apply"))
			return nil
		}

		doc, err := ini.ParseFile(inUse)
		if err != nil {
			return err
		}
		for _, name := range doc.Sections() {
			sec, _ := doc.Section(name)
			fmt.Println()
			fmt.Println(utils.StyleTitle("[" + name + "]"))
			for _, key := range sec.Keys() {
				val, _ := sec.Get(key)
				fmt.Printf("  %s = %s  %s\n", key, val, utils.StyleDebug(fmt.Sprintf("(line %d)", sec.Line(key))))
			}
		}
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Check that sbatch is accessible, the project layout exists and the INI file parses",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		valid := true
		ok := func(format string, a ...any) {
			if !utils.QuietMode {
				fmt.Printf("%s %s\n", utils.StyleSuccess("✓"), fmt.Sprintf(format, a...))
			}
		}
		fail := func(format string, a ...any) {
			fmt.Printf("%s %s\n", utils.StyleError("✗"), fmt.Sprintf(format, a...))
			valid = false
		}

		if !utils.QuietMode {
			fmt.Println(utils.StyleTitle("Validating configuration..."))
			fmt.Println()
		}

		sbatchBin := config.Global.SbatchBin
		if sbatchBin == "" {
			sbatchBin = "sbatch"
		}
		if config.ValidateBinary(sbatchBin) {
			ok("sbatch binary: %s", sbatchBin)
		} else {
			fail("sbatch binary not found: %s", sbatchBin)
		}

		if _, err := scheduler.Contract(config.Global.Contract); err != nil {
			fail("%v", err)
		} else {
			ok("Acknowledgement format: %d", config.Global.Contract)
		}

		for _, dir := range []string{config.Global.BashDir(), config.Global.LmodFile("")} {
			if utils.DirExists(dir) {
				ok("Directory: %s", dir)
			} else {
				fail("Directory not found: %s", dir)
			}
		}

		cwd, _ := os.Getwd()
		home, _ := os.UserHomeDir()
		if path, found := ini.FindConfig(cwd, home, config.Global.ProjectRoot, config.Global.IniName); found {
			if _, err := ini.ParseFile(path); err != nil {
				fail("%v", err)
			} else {
				ok("INI file: %s", path)
			}
		} else if !utils.QuietMode {
			fmt.Printf("%s INI file: %s\n", utils.StyleWarning("⚠"), "not found")
		}

		if !utils.QuietMode {
			fmt.Println()
		}
		if !valid {
			utils.PrintError("Configuration has errors")
			os.Exit(1)
		}
		if !utils.QuietMode {
			utils.PrintSuccess("Configuration is valid")
		}
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&showPath, "path", false, "Show only the config file path")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configIniCmd)
	configCmd.AddCommand(configValidateCmd)

	rootCmd.AddCommand(configCmd)
}
