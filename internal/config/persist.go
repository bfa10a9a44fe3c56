package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/ini"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/scheduler"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/utils"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// EnvPrefix prefixes environment variable overrides, e.g. HPCSS_SBATCH_BIN.
const EnvPrefix = "HPCSS"

// Keys lists the settings understood in the config file.
var Keys = []string{
	"sbatch_bin",
	"ini_name",
	"ack_contract",
	"dry_run",
	"project_root",
}

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (HPCSS_*)
// 3. User config file (~/.config/hpcss/config.yaml)
// 4. System config file (/etc/hpcss/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	for _, sp := range GetConfigSearchPaths() {
		viper.AddConfigPath(sp.Dir)
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("sbatch_bin", "")
	viper.SetDefault("ini_name", ini.DefaultName)
	viper.SetDefault("ack_contract", scheduler.DefaultContract)
	viper.SetDefault("dry_run", false)
	viper.SetDefault("project_root", "")
}

// SearchPath is one directory searched for the config file.
type SearchPath struct {
	Type   string // user, home, system or cwd
	Dir    string
	Path   string
	Exists bool
	InUse  bool
}

// GetConfigSearchPaths returns the config file locations in search order.
func GetConfigSearchPaths() []SearchPath {
	var paths []SearchPath
	add := func(typ, dir string) {
		path := filepath.Join(dir, ConfigFilename+"."+ConfigType)
		_, err := os.Stat(path)
		paths = append(paths, SearchPath{
			Type:   typ,
			Dir:    dir,
			Path:   path,
			Exists: err == nil,
			InUse:  viper.ConfigFileUsed() == path,
		})
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		add("user", filepath.Join(userConfigDir, "hpcss"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		add("home", filepath.Join(home, ini.UserDir))
	}
	add("system", "/etc/hpcss")
	add("cwd", ".")
	return paths
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ini.UserDir, ConfigFilename+"."+ConfigType), nil
	}
	return filepath.Join(userConfigDir, "hpcss", ConfigFilename+"."+ConfigType), nil
}

// SaveConfig saves current Viper config to user config file
func SaveConfig() error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ValidateBinary checks if a binary exists and is executable
func ValidateBinary(binPath string) bool {
	if binPath == "" {
		return false
	}

	if filepath.IsAbs(binPath) {
		return utils.IsExecutable(binPath)
	}

	_, err := exec.LookPath(binPath)
	return err == nil
}

// DetectSbatchBin returns the full path of sbatch from PATH, or "".
func DetectSbatchBin() string {
	if path, err := exec.LookPath("sbatch"); err == nil {
		return path
	}
	return ""
}

// AutoDetectAndSave fills in a missing or broken sbatch_bin of an existing
// config file. Returns true if the file was updated.
func AutoDetectAndSave() (bool, error) {
	if viper.ConfigFileUsed() == "" || ValidateBinary(viper.GetString("sbatch_bin")) {
		return false, nil
	}
	detected := DetectSbatchBin()
	if detected == "" {
		return false, nil
	}
	viper.Set("sbatch_bin", detected)
	if err := SaveConfig(); err != nil {
		return false, err
	}
	return true, nil
}

// ForceDetectAndSave re-detects sbatch from the current PATH and always
// writes the user config file. Returns true if sbatch_bin changed.
func ForceDetectAndSave() (bool, error) {
	updated := false
	if detected := DetectSbatchBin(); detected != "" && detected != viper.GetString("sbatch_bin") {
		viper.Set("sbatch_bin", detected)
		updated = true
	}
	if err := SaveConfig(); err != nil {
		return false, err
	}
	return updated, nil
}

// LoadFromViper loads config from Viper into Global struct
func LoadFromViper() {
	if bin := viper.GetString("sbatch_bin"); bin != "" {
		Global.SbatchBin = bin
	}
	if name := viper.GetString("ini_name"); name != "" {
		Global.IniName = name
	}
	if c := viper.GetInt("ack_contract"); c > 0 {
		Global.Contract = c
	}
	if viper.GetBool("dry_run") {
		Global.DryRun = true
	}
	if root := viper.GetString("project_root"); root != "" {
		Global.ProjectRoot = root
	}
}
