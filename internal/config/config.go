package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the complete forge configuration.
type Config struct {
	General   GeneralConfig            `toml:"general"`
	Output    OutputConfig             `toml:"output"`
	Dashboard DashboardConfig          `toml:"dashboard"`
	Managers  map[string]ManagerConfig `toml:"managers"`
	Aliases   map[string]string        `toml:"aliases"`
}

// GeneralConfig contains general forge settings.
type GeneralConfig struct {
	// CatalogPath overrides the default apps.yaml location.
	CatalogPath string `toml:"catalog_path"`

	// AutoConfirm skips confirmation prompts when true (like -y flag).
	AutoConfirm bool `toml:"auto_confirm"`

	// DryRun shows what would happen without executing when true.
	DryRun bool `toml:"dry_run"`

	// Snapshots enables automatic snapshot creation before operations.
	Snapshots bool `toml:"snapshots"`

	// NetworkRetries is how many times network-classified failures are retried.
	NetworkRetries int `toml:"network_retries"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	// Color enables colored output (respects NO_COLOR env var).
	Color bool `toml:"color"`

	// Unicode enables unicode symbols in output.
	Unicode bool `toml:"unicode"`

	// Verbose enables detailed output.
	Verbose bool `toml:"verbose"`
}

// DashboardConfig contains settings for the local web dashboard.
type DashboardConfig struct {
	// Port the dashboard server listens on.
	Port int `toml:"port"`

	// BindAddress restricts which interfaces the server binds to.
	BindAddress string `toml:"bind_address"`

	// ProgressPath overrides where the shared progress file lives.
	ProgressPath string `toml:"progress_path"`

	// PollInterval is the dashboard poll interval in seconds.
	PollInterval int `toml:"poll_interval"`

	// AutoSnapshotSchedule is a cron expression for periodic snapshots
	// while the dashboard server is running. Empty disables scheduling.
	AutoSnapshotSchedule string `toml:"auto_snapshot_schedule"`
}

// ManagerConfig contains per-manager settings.
type ManagerConfig struct {
	// UseNala uses nala instead of apt if available. APT only.
	UseNala bool `toml:"use_nala"`

	// AllowClassic allows classic confinement for Snap packages.
	AllowClassic bool `toml:"allow_classic"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			AutoConfirm:    false,
			DryRun:         false,
			Snapshots:      true,
			NetworkRetries: 3,
		},
		Output: OutputConfig{
			Color:   true,
			Unicode: true,
			Verbose: false,
		},
		Dashboard: DashboardConfig{
			Port:         8080,
			BindAddress:  "127.0.0.1",
			PollInterval: 2,
		},
		Managers: map[string]ManagerConfig{
			"apt":  {UseNala: false},
			"snap": {AllowClassic: false},
		},
		Aliases: map[string]string{},
	}
}

// Load loads the configuration from the default path.
// If the config file doesn't exist, it returns the default configuration.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration from a specific path.
// If the config file doesn't exist, it returns the default configuration.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// ResolveAlias returns the actual package name for an alias, or the original name if no alias exists.
func (c *Config) ResolveAlias(pkg string) string {
	if alias, ok := c.Aliases[pkg]; ok {
		return alias
	}
	return pkg
}

// ResolveAliases resolves all aliases in a list of package names.
func (c *Config) ResolveAliases(packages []string) []string {
	resolved := make([]string, len(packages))
	for i, pkg := range packages {
		resolved[i] = c.ResolveAlias(pkg)
	}
	return resolved
}

// GetManagerConfig returns the configuration for a specific manager.
// Returns an empty config if no configuration exists for the manager.
func (c *Config) GetManagerConfig(name string) ManagerConfig {
	if cfg, ok := c.Managers[name]; ok {
		return cfg
	}
	return ManagerConfig{}
}

// ShouldUseColor returns true if colored output should be used.
// Respects the NO_COLOR environment variable.
func (c *Config) ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return c.Output.Color
}
