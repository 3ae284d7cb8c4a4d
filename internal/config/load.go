package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Options for loading config. ConfigPath is resolved relative to the
// current directory when not absolute.
type Options struct {
	ConfigPath string
	// Overrides apply last (flags > env > file > defaults). Nil means no
	// CLI overrides.
	Overrides *Overrides
}

// Overrides holds CLI flag values that take precedence over env/file/defaults.
// Only non-nil fields are applied.
type Overrides struct {
	Mode           *string
	StateDir       *string
	BaseFolder     *string
	RemoteEndpoint *string
	LocalEndpoint  *string
	ServerCommand  *string
}

const DefaultConfigFile = ".snapsort.yaml"

// Load builds config with precedence: defaults -> .snapsort.yaml -> env vars
// -> Overrides.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	// Optional local dotenv files for developer ergonomics. Explicit env
	// still wins because godotenv.Load never overwrites existing variables.
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			if err := godotenv.Load(name); err != nil {
				return nil, fmt.Errorf("CONFIG_INVALID: failed loading %s: %w", name, err)
			}
		}
	}

	configPath := strings.TrimSpace(opts.ConfigPath)
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("CONFIG_INVALID: cannot read config file %s: %w", configPath, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("CONFIG_INVALID: malformed YAML in %s: %w", configPath, err)
		}
	}

	applyEnv(&cfg)

	if opts.Overrides != nil {
		applyOverrides(&cfg, opts.Overrides)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("SNAPSORT_MODE")); v != "" {
		cfg.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Remote.APIKey = v
		if cfg.Vision.APIKey == "" {
			cfg.Vision.APIKey = v
		}
	}
	if v := os.Getenv("SNAPSORT_VISION_API_KEY"); v != "" {
		cfg.Vision.APIKey = v
	}
	if v := os.Getenv("SNAPSORT_REMOTE_ENDPOINT"); v != "" {
		cfg.Remote.Endpoint = v
	}
	if v := os.Getenv("SNAPSORT_LOCAL_ENDPOINT"); v != "" {
		cfg.Local.Endpoint = v
	}
	if v := os.Getenv("SNAPSORT_BASE_FOLDER"); v != "" {
		cfg.Organization.BaseFolder = v
	}
	if v := os.Getenv("SNAPSORT_OCR_MIN_WORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Processing.OCRMinWords = n
		}
	}
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o.Mode != nil {
		cfg.Mode = strings.ToLower(strings.TrimSpace(*o.Mode))
	}
	if o.StateDir != nil {
		cfg.StateDir = *o.StateDir
	}
	if o.BaseFolder != nil {
		cfg.Organization.BaseFolder = *o.BaseFolder
	}
	if o.RemoteEndpoint != nil {
		cfg.Remote.Endpoint = *o.RemoteEndpoint
	}
	if o.LocalEndpoint != nil {
		cfg.Local.Endpoint = *o.LocalEndpoint
	}
	if o.ServerCommand != nil {
		cfg.ServerCommand = *o.ServerCommand
	}
}

func validate(cfg *Config) error {
	switch cfg.Mode {
	case "local", "remote":
	default:
		return fmt.Errorf("CONFIG_INVALID: mode must be local or remote, got %q", cfg.Mode)
	}
	if cfg.Processing.OCRMinWords < 0 {
		return fmt.Errorf("CONFIG_INVALID: processing.ocr_min_words must be >= 0")
	}
	if len(cfg.Organization.Categories) == 0 {
		return fmt.Errorf("CONFIG_INVALID: organization.categories must not be empty")
	}
	if strings.TrimSpace(cfg.Organization.BaseFolder) == "" {
		return fmt.Errorf("CONFIG_INVALID: organization.base_folder must not be empty")
	}
	cfg.Organization.BaseFolder = expandHome(cfg.Organization.BaseFolder)
	cfg.StateDir = expandHome(cfg.StateDir)
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
