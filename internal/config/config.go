package config

import (
	"os"
	"path/filepath"
)

// Config is the resolved runtime configuration shared by the agent CLI and
// the tool server. Precedence: flags > env > file > defaults.
type Config struct {
	// Mode selects the language-model pairing for a session: "remote"
	// (tool-capable backend, full tool set) or "local" (basic chat, no
	// tools). Fixed for the lifetime of a session.
	Mode string `yaml:"mode"`

	Processing   Processing   `yaml:"processing"`
	Organization Organization `yaml:"organization"`
	Remote       Remote       `yaml:"remote"`
	Local        Local        `yaml:"local"`
	Vision       Vision       `yaml:"vision"`

	// StateDir holds the history database, session files and logs.
	// Defaults to ~/.snapsort.
	StateDir string `yaml:"state_dir"`
	// ServerCommand is the command line used to spawn the tool server
	// subprocess. Empty means "snapsortd serve" resolved from PATH or the
	// local source tree.
	ServerCommand string `yaml:"server_command"`
	// CategoriesPath points at an optional TOML file overriding the
	// built-in category keyword patterns.
	CategoriesPath string `yaml:"categories_path"`
	LogLevel       string `yaml:"log_level"`
}

type Processing struct {
	// OCRMinWords is the closed-interval word threshold: a fast-path result
	// with at least this many words is accepted without vision fallback.
	OCRMinWords  int    `yaml:"ocr_min_words"`
	TesseractBin string `yaml:"tesseract_bin"`
	OCRLanguage  string `yaml:"ocr_language"`
}

type Organization struct {
	BaseFolder    string   `yaml:"base_folder"`
	Categories    []string `yaml:"categories"`
	KeepOriginals bool     `yaml:"keep_originals"`
}

type Remote struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"-"`
	Model    string `yaml:"model"`
}

type Local struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

type Vision struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"-"`
	Model    string `yaml:"model"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Mode: "remote",
		Processing: Processing{
			OCRMinWords:  10,
			TesseractBin: "tesseract",
			OCRLanguage:  "eng",
		},
		Organization: Organization{
			BaseFolder:    filepath.Join(home, "Screenshots", "organized"),
			Categories:    []string{"code", "errors", "documentation", "design", "communication", "memes", "other"},
			KeepOriginals: true,
		},
		Remote: Remote{
			Model: "gpt-4o",
		},
		Local: Local{
			Endpoint: "http://127.0.0.1:11434/v1",
			Model:    "phi-4",
		},
		Vision: Vision{
			Model: "gpt-4o-mini",
		},
		StateDir: filepath.Join(home, ".snapsort"),
		LogLevel: "info",
	}
}

// DefaultCategory is the fallback when no keyword pattern matches.
const DefaultCategory = "other"
