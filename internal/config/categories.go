package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// CategoryPatterns maps a category name to the regex keyword patterns used
// by the suggest_category classifier. Patterns are matched
// case-insensitively against extracted text.
type CategoryPatterns map[string][]string

// categoriesFile is the on-disk TOML shape:
//
//	[categories.code]
//	description = "Code snippets..."
//	patterns = ['\bdef\s+\w+', ...]
type categoriesFile struct {
	Categories map[string]categoryEntry `toml:"categories"`
}

type categoryEntry struct {
	Description string   `toml:"description"`
	Patterns    []string `toml:"patterns"`
}

// LoadCategoryPatterns returns the keyword pattern table and per-category
// descriptions. When path is empty or the file is absent the built-in
// defaults are used; a malformed file is an error rather than a silent
// fallback.
func LoadCategoryPatterns(path string) (CategoryPatterns, map[string]string, error) {
	if path == "" {
		return defaultCategoryPatterns(), defaultCategoryDescriptions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultCategoryPatterns(), defaultCategoryDescriptions(), nil
		}
		return nil, nil, fmt.Errorf("CONFIG_INVALID: cannot read categories file %s: %w", path, err)
	}
	var file categoriesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("CONFIG_INVALID: malformed TOML in %s: %w", path, err)
	}
	if len(file.Categories) == 0 {
		return defaultCategoryPatterns(), defaultCategoryDescriptions(), nil
	}
	patterns := make(CategoryPatterns, len(file.Categories))
	descriptions := make(map[string]string, len(file.Categories))
	for name, entry := range file.Categories {
		patterns[name] = entry.Patterns
		descriptions[name] = entry.Description
	}
	return patterns, descriptions, nil
}

func defaultCategoryPatterns() CategoryPatterns {
	return CategoryPatterns{
		"code": {
			`\bdef\s+\w+`,
			`\bclass\s+\w+`,
			`\bfunc\s+\w+`,
			`\bfunction\s+\w+`,
			`\bimport\s+`,
			`\bfrom\s+\w+\s+import`,
			`\bconst\s+\w+\s*=`,
			`\blet\s+\w+\s*=`,
			`\bvar\s+\w+\s*=`,
			`\bpublic\s+class`,
			`\bprivate\s+\w+`,
			`<\?php`,
			`#include\s+<`,
			`\breturn\s+\w+`,
			`\bif\s*\(`,
			`\bfor\s*\(`,
			`\bwhile\s*\(`,
		},
		"errors": {
			`\berror\b`,
			`\bexception\b`,
			`\bfailed\b`,
			`\bwarning\b`,
			`\btraceback\b`,
			`\bstack trace\b`,
			`\bsyntaxerror\b`,
			`\bnameerror\b`,
			`\btypeerror\b`,
			`\bvalueerror\b`,
			`\bcritical\b`,
			`\bfatal\b`,
			`\bpanic\b`,
			`\bsegmentation fault\b`,
			`\bnullpointerexception\b`,
			`\bundefined\s+reference`,
		},
		"documentation": {
			`\bapi\s+reference\b`,
			`\bdocumentation\b`,
			`\btutorial\b`,
			`\bguide\b`,
			`\bhow\s+to\b`,
			`\breadme\b`,
			`\bchangelog\b`,
			`\brelease\s+notes\b`,
			`\binstallation\b`,
			`\bquickstart\b`,
			`\bexample\b`,
			`\busage\b`,
			`\bgetting\s+started\b`,
		},
		"design": {
			`\bmockup\b`,
			`\bwireframe\b`,
			`\bprototype\b`,
			`\bui\s+design\b`,
			`\bux\s+design\b`,
			`\bfigma\b`,
			`\bsketch\b`,
			`\bdesign\s+system\b`,
			`\bcolor\s+palette\b`,
			`\btypography\b`,
			`\blayout\b`,
		},
		"communication": {
			`\bslack\b`,
			`\bdiscord\b`,
			`\bteams\b`,
			`\bemail\b`,
			`\bmessage\b`,
			`\bchat\b`,
			`\bconversation\b`,
			`\bmeeting\b`,
			`\bnotification\b`,
			`\bdm\b`,
			`\breply\b`,
			`\bcomment\b`,
		},
		"memes": {
			`\bmeme\b`,
			`\blol\b`,
			`\blmao\b`,
			`\brofl\b`,
			`\bhaha\b`,
			`\bfunny\b`,
			`\bjoke\b`,
			`\bsarcasm\b`,
		},
	}
}

func defaultCategoryDescriptions() map[string]string {
	return map[string]string{
		"code":          "Code snippets, terminal output, IDE screenshots, programming content",
		"errors":        "Error messages, stack traces, warnings, exceptions",
		"documentation": "Documentation pages, technical specs, API references",
		"design":        "UI mockups, design files, graphics, visual assets",
		"communication": "Messages, emails, chat conversations, social media",
		"memes":         "Memes, jokes, funny images",
		"other":         "Miscellaneous screenshots that don't fit other categories",
	}
}
