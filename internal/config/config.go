package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for convosim.
type Config struct {
	General      GeneralConfig      `json:"general" yaml:"general"`
	Export       ExportConfig       `json:"export" yaml:"export"`
	Participants ParticipantsConfig `json:"participants" yaml:"participants"`
	Conversation ConversationConfig `json:"conversation" yaml:"conversation"`
	Model        ModelConfig        `json:"model" yaml:"model"`
	Generation   GenerationConfig   `json:"generation" yaml:"generation"`
	Archive      ArchiveConfig      `json:"archive" yaml:"archive"`
	Metrics      MetricsConfig      `json:"metrics" yaml:"metrics"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel" yaml:"logLevel"`
	// WorkDir is where relative corpus paths are resolved.
	WorkDir string `json:"workDir" yaml:"workDir"`
}

// ExportConfig locates the message_*.json files of a chat export.
type ExportConfig struct {
	Dir     string `json:"dir" yaml:"dir"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

// ParticipantsConfig names the two people whose messages are imitated.
// A speaks first.
type ParticipantsConfig struct {
	A ParticipantConfig `json:"a" yaml:"a"`
	B ParticipantConfig `json:"b" yaml:"b"`
}

type ParticipantConfig struct {
	Name   string `json:"name" yaml:"name"`     // sender_name in the export, matched exactly
	Label  string `json:"label" yaml:"label"`   // console prefix
	Corpus string `json:"corpus" yaml:"corpus"` // corpus file path
}

type ConversationConfig struct {
	Rounds int    `json:"rounds" yaml:"rounds"`
	Mode   string `json:"mode" yaml:"mode"` // "independent" | "cross-seeded"
}

// ModelConfig tunes the Markov sentence generator.
type ModelConfig struct {
	StateSize       int     `json:"stateSize" yaml:"stateSize"`
	Tries           int     `json:"tries" yaml:"tries"`
	TestOutput      bool    `json:"testOutput" yaml:"testOutput"`
	MaxOverlapRatio float64 `json:"maxOverlapRatio" yaml:"maxOverlapRatio"`
	MaxOverlapTotal int     `json:"maxOverlapTotal" yaml:"maxOverlapTotal"`
	MinWords        int     `json:"minWords" yaml:"minWords"`
	MaxWords        int     `json:"maxWords" yaml:"maxWords"`
}

type GenerationConfig struct {
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"` // 0 = retry forever
}

// ArchiveConfig configures the SQLite message archive.
type ArchiveConfig struct {
	DBPath string `json:"dbPath" yaml:"dbPath"`
}

// MetricsConfig controls the Prometheus textfile dump written after a run.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// DefaultConfigDir returns the default config directory (~/.convosim).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".convosim"
	}
	return filepath.Join(home, ".convosim")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.ExpandPaths()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

// Save writes cfg as YAML or JSON depending on the file extension.
func Save(path string, cfg *Config) error {
	path = ExpandPath(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.General.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Export.Pattern == "" {
		errs = append(errs, "export.pattern is required")
	} else if _, err := filepath.Match(cfg.Export.Pattern, ""); err != nil {
		errs = append(errs, fmt.Sprintf("export.pattern is not a valid glob: %v", err))
	}

	for _, p := range []struct {
		key string
		pc  ParticipantConfig
	}{{"participants.a", cfg.Participants.A}, {"participants.b", cfg.Participants.B}} {
		if p.pc.Name == "" {
			errs = append(errs, p.key+".name is required")
		}
		if p.pc.Label == "" {
			errs = append(errs, p.key+".label is required")
		}
		if p.pc.Corpus == "" {
			errs = append(errs, p.key+".corpus is required")
		}
	}
	if cfg.Participants.A.Corpus != "" && cfg.Participants.A.Corpus == cfg.Participants.B.Corpus {
		errs = append(errs, "participants.a.corpus and participants.b.corpus must differ")
	}

	if cfg.Conversation.Rounds < 1 {
		errs = append(errs, "conversation.rounds must be >= 1")
	}
	switch cfg.Conversation.Mode {
	case "independent", "cross-seeded":
		// valid
	default:
		errs = append(errs, "conversation.mode must be one of: independent, cross-seeded")
	}

	if cfg.Model.StateSize < 1 || cfg.Model.StateSize > 5 {
		errs = append(errs, "model.stateSize must be between 1 and 5")
	}
	if cfg.Model.Tries < 1 {
		errs = append(errs, "model.tries must be >= 1")
	}
	if cfg.Model.MaxOverlapRatio <= 0 || cfg.Model.MaxOverlapRatio > 1 {
		errs = append(errs, "model.maxOverlapRatio must be in (0, 1]")
	}
	if cfg.Model.MaxOverlapTotal < 1 {
		errs = append(errs, "model.maxOverlapTotal must be >= 1")
	}
	if cfg.Model.MinWords < 0 || cfg.Model.MaxWords < 0 {
		errs = append(errs, "model.minWords and model.maxWords must be >= 0")
	} else if cfg.Model.MaxWords > 0 && cfg.Model.MinWords > cfg.Model.MaxWords {
		errs = append(errs, "model.minWords must not exceed model.maxWords")
	}

	if cfg.Generation.MaxRetries < 0 {
		errs = append(errs, "generation.maxRetries must be >= 0 (0 = unbounded)")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		errs = append(errs, "metrics.path is required when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// ExpandPaths resolves ~/ in every path setting. Load calls it; a config
// built from Defaults needs it before use.
func (c *Config) ExpandPaths() {
	c.General.WorkDir = ExpandPath(c.General.WorkDir)
	c.Export.Dir = ExpandPath(c.Export.Dir)
	c.Archive.DBPath = ExpandPath(c.Archive.DBPath)
	c.Metrics.Path = ExpandPath(c.Metrics.Path)
}

// Resolve joins a relative path onto general.workDir.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.General.WorkDir == "" {
		return path
	}
	return filepath.Join(c.General.WorkDir, path)
}
