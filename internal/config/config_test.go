package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"convosim/internal/sampler"
)

// --- Validate ---

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Defaults()
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}
}

func TestValidate_Rounds(t *testing.T) {
	cfg := Defaults()
	cfg.Conversation.Rounds = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for rounds=0")
	}

	cfg.Conversation.Rounds = 1
	if err := Validate(cfg); err != nil {
		t.Fatalf("rounds=1 should be valid: %v", err)
	}
}

func TestValidate_Modes(t *testing.T) {
	for _, mode := range []string{"independent", "cross-seeded"} {
		cfg := Defaults()
		cfg.Conversation.Mode = mode
		if err := Validate(cfg); err != nil {
			t.Fatalf("mode %q should be valid: %v", mode, err)
		}
	}

	cfg := Defaults()
	cfg.Conversation.Mode = "chatty"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.General.LogLevel = "verbose"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestValidate_Participants(t *testing.T) {
	cfg := Defaults()
	cfg.Participants.A.Name = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for missing participant name")
	}

	cfg = Defaults()
	cfg.Participants.B.Corpus = cfg.Participants.A.Corpus
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for shared corpus path")
	}
}

func TestValidate_ExportPattern(t *testing.T) {
	cfg := Defaults()
	cfg.Export.Pattern = "message_[.json"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for malformed glob")
	}

	cfg.Export.Pattern = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for empty pattern")
	}
}

func TestValidate_ModelBounds(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*Config)
	}{
		{"state size zero", func(c *Config) { c.Model.StateSize = 0 }},
		{"state size too big", func(c *Config) { c.Model.StateSize = 9 }},
		{"tries zero", func(c *Config) { c.Model.Tries = 0 }},
		{"ratio zero", func(c *Config) { c.Model.MaxOverlapRatio = 0 }},
		{"ratio above one", func(c *Config) { c.Model.MaxOverlapRatio = 1.5 }},
		{"overlap total zero", func(c *Config) { c.Model.MaxOverlapTotal = 0 }},
		{"min above max", func(c *Config) { c.Model.MinWords = 10; c.Model.MaxWords = 5 }},
		{"negative retries", func(c *Config) { c.Generation.MaxRetries = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.apply(cfg)
			if err := Validate(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Conversation.Rounds = 0
	cfg.Conversation.Mode = "bad"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "conversation.rounds") || !strings.Contains(msg, "conversation.mode") {
		t.Fatalf("expected both problems reported, got: %v", err)
	}
}

func TestValidate_UnboundedRetriesAllowed(t *testing.T) {
	cfg := Defaults()
	cfg.Generation.MaxRetries = 0
	if err := Validate(cfg); err != nil {
		t.Fatalf("maxRetries=0 should be valid: %v", err)
	}
}

// --- Load / Save ---

func TestLoadSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	original := Defaults()
	original.Participants.A.Name = "Ann Example"
	original.Conversation.Rounds = 7

	if err := Save(path, original); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Participants.A.Name != "Ann Example" {
		t.Fatalf("expected 'Ann Example', got %q", loaded.Participants.A.Name)
	}
	if loaded.Conversation.Rounds != 7 {
		t.Fatalf("expected 7 rounds, got %d", loaded.Conversation.Rounds)
	}
}

func TestLoadSave_YAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "convosim.yaml")

	original := Defaults()
	original.Conversation.Mode = "cross-seeded"
	original.Model.MaxOverlapRatio = 0.5

	if err := Save(path, original); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		t.Fatalf("expected YAML output, got JSON:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Conversation.Mode != "cross-seeded" {
		t.Fatalf("expected cross-seeded, got %q", loaded.Conversation.Mode)
	}
	if loaded.Model.MaxOverlapRatio != 0.5 {
		t.Fatalf("expected ratio 0.5, got %v", loaded.Model.MaxOverlapRatio)
	}
}

func TestLoad_PartialYAMLKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "convosim.yml")
	content := `
participants:
  a:
    name: Ann Example
conversation:
  rounds: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Participants.A.Name != "Ann Example" || cfg.Participants.A.Label != "MICHAEL" {
		t.Fatalf("unexpected participant A: %+v", cfg.Participants.A)
	}
	if cfg.Conversation.Rounds != 3 || cfg.Conversation.Mode != "independent" {
		t.Fatalf("unexpected conversation: %+v", cfg.Conversation)
	}
	if cfg.Generation.MaxRetries != 1000 {
		t.Fatalf("expected default maxRetries, got %d", cfg.Generation.MaxRetries)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.json")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	os.WriteFile(path, []byte("{not json}"), 0o644)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoad_ValidatesConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.json")
	content := `{
		"conversation": {
			"mode": "shouting"
		}
	}`
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgFile)
	if err == nil {
		t.Fatal("expected validation error for unknown mode")
	}
}

func TestLoad_WithEnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_CONVOSIM_SENDER", "Ann Example")

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.json")
	content := `{
		"participants": {
			"a": {"name": "${TEST_CONVOSIM_SENDER}", "label": "ANN", "corpus": "ann.txt"},
			"b": {"name": "${TEST_CONVOSIM_OTHER:-Bob Example}", "label": "BOB", "corpus": "bob.txt"}
		}
	}`
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Participants.A.Name != "Ann Example" {
		t.Fatalf("expected 'Ann Example', got %q", cfg.Participants.A.Name)
	}
	if cfg.Participants.B.Name != "Bob Example" {
		t.Fatalf("expected default 'Bob Example', got %q", cfg.Participants.B.Name)
	}
}

func TestResolve(t *testing.T) {
	cfg := Defaults()
	cfg.General.WorkDir = "/data/run"

	if got := cfg.Resolve("ann.txt"); got != filepath.Join("/data/run", "ann.txt") {
		t.Errorf("Resolve(relative) = %q", got)
	}
	if got := cfg.Resolve("/abs/ann.txt"); got != "/abs/ann.txt" {
		t.Errorf("Resolve(absolute) = %q", got)
	}
}

func TestDefaults_SamplerRetryCap(t *testing.T) {
	if got := Defaults().Generation.MaxRetries; got != sampler.DefaultMaxRetries {
		t.Fatalf("generation.maxRetries = %d, want %d", got, sampler.DefaultMaxRetries)
	}
}

func TestExpandPaths_ResolvesHomeInDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Defaults()
	cfg.ExpandPaths()
	if want := filepath.Join(home, ".convosim", "archive.db"); cfg.Archive.DBPath != want {
		t.Fatalf("archive.dbPath = %q, want %q", cfg.Archive.DBPath, want)
	}
	if cfg.General.WorkDir != "." || cfg.Metrics.Path != "convosim.prom" {
		t.Errorf("relative paths changed: workDir=%q metrics=%q", cfg.General.WorkDir, cfg.Metrics.Path)
	}
}

// --- Accessor ---

func TestGetByPath_ValidPaths(t *testing.T) {
	cfg := Defaults()

	val, err := GetByPath(cfg, "conversation.mode")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != "independent" {
		t.Fatalf("expected 'independent', got %v", val)
	}

	val, err = GetByPath(cfg, "participants.b.label")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != "JONATHAN" {
		t.Fatalf("expected 'JONATHAN', got %v", val)
	}
}

func TestGetByPath_InvalidPath(t *testing.T) {
	cfg := Defaults()
	_, err := GetByPath(cfg, "nonexistent.path")
	if err == nil {
		t.Fatal("expected error for nonexistent path")
	}
}

func TestSetByPath_ValidPath(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "participants.a.name", "Ann Example"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if cfg.Participants.A.Name != "Ann Example" {
		t.Fatalf("expected 'Ann Example', got %q", cfg.Participants.A.Name)
	}
}

func TestSetByPath_BoolConversion(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "model.testOutput", "false"); err != nil {
		t.Fatalf("set bool: %v", err)
	}
	if cfg.Model.TestOutput {
		t.Fatal("expected model.testOutput=false")
	}
}

func TestSetByPath_NumberConversion(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "conversation.rounds", "50"); err != nil {
		t.Fatalf("set int: %v", err)
	}
	if cfg.Conversation.Rounds != 50 {
		t.Fatalf("expected 50, got %d", cfg.Conversation.Rounds)
	}
	if err := SetByPath(cfg, "model.maxOverlapRatio", "0.55"); err != nil {
		t.Fatalf("set float: %v", err)
	}
	if cfg.Model.MaxOverlapRatio != 0.55 {
		t.Fatalf("expected 0.55, got %v", cfg.Model.MaxOverlapRatio)
	}
}

func TestSetByPath_UnknownKey(t *testing.T) {
	cfg := Defaults()
	for _, p := range []string{"conversation.speed", "nosuch.key", "participants.c.name"} {
		if err := SetByPath(cfg, p, "1"); err == nil {
			t.Errorf("expected error for %q", p)
		}
	}
}

func TestSetByPath_KeepsSettingType(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "participants.a.label", "true"); err != nil {
		t.Fatalf("set string: %v", err)
	}
	if cfg.Participants.A.Label != "true" {
		t.Fatalf("expected label \"true\", got %q", cfg.Participants.A.Label)
	}
	if err := SetByPath(cfg, "conversation.rounds", "many"); err == nil {
		t.Fatal("expected error for non-numeric rounds")
	}
	if err := SetByPath(cfg, "conversation.rounds", "2.5"); err == nil {
		t.Fatal("expected error for fractional rounds")
	}
	if err := SetByPath(cfg, "model", "x"); err == nil {
		t.Fatal("expected error when setting a section")
	}
}

func TestSetByPath_UnsetLengthBound(t *testing.T) {
	cfg := Defaults()
	if err := SetByPath(cfg, "model.minWords", "4"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if cfg.Model.MinWords != 4 {
		t.Fatalf("expected 4, got %d", cfg.Model.MinWords)
	}
}

// --- ListPaths ---

func TestListPaths_ReturnsAllLeaves(t *testing.T) {
	cfg := Defaults()
	paths := ListPaths(cfg)
	if len(paths) == 0 {
		t.Fatal("expected non-empty paths")
	}

	for _, expected := range []string{"general.logLevel", "participants.a.corpus", "generation.maxRetries", "metrics.enabled"} {
		if _, ok := paths[expected]; !ok {
			t.Errorf("missing expected path: %s", expected)
		}
	}
}

func TestSortedPaths(t *testing.T) {
	keys := SortedPaths(Defaults())
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("paths not sorted at %d: %q > %q", i, keys[i-1], keys[i])
		}
	}
}

// --- ExpandEnvVars ---

func TestExpandEnvVars_SimpleSubstitution(t *testing.T) {
	t.Setenv("TEST_SENDER", "Ann")
	result := ExpandEnvVars(`{"name": "${TEST_SENDER}"}`)
	expected := `{"name": "Ann"}`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_DefaultValue(t *testing.T) {
	os.Unsetenv("NONEXISTENT_VAR_12345")
	result := ExpandEnvVars(`{"rounds": "${NONEXISTENT_VAR_12345:-100}"}`)
	expected := `{"rounds": "100"}`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_SetVarOverridesDefault(t *testing.T) {
	t.Setenv("MY_ROUNDS", "5")
	result := ExpandEnvVars(`{"rounds": "${MY_ROUNDS:-100}"}`)
	expected := `{"rounds": "5"}`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_UnsetVarNoDefault_KeepsOriginal(t *testing.T) {
	os.Unsetenv("TOTALLY_UNSET_VAR_XYZ")
	result := ExpandEnvVars(`"${TOTALLY_UNSET_VAR_XYZ}"`)
	expected := `"${TOTALLY_UNSET_VAR_XYZ}"`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_EmptyVarUsesDefault(t *testing.T) {
	t.Setenv("EMPTY_VAR", "")
	result := ExpandEnvVars(`"${EMPTY_VAR:-fallback}"`)
	expected := `"fallback"`
	if result != expected {
		t.Fatalf("expected %q, got %q", expected, result)
	}
}

func TestExpandEnvVars_DollarSignWithoutBraces(t *testing.T) {
	input := `"$HOME is not substituted"`
	result := ExpandEnvVars(input)
	if result != input {
		t.Fatalf("expected no change for bare $VAR, got %q", result)
	}
}
