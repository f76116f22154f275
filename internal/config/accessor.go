package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// tree returns cfg in its JSON object form, keyed like the config file.
func tree(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// locate returns the section holding the last key of a dot path.
func locate(m map[string]any, path string) (map[string]any, string, error) {
	parts := strings.Split(path, ".")
	for _, key := range parts[:len(parts)-1] {
		next, ok := m[key].(map[string]any)
		if !ok {
			return nil, "", fmt.Errorf("unknown config key: %s", path)
		}
		m = next
	}
	last := parts[len(parts)-1]
	if _, ok := m[last]; !ok {
		return nil, "", fmt.Errorf("unknown config key: %s", path)
	}
	return m, last, nil
}

// GetByPath retrieves a config value by dot-notation path (e.g. "conversation.mode").
// A section path returns the whole section.
func GetByPath(cfg *Config, path string) (any, error) {
	m, err := tree(cfg)
	if err != nil {
		return nil, err
	}
	section, key, err := locate(m, path)
	if err != nil {
		return nil, err
	}
	return section[key], nil
}

// SetByPath parses value as the type of the setting it replaces and stores it.
// Sections and unknown keys cannot be set.
func SetByPath(cfg *Config, path, value string) error {
	m, err := tree(cfg)
	if err != nil {
		return err
	}
	section, key, err := locate(m, path)
	if err != nil {
		return err
	}

	switch section[key].(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false, got %q", path, value)
		}
		section[key] = b
	case float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s expects a number, got %q", path, value)
		}
		section[key] = f
	case string:
		section[key] = value
	default:
		return fmt.Errorf("%s is a section, set one of its keys", path)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ListPaths returns every setting keyed by its dot path.
func ListPaths(cfg *Config) map[string]any {
	m, err := tree(cfg)
	if err != nil {
		return nil
	}
	out := make(map[string]any)
	for section, v := range m {
		for key, leaf := range v.(map[string]any) {
			if sub, ok := leaf.(map[string]any); ok {
				for k, l := range sub {
					out[section+"."+key+"."+k] = l
				}
				continue
			}
			out[section+"."+key] = leaf
		}
	}
	return out
}

// SortedPaths returns the keys of ListPaths in lexical order.
func SortedPaths(cfg *Config) []string {
	paths := ListPaths(cfg)
	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
