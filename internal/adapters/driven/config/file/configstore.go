package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "prsync.toml"

// ConfigStore holds the raw TOML configuration as dot-notation keys,
// e.g. [sync] repos = [...] is stored under "sync.repos".
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore reads the TOML file at path. A missing file yields an
// empty store. If path is empty, DefaultPath is used.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		path = DefaultPath
	}
	s := &ConfigStore{
		filePath: path,
		data:     make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load (re)reads configuration from the TOML file.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidInput, s.filePath, err)
	}

	s.data = flattenMap(loaded, "")
	return nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// Set overrides a value in memory. The file is not rewritten.
func (s *ConfigStore) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}

	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// GetInt retrieves an integer configuration value.
// Strings are parsed, so environment overrides work too.
func (s *ConfigStore) GetInt(key string) (int, error) {
	val, ok := s.Get(key)
	if !ok {
		return 0, nil
	}

	// TOML integers are parsed as int64
	switch v := val.(type) {
	case int64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %q is not an integer", domain.ErrInvalidInput, key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s: %v is not an integer", domain.ErrInvalidInput, key, val)
	}
}

// GetFloat retrieves a numeric configuration value.
func (s *ConfigStore) GetFloat(key string) (float64, error) {
	val, ok := s.Get(key)
	if !ok {
		return 0, nil
	}

	switch v := val.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %q is not a number", domain.ErrInvalidInput, key, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %s: %v is not a number", domain.ErrInvalidInput, key, val)
	}
}

// GetBool retrieves a boolean configuration value, or def when unset.
func (s *ConfigStore) GetBool(key string, def bool) (bool, error) {
	val, ok := s.Get(key)
	if !ok {
		return def, nil
	}

	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: %s: %q is not a boolean", domain.ErrInvalidInput, key, v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: %s: %v is not a boolean", domain.ErrInvalidInput, key, val)
	}
}

// GetDuration retrieves a duration written as a Go duration string
// ("90m") or a number of days ("7d").
// Any other value type is rejected.
func (s *ConfigStore) GetDuration(key string, def time.Duration) (time.Duration, error) {
	val, ok := s.Get(key)
	if !ok {
		return def, nil
	}

	str, ok := val.(string)
	if !ok {
		return 0, fmt.Errorf("%w: %s: %v is not a duration such as \"24h\" or \"7d\"", domain.ErrInvalidInput, key, val)
	}
	if str == "" {
		return def, nil
	}
	d, err := domain.ParsePeriod(str)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
