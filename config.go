package pathio

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// defaultConfigPaths are tried in order when ParseConfig gets no path.
var defaultConfigPaths = []string{"~/.pathio.yaml", "~/.pathio.yml"}

// ParseConfig loads a YAML configuration file from a local or remote
// path. With an empty path it falls back to the first default config
// file that exists. It fails if any of the required keys is missing.
func (f *FS) ParseConfig(ctx context.Context, path string, required ...string) (map[string]any, error) {
	if path == "" {
		for _, candidate := range defaultConfigPaths {
			ok, err := f.Exists(ctx, candidate)
			if err != nil {
				return nil, err
			}
			if ok {
				path = candidate
				break
			}
		}
		if path == "" {
			return nil, fmt.Errorf("pathio: no config path given and no default could be inferred")
		}
	}

	ok, err := f.Exists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: config file %q", ErrNotFound, path)
	}

	f.log.Info("loading configuration file", zap.String("path", path))

	raw, err := f.Load(ctx, path, &LoadOptions{Format: "raw"})
	if err != nil {
		return nil, err
	}

	var cfg map[string]any
	if err := yaml.Unmarshal(raw.([]byte), &cfg); err != nil {
		return nil, fmt.Errorf("pathio: parse config %q: %w", path, err)
	}

	var missing []string
	for _, key := range required {
		if _, ok := cfg[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("pathio: config %q missing required key(s): %v", path, missing)
	}
	return cfg, nil
}

// ParseConfig loads a YAML configuration file using the default FS.
func ParseConfig(ctx context.Context, path string, required ...string) (map[string]any, error) {
	return Default.ParseConfig(ctx, path, required...)
}
