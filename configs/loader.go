package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// ErrConfigNotFound is returned when <dir>/<net>.json does not exist.
var ErrConfigNotFound = errors.New("network config file not found")

// Load reads <dir>/<net>.json into v and decodes the merged result (file,
// bound flags and defaults) into a Config.
func Load(v *viper.Viper, fsys afero.Fs, dir, net string) (Config, error) {
	path := filepath.Join(dir, net+".json")

	if err := SetDefaults(v); err != nil {
		return Config{}, err
	}

	v.SetFs(fsys)
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: '%s'", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("error reading config file '%s': %w", path, err)
	}

	slog.With("config_file", v.ConfigFileUsed()).Debug("config file loaded")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode application config: %w", err)
	}

	return cfg, nil
}
