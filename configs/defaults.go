package configs

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

//go:embed config.example.json
var defaultConfigJSON string

// SetDefaults registers the embedded example values for the build section and
// the declare error dialect as viper defaults. Macro constants, network
// endpoints and accounts have no defaults and must come from the network file.
func SetDefaults(target *viper.Viper) error {
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(strings.NewReader(defaultConfigJSON)); err != nil {
		return fmt.Errorf("failed to read embedded config.example.json: %w", err)
	}

	for _, key := range v.AllKeys() {
		if strings.HasPrefix(key, "build.") {
			target.SetDefault(key, v.Get(key))
		}
	}
	target.SetDefault("network.declareerrordialect", v.Get("network.declareerrordialect"))

	return nil
}
