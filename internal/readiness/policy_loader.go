package readiness

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// LoadPolicy reads a YAML or JSON policy file and overlays it on the
// reference policy. Lists and maps present in the file replace the defaults
// entirely; absent keys keep their default values. Labels are kept in lists
// because viper folds map keys to lower case.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Policy{}, fmt.Errorf("read policy file %s: %w", path, err)
	}

	if err := v.Unmarshal(&p, func(dc *mapstructure.DecoderConfig) {
		dc.ZeroFields = true
		dc.ErrorUnused = true
	}); err != nil {
		return Policy{}, fmt.Errorf("decode policy file %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy %s: %w", path, err)
	}
	return p, nil
}
