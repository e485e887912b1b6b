package configflags

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	v1 "github.com/balanshq/balans/pkg/apis/config/v1"
)

// ConfigFlags holds configuration information for Balans such as the location
// of its configuration file.
type ConfigFlags struct {
	Path string
}

func NewConfigFlags() *ConfigFlags {
	return &ConfigFlags{}
}

func (f *ConfigFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Path,
		"config",
		f.Path,
		"Configuration file for Balans, defaults are used when unset")
}

func (f *ConfigFlags) GetConfig() (*v1.BalansConfig, error) {
	config := v1.Default()

	if f.Path != "" {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, errors.WithMessage(err, "could not load config")
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.WithMessage(err, "couldn't unmarshal config")
		}
	}

	config.Normalize()
	return config, nil
}
