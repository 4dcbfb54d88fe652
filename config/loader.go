package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Environment variable prefix for runtime configuration.
const envPrefix = "RODI"

type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// BUILD_TARGET is kept for the existing deploy scripts.
	_ = v.BindEnv("target", "RODI_TARGET", "BUILD_TARGET")
	_ = v.BindEnv("site_url", "RODI_SITE_URL")
	_ = v.BindEnv("base_path", "RODI_BASE_PATH")
	_ = v.BindEnv("media_dir", "RODI_MEDIA_DIR")
	_ = v.BindEnv("static_dir", "RODI_STATIC_DIR")
	_ = v.BindEnv("out_dir", "RODI_OUT_DIR")
	_ = v.BindEnv("port", "RODI_PORT", "PORT")
	_ = v.BindEnv("cache_ttl", "RODI_CACHE_TTL")

	return &Loader{v: v}
}

func (l *Loader) Viper() *viper.Viper {
	return l.v
}

func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile != "" {
		l.v.SetConfigFile(configFile)
		l.v.SetConfigType("yaml")
		if err := l.v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, errors.Wrap(err, "reading config file")
			}
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	out := cfg.WithDefaults()
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
