package config

import (
	"strings"

	"github.com/spf13/viper"
)

func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	return v
}

// Load fills c from env vars after the configure callback has registered
// section defaults.
func Load[T any](c *T, configure func(v *viper.Viper)) (*T, error) {
	v := NewViper()

	configure(v)
	return c, v.Unmarshal(c)
}
