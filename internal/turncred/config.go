package turncred

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Secret is the shared secret configured on the TURN server
	// (coturn static-auth-secret). Generated at startup when empty.
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	URLs   []string      `mapstructure:"urls"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	v.SetDefault(p("secret"), "")
	v.SetDefault(p("ttl"), "1h")
	v.SetDefault(p("urls"), []string{})
}
