package relay

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// RoomCapacity caps members per room; zero disables the cap.
	RoomCapacity int `mapstructure:"room_capacity"`

	IdleThreshold time.Duration `mapstructure:"idle_threshold"`
	ReapInterval  time.Duration `mapstructure:"reap_interval"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// Inbound per-connection event rate limit (events/sec + burst).
	MessageRate  float64 `mapstructure:"message_rate"`
	MessageBurst int     `mapstructure:"message_burst"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	v.SetDefault(p("room_capacity"), 10)
	v.SetDefault(p("idle_threshold"), "30m")
	v.SetDefault(p("reap_interval"), "30m")
	v.SetDefault(p("allowed_origins"), []string{"*"})
	v.SetDefault(p("message_rate"), 50.0)
	v.SetDefault(p("message_burst"), 100)
}
