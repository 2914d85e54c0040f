// Package config loads podscope settings through viper.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/HerbHall/podscope/internal/downward"
)

// EnvPrefix namespaces environment overrides, e.g. PODSCOPE_SERVER_PORT.
const EnvPrefix = "PODSCOPE"

// Keys understood by podscope.
const (
	KeyServerHost         = "server.host"
	KeyServerPort         = "server.port"
	KeyServerReadTimeout  = "server.read_timeout"
	KeyServerWriteTimeout = "server.write_timeout"
	KeyServerIdleTimeout  = "server.idle_timeout"
	KeyLabelsPath         = "labels.path"
	KeyMetricsEnabled     = "metrics.enabled"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

// ViperConfig is a read-only view over a viper instance. A config built from
// a nil viper decodes to zero Settings.
type ViperConfig struct {
	v *viper.Viper
}

// New wraps v. A nil v yields an empty config.
func New(v *viper.Viper) *ViperConfig {
	if v == nil {
		v = viper.New()
	}
	return &ViperConfig{v: v}
}

// SetDefaults registers podscope's defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerHost, defaultHost)
	v.SetDefault(KeyServerPort, defaultPort)
	v.SetDefault(KeyServerReadTimeout, 15*time.Second)
	v.SetDefault(KeyServerWriteTimeout, 15*time.Second)
	v.SetDefault(KeyServerIdleTimeout, 60*time.Second)
	v.SetDefault(KeyLabelsPath, downward.DefaultLabelsPath)
	v.SetDefault(KeyMetricsEnabled, true)
}

// Load reads the optional config file at path from the host file system.
func Load(path string) (*ViperConfig, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs builds a config from defaults, the optional file at path on fsys,
// and PODSCOPE_* environment variables, in increasing precedence.
func LoadFs(fsys afero.Fs, path string) (*ViperConfig, error) {
	v := viper.New()
	v.SetFs(fsys)
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return New(v), nil
}

// Settings is the typed view of every podscope key.
type Settings struct {
	Server  ServerSettings  `mapstructure:"server"`
	Labels  LabelsSettings  `mapstructure:"labels"`
	Metrics MetricsSettings `mapstructure:"metrics"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LabelsSettings locates the downward API labels file.
type LabelsSettings struct {
	Path string `mapstructure:"path"`
}

// MetricsSettings toggles the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// Unmarshal decodes the whole config into target using mapstructure tags.
func (c *ViperConfig) Unmarshal(target any) error {
	if err := c.v.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Settings decodes the config into a Settings value. Environment overrides
// apply to every key that has a default.
func (c *ViperConfig) Settings() (Settings, error) {
	var s Settings
	if err := c.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Addr returns host:port for the HTTP listener. An empty host or port falls
// back to its default independently.
func (s ServerSettings) Addr() string {
	host, port := s.Host, s.Port
	if host == "" {
		host = defaultHost
	}
	if port == "" {
		port = defaultPort
	}
	return net.JoinHostPort(host, port)
}
