package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	PairingTimeout time.Duration `mapstructure:"pairing_timeout"`

	// OAuth parameters only feed the login URL handed to clients; the code
	// exchange itself happens in the external collaborator.
	OAuthAuthorizeURL string `mapstructure:"oauth_authorize_url"`
	OAuthClientID     string `mapstructure:"oauth_client_id"`
	OAuthRedirectURI  string `mapstructure:"oauth_redirect_uri"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 5000)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pairing_timeout", "90s")
	v.SetDefault("oauth_authorize_url", "https://discord.com/oauth2/authorize")
	v.SetDefault("oauth_redirect_uri", "http://localhost:5000/callback")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// LoginURL builds the authorize URL sent in AUTH URL frames.
func (c *Config) LoginURL() string {
	q := url.Values{}
	q.Set("client_id", c.OAuthClientID)
	q.Set("redirect_uri", c.OAuthRedirectURI)
	q.Set("scope", "identify")
	q.Set("response_type", "code")
	return c.OAuthAuthorizeURL + "?" + q.Encode()
}
