// Package config loads the client settings from the environment.
package config

import (
	"github.com/myrjola/spasession/internal/auth"
	"github.com/myrjola/spasession/internal/csrf"
	"github.com/myrjola/spasession/internal/envstruct"
	"github.com/myrjola/spasession/internal/errors"
)

// Client configures the session-aware API client.
type Client struct {
	BaseURL              string `env:"SPASESSION_BASE_URL" envDefault:"http://localhost:8043"`
	CSRFCookiePath       string `env:"SPASESSION_CSRF_COOKIE_PATH" envDefault:"/sanctum/csrf-cookie"`
	CSRFCookieName       string `env:"SPASESSION_CSRF_COOKIE_NAME" envDefault:"XSRF-TOKEN"`
	CSRFHeaderName       string `env:"SPASESSION_CSRF_HEADER_NAME" envDefault:"X-XSRF-TOKEN"`
	LoginPath            string `env:"SPASESSION_LOGIN_PATH" envDefault:"/api/login"`
	LogoutPath           string `env:"SPASESSION_LOGOUT_PATH" envDefault:"/api/logout"`
	IdentityPath         string `env:"SPASESSION_IDENTITY_PATH" envDefault:"/api/user"`
	HabitsPath           string `env:"SPASESSION_HABITS_PATH" envDefault:"/api/habits"`
	AllowInsecureCookies bool   `env:"SPASESSION_ALLOW_INSECURE_COOKIES" envDefault:"true"`
	LogLevel             string `env:"SPASESSION_LOG_LEVEL" envDefault:"info"`
	Email                string `env:"SPASESSION_EMAIL" envDefault:""`
	Password             string `env:"SPASESSION_PASSWORD" envDefault:""`
}

// Load reads the client configuration using lookupEnv, which has the signature of [os.LookupEnv].
func Load(lookupEnv func(string) (string, bool)) (Client, error) {
	var cfg Client
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return Client{}, errors.Wrap(err, "populate client config")
	}
	return cfg, nil
}

// CSRF returns the handshake settings.
func (c Client) CSRF() csrf.Config {
	return csrf.Config{
		CookiePath: c.CSRFCookiePath,
		CookieName: c.CSRFCookieName,
		HeaderName: c.CSRFHeaderName,
	}
}

// AuthPaths returns the endpoints of the authentication flows.
func (c Client) AuthPaths() auth.Paths {
	return auth.Paths{
		Login:    c.LoginPath,
		Logout:   c.LogoutPath,
		Identity: c.IdentityPath,
	}
}
