package fakeapi

import (
	"time"
)

// Config configures the development API. It is populated with [envstruct.Populate].
type Config struct {
	// Addr is the listen address. Use port 0 for a random free port.
	Addr      string `env:"FAKEAPI_ADDR" envDefault:"localhost:8043"`
	SQLiteURL string `env:"FAKEAPI_SQLITE_URL" envDefault:":memory:"`
	// CSRFKey signs the CSRF cookie. A random key is generated when empty, invalidating tokens on restart.
	CSRFKey         string        `env:"FAKEAPI_CSRF_KEY" envDefault:""`
	SecureCookies   bool          `env:"FAKEAPI_SECURE_COOKIES" envDefault:"false"`
	SessionLifetime time.Duration `env:"FAKEAPI_SESSION_LIFETIME" envDefault:"2h"`
	SeedName        string        `env:"FAKEAPI_SEED_NAME" envDefault:"Test"`
	SeedEmail       string        `env:"FAKEAPI_SEED_EMAIL" envDefault:"test@example.com"`
	SeedPassword    string        `env:"FAKEAPI_SEED_PASSWORD" envDefault:"password"`
	BcryptCost      int           `env:"FAKEAPI_BCRYPT_COST" envDefault:"10"`
	// PprofPort enables a pprof server on the loopback interface, e.g. ":6060".
	PprofPort       string        `env:"FAKEAPI_PPROF_PORT" envDefault:""`
	ShutdownTimeout time.Duration `env:"FAKEAPI_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}
