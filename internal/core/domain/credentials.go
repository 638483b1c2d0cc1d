package domain

// APICredentials authenticate against the GitHub API.
// A token takes precedence over a login/password pair.
type APICredentials struct {
	// Login is the account name for basic authentication.
	Login string `json:"login,omitempty"`
	// Password is the password or token used with Login.
	Password string `json:"password,omitempty"`

	// Token is a personal access token. Sent as a bearer token.
	Token string `json:"token,omitempty"`
}

// HasToken returns true if a bearer token is configured.
func (c APICredentials) HasToken() bool {
	return c.Token != ""
}

// HasBasicAuth returns true if a login/password pair is configured.
func (c APICredentials) HasBasicAuth() bool {
	return c.Login != "" && c.Password != ""
}

// IsAuthenticated returns true if the credentials contain usable secrets.
func (c APICredentials) IsAuthenticated() bool {
	return c.HasToken() || c.HasBasicAuth()
}

// DatabaseProfile describes the relational store connection.
type DatabaseProfile struct {
	// Driver is "sqlite", "postgres" or "memory".
	Driver string `json:"driver"`
	// DSN is the driver specific connection string.
	DSN string `json:"dsn,omitempty"`
}

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)
