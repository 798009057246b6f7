package config

import (
	"fmt"
	"time"
)

// BaseConfig is the root application configuration. Loaded once at startup
// through go-config and treated as immutable afterwards.
type BaseConfig struct {
	Auth        Auth        `json:"auth" yaml:"auth"`
	Persistence Persistence `json:"persistence" yaml:"persistence"`
	Server      Server      `json:"server" yaml:"server"`
}

func (a BaseConfig) Validate() error {
	if a.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	return nil
}

func (a BaseConfig) GetAuth() *Auth {
	return &a.Auth
}

func (a BaseConfig) GetPersistence() *Persistence {
	return &a.Persistence
}

func (a BaseConfig) GetServer() *Server {
	return &a.Server
}

// Auth carries the token and credential options
type Auth struct {
	SigningKey    string   `json:"signing_key" yaml:"signing_key"`
	SigningMethod string   `json:"signing_method" yaml:"signing_method"`
	ContextKey    string   `json:"context_key" yaml:"context_key"`
	BcryptCost    int      `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	TokenLookup   string   `json:"token_lookup" yaml:"token_lookup"`
	AuthScheme    string   `json:"auth_scheme" yaml:"auth_scheme"`
	Issuer        string   `json:"issuer" yaml:"issuer"`
	Audience      []string `json:"audience" yaml:"audience"`
}

func (a *Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a *Auth) GetSigningMethod() string {
	if a.SigningMethod == "" {
		return "HS256"
	}
	return a.SigningMethod
}

func (a *Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "user"
	}
	return a.ContextKey
}

func (a *Auth) GetBcryptCost() int {
	return a.BcryptCost
}

func (a *Auth) GetTokenLookup() string {
	if a.TokenLookup == "" {
		return "header:Authorization"
	}
	return a.TokenLookup
}

func (a *Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

func (a *Auth) GetIssuer() string {
	return a.Issuer
}

func (a *Auth) GetAudience() []string {
	return a.Audience
}

// Persistence carries the database options
type Persistence struct {
	Debug                 bool   `json:"debug" yaml:"debug"`
	Driver                string `json:"driver" yaml:"driver"`
	DSN                   string `json:"dsn" yaml:"dsn"`
	Server                string `json:"server" yaml:"server"`
	Database              string `json:"database" yaml:"database"`
	PingTimeoutExpression string `json:"ping_timeout" yaml:"ping_timeout"`
}

func (p *Persistence) GetDebug() bool {
	return p.Debug
}

func (p *Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite"
	}
	return p.Driver
}

func (p *Persistence) GetDSN() string {
	if p.DSN == "" {
		return "file:campus.db?cache=shared&mode=rwc"
	}
	return p.DSN
}

func (p *Persistence) GetServer() string {
	return p.Server
}

func (p *Persistence) GetDatabase() string {
	return p.Database
}

func (p *Persistence) GetOtelIdentifier() string {
	return ""
}

func (p *Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

// Server carries the HTTP listener options
type Server struct {
	Address string `json:"address" yaml:"address"`
}

func (s *Server) GetAddress() string {
	if s.Address == "" {
		return ":8572"
	}
	return s.Address
}
