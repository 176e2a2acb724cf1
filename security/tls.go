package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
)

// TLSConfig configures how voicemap verifies and authenticates to remote
// HTTPS endpoints. The zero value keeps the system defaults.
type TLSConfig struct {
	// CAFile is a PEM bundle that replaces the system roots.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`
	// CertFile and KeyFile hold a client certificate for mutual TLS.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`
	// ServerName overrides the name verified against the server certificate.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`
	// MinVersion is "1.2" or "1.3". Defaults to "1.2".
	MinVersion string `yaml:"min_version" mapstructure:"min_version"`
	// SkipVerify disables certificate verification. Development only.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`
}

// IsEnabled reports whether any setting departs from the system defaults.
func (c *TLSConfig) IsEnabled() bool {
	if c == nil {
		return false
	}
	return c.CAFile != "" || c.CertFile != "" || c.ServerName != "" || c.MinVersion != "" || c.SkipVerify
}

// Validate checks the settings without touching the filesystem.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return fmt.Errorf("tls: cert_file and key_file must be set together")
	}
	if _, err := c.minVersion(); err != nil {
		return err
	}
	return nil
}

// Build loads the configured files into a *tls.Config. It returns nil when
// nothing is configured.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	version, _ := c.minVersion()

	cfg := &tls.Config{
		MinVersion:         version,
		ServerName:         c.ServerName,
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in for development
	}
	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("tls: read ca_file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("tls: no certificates found in %s", c.CAFile)
		}
		cfg.RootCAs = pool
	}
	if c.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tls: load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// Apply installs the built settings on transport. It leaves transport
// untouched when nothing is configured.
func (c *TLSConfig) Apply(transport *http.Transport) error {
	cfg, err := c.Build()
	if err != nil || cfg == nil {
		return err
	}
	transport.TLSClientConfig = cfg
	return nil
}

func (c *TLSConfig) minVersion() (uint16, error) {
	switch c.MinVersion {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("tls: min_version must be 1.2 or 1.3 (got: %s)", c.MinVersion)
	}
}
