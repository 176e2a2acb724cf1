package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone sends no credentials, even when the client has a default.
	AuthNone AuthType = iota
	// AuthBearer uses Bearer token authentication.
	AuthBearer
	// AuthAPIKey sends a key in a header.
	AuthAPIKey
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type  AuthType
	Token string
	// Header names the API key header. Defaults to X-API-Key.
	Header string
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// APIKeyAuth sends key in the named header.
func APIKeyAuth(key, header string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Token: key, Header: header}
}

// NoAuth suppresses the client's default credentials, e.g. for presigned URLs.
func NoAuth() *AuthConfig {
	return &AuthConfig{Type: AuthNone}
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthAPIKey:
		name := a.Header
		if name == "" {
			name = "X-API-Key"
		}
		req.Header.Set(name, a.Token)
	}
}
