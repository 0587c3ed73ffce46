package httpclient

import "net/http"

// AuthConfig authenticates outgoing requests with a bearer token.
type AuthConfig struct {
	Token string
}

// BearerAuth returns nil for an empty token, which leaves requests
// unauthenticated.
func BearerAuth(token string) *AuthConfig {
	if token == "" {
		return nil
	}
	return &AuthConfig{Token: token}
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil || a.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
}
