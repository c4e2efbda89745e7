package googleads

import "fmt"

// AuthError is returned when the refresh-token exchange fails. Body holds
// the token endpoint's response so operators can see why (revoked token,
// wrong client secret, ...).
type AuthError struct {
	Status int
	Body   string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("token exchange failed (status %d): %s", e.Status, e.Body)
	}
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the Ads API. Body is the raw error
// document returned by the platform.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Google Ads API error (status %d): %s", e.Status, e.Body)
}
