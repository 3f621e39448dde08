package identity

import "fmt"

// APIError is a non-2xx response from the credential store. Message carries
// the store's raw error string; the account layer maps it onto the
// user-facing taxonomy by substring and never forwards it verbatim.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("auth api: %d: %s", e.Status, e.Message)
}
