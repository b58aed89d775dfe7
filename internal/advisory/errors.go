package advisory

import (
	"errors"
	"fmt"
)

// AuthError indicates that authentication has failed for the bulletin
// mailbox. It is returned when the IMAP login is rejected.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (advisory): %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
