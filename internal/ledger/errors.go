package ledger

// ValidationError reports missing or invalid caller input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// ErrNoValidUpdates is returned by an in-place edit that changes nothing
var ErrNoValidUpdates = &ValidationError{Message: "No valid updates provided"}
