// internal/remote/errors.go

package remote

import (
	"errors"
	"fmt"
)

// TransportError reports a failed backend call.  Message is what the
// page shows; Status and Body carry the raw detail for logs.
type TransportError struct {
	Endpoint string
	Status   int
	Body     string
	Message  string
}

func (e *TransportError) Error() string { return e.Message }

// IsTransportError reports whether err wraps a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Per-endpoint failure copy.  The chat endpoint is the exception and
// surfaces status and body to the user.
var failureMessages = map[string]string{
	endpointCrop:       "Failed to get crop recommendation",
	endpointFertilizer: "Failed to get fertilizer recommendation",
	endpointDisease:    "Disease prediction failed",
}

func failureMessage(endpoint string, status int, body string) string {
	if msg, ok := failureMessages[endpoint]; ok {
		return msg
	}
	if body == "" {
		body = "Unknown error"
	}
	return fmt.Sprintf("Chatbot request failed: %d - %s", status, body)
}
