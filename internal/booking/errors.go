package booking

// ErrorKind classifies why a booking attempt was rejected. Validation kinds
// are produced synchronously and never cross the form boundary as Go errors;
// they render inline next to the field that caused them.
type ErrorKind string

const (
	KindInvalidRange       ErrorKind = "invalidRange"
	KindGuestLimitExceeded ErrorKind = "guestLimitExceeded"
	KindMissingDates       ErrorKind = "missingDates"
	KindUnauthenticated    ErrorKind = "unauthenticated"
	KindDateConflict       ErrorKind = "dateConflict"
	KindRemoteRejected     ErrorKind = "remoteRejected"
	KindNetworkFailure     ErrorKind = "networkFailure"

	// KindSubmitInFlight marks the duplicate submit from a double click;
	// the in-flight request proceeds untouched.
	KindSubmitInFlight ErrorKind = "submitInFlight"
)

// ValidationResult is the outcome of one validation or submission pass.
// Ephemeral; rendered and thrown away.
type ValidationResult struct {
	Valid   bool
	Kind    ErrorKind
	Message string
}

func ok() ValidationResult {
	return ValidationResult{Valid: true}
}

func fail(kind ErrorKind, message string) ValidationResult {
	return ValidationResult{Kind: kind, Message: message}
}
