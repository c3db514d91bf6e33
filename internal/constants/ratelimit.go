package constants

const (
	// Rate limits (requests per minute)
	GlobalAuthLimit = 60 // Login/Register endpoints
	RecoveryLimit   = 10 // Reset-code issuance
)
