package models

// CredentialStatus is the connection state of a tenant credential.
type CredentialStatus string

const (
	StatusDisconnected CredentialStatus = "disconnected"
	StatusConnecting   CredentialStatus = "connecting"
	StatusConnected    CredentialStatus = "connected"
	StatusError        CredentialStatus = "error"
	StatusExpiring     CredentialStatus = "expiring"
)

// ParseCredentialStatus maps a stored value onto a known status,
// defaulting to disconnected.
func ParseCredentialStatus(s string) CredentialStatus {
	switch CredentialStatus(s) {
	case StatusConnecting, StatusConnected, StatusError, StatusExpiring:
		return CredentialStatus(s)
	default:
		return StatusDisconnected
	}
}

// Credential is a tenant-scoped reference to secret material held in an
// external vault. CredentialRef is an opaque pointer minted by the backend;
// the secret itself never appears in this struct, in logs, or on the wire.
type Credential struct {
	ID            string           `json:"id"`
	TenantID      string           `json:"tenantId"`
	ProviderID    string           `json:"providerId"`
	Alias         string           `json:"alias"`
	CredentialRef string           `json:"credentialId"`
	Status        CredentialStatus `json:"status"`
	LastTested    string           `json:"lastTested"`
	ExpiresAt     string           `json:"expiresAt,omitempty"`
}
