package models

// EnvVar is a global key/value setting. Values flagged secret render as a
// fixed-length mask in every view and never appear in logs.
type EnvVar struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Value    string `json:"value"`
	IsSecret bool   `json:"isSecret"`
}

// UserPermission is a stored role/scope assignment. Storage only: no
// enforcement happens at this layer.
type UserPermission struct {
	ID        string `json:"id"`
	UserEmail string `json:"userEmail"`
	Role      string `json:"role"`
	Scope     string `json:"scope"`
}
