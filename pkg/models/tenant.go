// Package models defines the domain model for the console backend.
package models

import (
	"time"
)

// CRMType identifies which CRM a tenant's inbound data originates from.
type CRMType string

const (
	CRMSalesforce CRMType = "salesforce"
	CRMHubspot    CRMType = "hubspot"
	CRMCustom     CRMType = "custom"
	CRMNone       CRMType = "none"
)

// ParseCRMType maps a stored value onto a known CRMType, defaulting to
// CRMNone for anything unrecognized.
func ParseCRMType(s string) CRMType {
	switch CRMType(s) {
	case CRMSalesforce, CRMHubspot, CRMCustom:
		return CRMType(s)
	default:
		return CRMNone
	}
}

// Tenant is an isolated customer organization. Its credentials and output
// routes are owned sub-collections and are deleted with it.
type Tenant struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Color          string         `json:"color"`
	CRMType        CRMType        `json:"crmType"`
	InternalSchema map[string]any `json:"internalSchema"`
	OutputTemplate map[string]any `json:"outputTemplate"`
	CRMConfig      *CRMConfig     `json:"crmConfig,omitempty"`
	Credentials    []*Credential  `json:"credentials"`
	OutputRoutes   []*OutputRoute `json:"outputRoutes"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Clone returns a deep copy of the tenant and its owned sub-collections.
// The schema maps are shared: they are replaced wholesale on update, never
// edited in place.
func (t *Tenant) Clone() *Tenant {
	if t == nil {
		return nil
	}
	out := *t
	if t.CRMConfig != nil {
		cfg := *t.CRMConfig
		out.CRMConfig = &cfg
	}
	out.Credentials = make([]*Credential, len(t.Credentials))
	for i, cred := range t.Credentials {
		c := *cred
		out.Credentials[i] = &c
	}
	out.OutputRoutes = make([]*OutputRoute, len(t.OutputRoutes))
	for i, route := range t.OutputRoutes {
		out.OutputRoutes[i] = route.Clone()
	}
	return &out
}

// CRMConfig holds the per-tenant transformer configuration: where results
// are posted, the operator's instructions to the model, and a sample of
// the tenant's raw payload used for previews.
type CRMConfig struct {
	WebhookURL     string `json:"webhookUrl,omitempty"`
	AIInstructions string `json:"aiInstructions,omitempty"`
	SourceJSON     string `json:"sourceJson,omitempty"`
}
