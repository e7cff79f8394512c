package store

import "github.com/nexusai/console/pkg/models"

// BuiltinIntegrations is the catalog seeded into an empty backend. Ids
// are stable so seeding upserts instead of duplicating.
func BuiltinIntegrations() []*models.Integration {
	return []*models.Integration{
		{
			ID:   "google-drive",
			Name: "Google Drive Asset",
			Type: "STORAGE_NODE",
			Icon: "📂",
			ConfigFields: []models.ConfigField{
				{Label: "Client ID", Key: "clientId", Type: "text", Placeholder: "OAuth Client ID"},
				{Label: "Client Secret", Key: "clientSecret", Type: "password", Placeholder: "••••••••"},
				{Label: "Node Path", Key: "folderId", Type: "text", Placeholder: "Root Directory ID"},
			},
		},
		{
			ID:   "pontta",
			Name: "Pontta Core",
			Type: "CRM_NODE",
			Icon: "⚡",
			ConfigFields: []models.ConfigField{
				{Label: "Security Token", Key: "apiKey", Type: "password", Placeholder: "Bearer API Token"},
				{Label: "Endpoint Cluster", Key: "baseUrl", Type: "text", Placeholder: "https://api.pontta.cloud/v2"},
			},
		},
		{
			ID:   "slack",
			Name: "Slack Internal",
			Type: "NOTIF_NODE",
			Icon: "💬",
			ConfigFields: []models.ConfigField{
				{Label: "Hook URI", Key: "webhookUrl", Type: "text", Placeholder: "https://hooks.slack.com/services/..."},
			},
		},
	}
}
