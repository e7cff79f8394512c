package models

// ConfigField describes one input an integration requires when a
// credential for it is being collected.
type ConfigField struct {
	Label       string `json:"label"`
	Key         string `json:"key"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder"`
}

// Integration is a catalog entry for a third-party system credentials and
// output routes can target. The catalog is global, not tenant-owned.
type Integration struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	Icon         string        `json:"icon"`
	ConfigFields []ConfigField `json:"configFields"`
}
