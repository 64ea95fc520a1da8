package domain

// Plugin is a toggleable platform extension registered in the catalog.
// Plugins carry no behavior here; the registry only tracks activation.
type Plugin struct {
	Syncable
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	IsActive    bool     `json:"is_active"`
}
