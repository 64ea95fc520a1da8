package domain

// Author represents a book author. Authors are resolved by exact name
// match, so two people sharing a name share a record. Author lifecycle
// is independent of any single book.
type Author struct {
	Syncable
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}
