package domain

// Genre represents a category for classifying books.
// Names are stored Title-Cased ("Science Fiction") and looked up by
// exact match. Books can belong to multiple genres.
type Genre struct {
	Syncable
	Name string `json:"name"`
}

// Format represents a supported book file format, e.g. "EPUB".
type Format struct {
	Syncable
	Name string `json:"name"`
}

// FormatEPUB is the fixed identifier for the default upload format.
const FormatEPUB = "EPUB"
