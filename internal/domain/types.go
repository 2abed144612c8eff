package domain

// Page is the text extracted from one page of a source document.
// Err is set when the page could not be read; Text is then empty.
type Page struct {
	Text   string
	Number int
	Err    string
}

// Chunk is a window of a page's text, the atomic unit of retrieval.
type Chunk struct {
	Text        string `json:"text"`
	Page        int    `json:"page"`
	SourceError string `json:"source_error,omitempty"`
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

// Source is a retrieved passage returned alongside an answer.
type Source struct {
	Content string `json:"content"`
	Page    int    `json:"page"`
}

// Rating is the thumbs-up / thumbs-down verdict on an answer.
type Rating string

const (
	RatingUp   Rating = "up"
	RatingDown Rating = "down"
)

// Valid reports whether r is one of the known ratings.
func (r Rating) Valid() bool { return r == RatingUp || r == RatingDown }

// FeedbackSource records which page backed a rated answer.
type FeedbackSource struct {
	Page int `json:"page"`
}

// FeedbackEntry is one line of the feedback log.
type FeedbackEntry struct {
	Timestamp string           `json:"timestamp"`
	Question  string           `json:"question"`
	Answer    string           `json:"answer"`
	Rating    Rating           `json:"rating"`
	Comment   string           `json:"comment,omitempty"`
	Sources   []FeedbackSource `json:"sources,omitempty"`
}

// Stats aggregates the feedback log by rating.
type Stats struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

// Entities are the key contract attributes pulled from a document.
// A nil field means the attribute was not found; it marshals as null.
type Entities struct {
	Parties         *[]string `json:"parties"`
	EffectiveDate   *string   `json:"effective_date"`
	TerminationDate *string   `json:"termination_date"`
	PaymentTerms    *string   `json:"payment_terms"`
	IPOwner         *string   `json:"ip_owner"`
	GoverningLaw    *string   `json:"governing_law"`
}
