package domain

import "time"

// AnalysisRequest carries the caller-supplied article material. At most
// one of Text/File is authoritative; when both are present the extracted
// file text is appended to the supplied text.
type AnalysisRequest struct {
	Text     string
	Filename string
	File     []byte
	Options  AnalysisOptions
}

// AnalysisOptions are advisory request flags. Both summary and entities
// are always produced because partial results are never returned.
type AnalysisOptions struct {
	IncludeEntities bool `json:"include_entities"`
	IncludeSummary  bool `json:"include_summary"`
}

func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{IncludeEntities: true, IncludeSummary: true}
}

// AnalysisResult is the canonical provider-facing shape. Invariant:
// every array field is present, possibly empty, never nil.
type AnalysisResult struct {
	ArticleSummary []string `json:"article_summary"`
	Nationalities  []string `json:"nationalities"`
	Organizations  []string `json:"organizations"`
	People         []string `json:"people"`
	Language       []string `json:"language"`
}

// EnsureArrays replaces nil slices with empty ones so the invariant
// holds even when the provider omits an optional key.
func (r *AnalysisResult) EnsureArrays() {
	if r.ArticleSummary == nil {
		r.ArticleSummary = []string{}
	}
	if r.Nationalities == nil {
		r.Nationalities = []string{}
	}
	if r.Organizations == nil {
		r.Organizations = []string{}
	}
	if r.People == nil {
		r.People = []string{}
	}
	if r.Language == nil {
		r.Language = []string{}
	}
}

// ArticleLog is the immutable append-only record persisted after a
// successful analysis. Never updated or deleted by this system.
type ArticleLog struct {
	ID            string    `json:"id"`
	Summary       []string  `json:"summary"`
	Nationalities []string  `json:"nationalities"`
	Organizations []string  `json:"organizations"`
	People        []string  `json:"people"`
	Language      []string  `json:"language"`
	OriginalText  string    `json:"original_text"`
	UploadedFile  string    `json:"uploaded_file,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
