package models

import (
	"time"

	"github.com/google/uuid"
)

// LawChunk represents one normalized statute fragment (article/paragraph)
// from the retrieval store. The normalized name/number pair uniquely
// identifies a fragment for exact-match lookups; the embedding lives in the
// same row for vector search.
type LawChunk struct {
	ID                uuid.UUID `json:"id"`
	ChunkUID          string    `json:"chunk_uid"`
	LawName           string    `json:"law_name"`
	LawNameNorm       string    `json:"law_name_norm"`
	ArticleNumber     string    `json:"article_number"`
	ArticleNumberNorm string    `json:"article_number_norm"`
	ParagraphNumber   *string   `json:"paragraph_number,omitempty"`
	SubparagraphNum   *string   `json:"subparagraph_number,omitempty"`
	ArticleTitle      *string   `json:"article_title,omitempty"`
	Text              string    `json:"text"`
	EnforcementDate   *string   `json:"enforcement_date,omitempty"`
	CreatedAt         time.Time `json:"created_at"`

	// Similarity is populated by vector search results only (cosine, 0..1).
	Similarity float64 `json:"similarity,omitempty"`
}

// CitationTitle renders the conventional "법령명 제n조" citation label.
func (c LawChunk) CitationTitle() string {
	if c.ArticleNumber == "" {
		return c.LawName
	}
	return c.LawName + " 제" + c.ArticleNumber + "조"
}
