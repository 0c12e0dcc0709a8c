package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"llex-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("not found")

// LawChunkRepository handles database operations for statute chunks.
type LawChunkRepository struct {
	db *pgxpool.Pool
}

// NewLawChunkRepository creates a new law chunk repository.
func NewLawChunkRepository(db *pgxpool.Pool) *LawChunkRepository {
	return &LawChunkRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

const lawChunkColumns = `
	id,
	chunk_uid,
	law_name,
	law_name_norm,
	article_number,
	article_number_norm,
	paragraph_number,
	subparagraph_number,
	article_title,
	text,
	to_char(enforcement_date, 'YYYY-MM-DD'),
	created_at`

func scanLawChunk(row pgx.Row) (*models.LawChunk, error) {
	var chunk models.LawChunk
	err := row.Scan(
		&chunk.ID,
		&chunk.ChunkUID,
		&chunk.LawName,
		&chunk.LawNameNorm,
		&chunk.ArticleNumber,
		&chunk.ArticleNumberNorm,
		&chunk.ParagraphNumber,
		&chunk.SubparagraphNum,
		&chunk.ArticleTitle,
		&chunk.Text,
		&chunk.EnforcementDate,
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// GetByNormalizedKey performs the exact-match lookup by canonical statute key.
// Callers normalize the key with models.NormalizeLawName /
// models.NormalizeArticleNumber before calling.
func (r *LawChunkRepository) GetByNormalizedKey(
	ctx context.Context,
	lawNameNorm string,
	articleNumberNorm string,
) (*models.LawChunk, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM law_chunks
		WHERE law_name_norm = $1 AND article_number_norm = $2
		ORDER BY paragraph_number NULLS FIRST
		LIMIT 1`, lawChunkColumns)

	chunk, err := scanLawChunk(r.db.QueryRow(ctx, query, lawNameNorm, articleNumberNorm))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query law chunk: %w", err)
	}

	return chunk, nil
}

// SearchSimilar performs a top-K cosine similarity search over the statute
// embeddings. Results carry Similarity in [0,1], descending.
func (r *LawChunkRepository) SearchSimilar(
	ctx context.Context,
	embedding []float64,
	limit int,
) ([]models.LawChunk, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding must not be empty")
	}

	vectorStr := formatVector(embedding)

	query := fmt.Sprintf(`
		SELECT %s,
			1 - (embedding <=> $1::vector) AS similarity
		FROM law_chunks
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector
		LIMIT $2`, lawChunkColumns)

	rows, err := r.db.Query(ctx, query, vectorStr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query law chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.LawChunk
	for rows.Next() {
		var chunk models.LawChunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.ChunkUID,
			&chunk.LawName,
			&chunk.LawNameNorm,
			&chunk.ArticleNumber,
			&chunk.ArticleNumberNorm,
			&chunk.ParagraphNumber,
			&chunk.SubparagraphNum,
			&chunk.ArticleTitle,
			&chunk.Text,
			&chunk.EnforcementDate,
			&chunk.CreatedAt,
			&chunk.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan law chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating law chunks: %w", err)
	}

	return chunks, nil
}

// SearchText performs a keyword search over statute text and names, used by
// the structured-history tool for explicit "in the data" questions.
func (r *LawChunkRepository) SearchText(
	ctx context.Context,
	keyword string,
	limit int,
) ([]models.LawChunk, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM law_chunks
		WHERE text ILIKE $1 OR law_name ILIKE $1
		ORDER BY law_name_norm, article_number_norm
		LIMIT $2`, lawChunkColumns)

	rows, err := r.db.Query(ctx, query, "%"+keyword+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search law chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.LawChunk
	for rows.Next() {
		chunk, err := scanLawChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan law chunk: %w", err)
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating law chunks: %w", err)
	}

	return chunks, nil
}
