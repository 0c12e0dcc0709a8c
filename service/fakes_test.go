package service

import (
	"context"
	"errors"

	"llex-backend/llm"
	"llex-backend/models"
	"llex-backend/repository"
)

// chunkRecorder collects emitted chunks for assertions.
type chunkRecorder struct {
	chunks []models.StreamChunk
	failAt int // fail the i-th emit (1-based); 0 disables
}

func (r *chunkRecorder) emit(c models.StreamChunk) error {
	if r.failAt > 0 && len(r.chunks)+1 >= r.failAt {
		return errors.New("receiver gone")
	}
	r.chunks = append(r.chunks, c)
	return nil
}

func (r *chunkRecorder) answer() string {
	var s string
	for _, c := range r.chunks {
		if c.Event == models.ChunkText {
			s += c.Text()
		}
	}
	return s
}

// fakeLawStore serves canned chunks and records which calls were made.
type fakeLawStore struct {
	exact       map[string]*models.LawChunk // key: lawNorm + "/" + articleNorm
	similar     []models.LawChunk
	exactErr    error
	similarErr  error
	exactCalls  int
	vectorCalls int
}

func (s *fakeLawStore) GetByNormalizedKey(_ context.Context, lawNorm, articleNorm string) (*models.LawChunk, error) {
	s.exactCalls++
	if s.exactErr != nil {
		return nil, s.exactErr
	}
	if c, ok := s.exact[lawNorm+"/"+articleNorm]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (s *fakeLawStore) SearchSimilar(_ context.Context, _ []float64, _ int) ([]models.LawChunk, error) {
	s.vectorCalls++
	if s.similarErr != nil {
		return nil, s.similarErr
	}
	return s.similar, nil
}

func (s *fakeLawStore) SearchText(_ context.Context, _ string, _ int) ([]models.LawChunk, error) {
	return s.similar, nil
}

// fakeProvider streams canned deltas and records embed calls.
type fakeProvider struct {
	deltas     []string
	embedding  []float64
	embedErr   error
	streamErr  error
	embedCalls int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(_ context.Context, _ string) (string, error) {
	var s string
	for _, d := range p.deltas {
		s += d
	}
	return s, p.streamErr
}

func (p *fakeProvider) StreamChat(_ context.Context, _ string, onDelta llm.DeltaFunc) error {
	if p.streamErr != nil {
		return p.streamErr
	}
	for _, d := range p.deltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return nil
}

func (p *fakeProvider) Embed(_ context.Context, _ string) ([]float64, error) {
	p.embedCalls++
	if p.embedErr != nil {
		return nil, p.embedErr
	}
	return p.embedding, nil
}

// fakeSearcher serves canned web results.
type fakeSearcher struct {
	results []models.SearchResult
	err     error
}

func (s *fakeSearcher) SearchNews(_ context.Context, _ string) ([]models.SearchResult, error) {
	return s.results, s.err
}

func (s *fakeSearcher) SearchBlogs(_ context.Context, _ string) ([]models.SearchResult, error) {
	return s.results, s.err
}

func (s *fakeSearcher) SearchWeb(_ context.Context, _ string) ([]models.SearchResult, error) {
	return s.results, s.err
}

// fakeHistoryStore records saves.
type fakeHistoryStore struct {
	saved   []models.ChatExchange
	saveErr error
	turns   []models.ChatTurnView
	stats   []models.ToolStats
}

func (s *fakeHistoryStore) SaveExchange(_ context.Context, p models.ChatExchange) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, p)
	return nil
}

func (s *fakeHistoryStore) History(_ context.Context, _ string, _ int) ([]models.ChatTurnView, error) {
	return s.turns, nil
}

func (s *fakeHistoryStore) Stats(_ context.Context) ([]models.ToolStats, error) {
	return s.stats, nil
}

func (s *fakeHistoryStore) SearchContent(_ context.Context, _ string, _ int) ([]models.ChatTurnView, error) {
	return s.turns, nil
}

// staticTool emits a fixed chunk sequence.
type staticTool struct {
	name   string
	chunks []models.StreamChunk
}

func (t *staticTool) Name() string { return t.name }

func (t *staticTool) Run(ctx context.Context, _ models.ToolPlan, emit EmitFunc) error {
	for _, c := range t.chunks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := emit(c); err != nil {
			return err
		}
	}
	return nil
}
