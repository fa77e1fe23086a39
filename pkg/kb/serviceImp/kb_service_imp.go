package serviceImp

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"agriyield/entities"
	"agriyield/pkg/httpx"
	"agriyield/pkg/kb/embedder"
	"agriyield/pkg/kb/repository"
	"agriyield/pkg/kb/service"
	"agriyield/pkg/logger"
)

const chunkRunes = 1000

type Svc struct {
	r     repository.KBRepository
	emb   *embedder.Client
	fetch *fetcher
}

type Options struct {
	AllowedDomains  []string
	MaxBytesPerPage int64
	// Client fetches pages for IngestURL; nil gets a default breaker client.
	Client *httpx.Client
}

// New wires the KB. A nil embedder means keyword-only search.
func New(r repository.KBRepository, e *embedder.Client, opts Options) *Svc {
	return &Svc{r: r, emb: e, fetch: newFetcher(opts.AllowedDomains, opts.MaxBytesPerPage, opts.Client)}
}

var _ service.KBService = (*Svc)(nil)

// chunkText splits on the first newline after maxRunes, or hard-splits at twice maxRunes.
func chunkText(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = chunkRunes
	}
	var parts []string
	var cur strings.Builder
	count := 0
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			parts = append(parts, s)
		}
		cur.Reset()
		count = 0
	}
	for _, r := range text {
		cur.WriteRune(r)
		count++
		if (count >= maxRunes && r == '\n') || count >= 2*maxRunes {
			flush()
		}
	}
	flush()
	return parts
}

func (s *Svc) Ingest(ctx context.Context, in service.IngestInput) (*entities.KBDocument, int, error) {
	d := &entities.KBDocument{
		Title:     strings.TrimSpace(in.Title),
		Tags:      strings.TrimSpace(in.Tags),
		SourceURL: strings.TrimSpace(in.SourceURL),
	}
	chs := chunkText(in.Text, chunkRunes)

	var embs [][]float32
	if s.emb != nil && len(chs) > 0 {
		var err error
		if embs, err = s.emb.Embed(ctx, chs); err != nil {
			logger.WarnF("[kb] embedding %q failed, storing without vectors: %v", d.Title, err)
			embs = nil
		}
	}

	rows := make([]entities.KBChunk, len(chs))
	for i := range chs {
		rows[i] = entities.KBChunk{Ord: i, Text: chs[i]}
		if embs != nil {
			rows[i].Embedding = embedder.FloatsToBytes(embs[i])
		}
	}
	if err := s.r.CreateDocWithChunks(d, rows); err != nil {
		return nil, 0, err
	}
	logger.InfoF("[kb] ingested %q (%d chunks)", d.Title, len(rows))
	return d, len(rows), nil
}

func (s *Svc) IngestURL(ctx context.Context, rawURL, title, tags string) (*entities.KBDocument, int, error) {
	text, pageTitle, err := s.fetch.mainText(ctx, rawURL)
	if err != nil {
		return nil, 0, err
	}
	if strings.TrimSpace(title) == "" {
		title = pageTitle
	}
	return s.Ingest(ctx, service.IngestInput{Title: title, Tags: tags, Text: text, SourceURL: rawURL})
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func terms(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// keywordScore is the share of query terms present in text.
func keywordScore(qterms []string, text string) float64 {
	if len(qterms) == 0 {
		return 0
	}
	have := map[string]struct{}{}
	for _, t := range terms(text) {
		have[t] = struct{}{}
	}
	n := 0
	for _, t := range qterms {
		if _, ok := have[t]; ok {
			n++
		}
	}
	return float64(n) / float64(len(qterms))
}

// Search ranks chunks by cosine similarity when the query can be embedded and
// by keyword overlap otherwise. Zero-score chunks are never returned.
func (s *Svc) Search(ctx context.Context, query string, k int) ([]entities.KBHit, error) {
	q := strings.TrimSpace(query)
	if q == "" || k <= 0 {
		return nil, nil
	}

	var qvec []float32
	if s.emb != nil {
		if vec, err := s.emb.Embed(ctx, []string{q}); err == nil && len(vec) > 0 {
			qvec = vec[0]
		} else if err != nil {
			logger.WarnF("[kb] query embedding failed, using keywords: %v", err)
		}
	}

	chunks, err := s.r.AllChunks()
	if err != nil {
		return nil, err
	}

	qterms := terms(q)
	hits := make([]entities.KBHit, 0, len(chunks))
	for _, ch := range chunks {
		var sc float64
		if qvec != nil {
			sc = cosine(qvec, embedder.BytesToFloats(ch.Embedding))
		}
		if sc == 0 {
			sc = keywordScore(qterms, ch.Text)
		}
		if sc <= 0 {
			continue
		}
		hits = append(hits, entities.KBHit{ChunkID: ch.ChunkID, DocID: ch.DocID, Ord: ch.Ord, Text: ch.Text, Score: sc})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}

	ids := make([]uint, 0, len(hits))
	seen := map[uint]struct{}{}
	for _, h := range hits {
		if _, ok := seen[h.DocID]; !ok {
			seen[h.DocID] = struct{}{}
			ids = append(ids, h.DocID)
		}
	}
	meta, err := s.r.DocsByIDs(ids)
	if err != nil {
		return nil, err
	}
	for i := range hits {
		if d, ok := meta[hits[i].DocID]; ok {
			hits[i].DocTitle = d.Title
			hits[i].SourceURL = d.SourceURL
		}
	}
	return hits, nil
}
