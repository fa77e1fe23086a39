package service

import (
	"context"
	"errors"

	"agriyield/entities"
)

var (
	ErrDomainNotAllowed = errors.New("domain not allowed")
	ErrPageTooLarge     = errors.New("page too large")
	ErrUnsupportedType  = errors.New("unsupported content type")
)

type IngestInput struct {
	Title     string
	Tags      string
	Text      string
	SourceURL string
}

type KBService interface {
	Ingest(ctx context.Context, in IngestInput) (*entities.KBDocument, int, error)
	// IngestURL fetches an allow-listed page and ingests its main text.
	IngestURL(ctx context.Context, rawURL, title, tags string) (*entities.KBDocument, int, error)
	Search(ctx context.Context, query string, k int) ([]entities.KBHit, error)
}
