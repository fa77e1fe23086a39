package repository

import "agriyield/entities"

type KBRepository interface {
	// CreateDocWithChunks stores a document and its chunks atomically, setting DocID on each chunk.
	CreateDocWithChunks(d *entities.KBDocument, chunks []entities.KBChunk) error
	ListDocs() ([]entities.KBDocument, error)
	AllChunks() ([]entities.KBChunk, error)
	DocsByIDs(ids []uint) (map[uint]entities.KBDocument, error)
}
