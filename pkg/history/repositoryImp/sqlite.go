package repositoryImp

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agriyield/entities"
	"agriyield/pkg/history/repository"
)

type sqliteKV struct {
	db       *gorm.DB
	encoders sync.Pool
	decoders sync.Pool
}

// NewSQLite stores values zstd-compressed in the kv_entries table.
func NewSQLite(db *gorm.DB) repository.KVStore {
	return &sqliteKV{
		db: db,
		encoders: sync.Pool{New: func() any {
			e, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
			if err != nil {
				panic(fmt.Sprintf("zstd encoder: %v", err))
			}
			return e
		}},
		decoders: sync.Pool{New: func() any {
			d, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
			if err != nil {
				panic(fmt.Sprintf("zstd decoder: %v", err))
			}
			return d
		}},
	}
}

func (r *sqliteKV) Get(key string) ([]byte, bool, error) {
	var row entities.KVEntry
	err := r.db.Where(keyIs(key)).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	d := r.decoders.Get().(*zstd.Decoder)
	defer r.decoders.Put(d)
	v, err := d.DecodeAll(row.Value, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompress %s: %w", key, err)
	}
	return v, true, nil
}

func (r *sqliteKV) Set(key string, value []byte) error {
	e := r.encoders.Get().(*zstd.Encoder)
	packed := e.EncodeAll(value, nil)
	r.encoders.Put(e)
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entities.KVEntry{Key: key, Value: packed}).Error
}

func (r *sqliteKV) Remove(key string) error {
	return r.db.Where(keyIs(key)).Delete(&entities.KVEntry{}).Error
}

func keyIs(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}
