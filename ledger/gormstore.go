package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/creatorjar/creatorjar"
)

// tipRow is the gorm model backing TipRecord.
type tipRow struct {
	ID              string `gorm:"primaryKey"`
	Sender          string `gorm:"index:idx_tip_pair"`
	Recipient       string `gorm:"index:idx_tip_pair"`
	GrossAmount     string
	MicroUnits      uint64
	ProofReference  string `gorm:"uniqueIndex"`
	Note            string
	PremiumUnlocked bool
	CreatedAt       time.Time
}

func (tipRow) TableName() string { return "tip_records" }

// GormStore persists tip records through gorm. The sqlite driver is pure
// Go, so the store works without cgo; any gorm dialector can be swapped in
// through NewGormStore.
type GormStore struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) a sqlite-backed store at the given DSN.
// Use "file::memory:?cache=shared" for an ephemeral store.
func OpenSQLite(dsn string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return NewGormStore(db)
}

// NewGormStore wraps an existing gorm handle and migrates the tip-records
// table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&tipRow{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// Insert appends one record. Duplicate proof references surface as
// ErrDuplicateProof.
func (s *GormStore) Insert(ctx context.Context, record creatorjar.TipRecord) error {
	row := tipRow{
		ID:              record.ID,
		Sender:          string(record.Sender),
		Recipient:       string(record.Recipient),
		GrossAmount:     record.GrossAmount,
		MicroUnits:      record.MicroUnits,
		ProofReference:  record.ProofReference,
		Note:            record.Note,
		PremiumUnlocked: record.PremiumUnlocked,
		CreatedAt:       record.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateProof
		}
		return err
	}
	return nil
}

// Query returns matching records, newest first.
func (s *GormStore) Query(ctx context.Context, filter Filter) ([]creatorjar.TipRecord, error) {
	q := s.db.WithContext(ctx).Model(&tipRow{}).Order("created_at DESC")
	if filter.Sender != "" {
		q = q.Where("sender = ?", string(filter.Sender))
	}
	if filter.Recipient != "" {
		q = q.Where("recipient = ?", string(filter.Recipient))
	}
	if filter.PremiumOnly {
		q = q.Where("premium_unlocked = ?", true)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []tipRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]creatorjar.TipRecord, len(rows))
	for i, row := range rows {
		records[i] = creatorjar.TipRecord{
			ID:              row.ID,
			Sender:          creatorjar.Address(row.Sender),
			Recipient:       creatorjar.Address(row.Recipient),
			GrossAmount:     row.GrossAmount,
			MicroUnits:      row.MicroUnits,
			ProofReference:  row.ProofReference,
			Note:            row.Note,
			PremiumUnlocked: row.PremiumUnlocked,
			CreatedAt:       row.CreatedAt,
		}
	}
	return records, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// The pure-Go sqlite driver reports constraint failures as plain
	// errors; match on the sqlite error text.
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

var _ Store = (*GormStore)(nil)
