package gallery

import (
	"context"
	"time"

	"github.com/kbukum/imagefeed/database"
	apperrors "github.com/kbukum/imagefeed/errors"
)

// ImageRecord is the images table row. Seq orders rows by insertion.
type ImageRecord struct {
	Seq       uint64    `gorm:"column:seq;primaryKey;autoIncrement"`
	ID        string    `gorm:"column:id;type:varchar(36);uniqueIndex;not null"`
	URL       string    `gorm:"column:url;type:text;not null"`
	Message   *string   `gorm:"column:message;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (ImageRecord) TableName() string { return "images" }

func toRecord(img Image) ImageRecord {
	return ImageRecord{ID: img.ID, URL: img.URL, Message: img.Message, CreatedAt: img.Date.UTC()}
}

func (r ImageRecord) toImage() Image {
	return Image{ID: r.ID, URL: r.URL, Message: r.Message, Date: r.CreatedAt.UTC()}
}

// GormStore stores images in a SQL database.
type GormStore struct {
	conn func() *database.DB
}

func NewGormStore(db *database.DB) *GormStore {
	return &GormStore{conn: func() *database.DB { return db }}
}

// NewLazyGormStore resolves the connection on every call, so a
// database.Component's DB method can be passed before the component starts.
func NewLazyGormStore(conn func() *database.DB) *GormStore {
	return &GormStore{conn: conn}
}

func (s *GormStore) db() (*database.DB, error) {
	db := s.conn()
	if db == nil {
		return nil, apperrors.ServiceUnavailable("database")
	}
	return db, nil
}

func (s *GormStore) Add(ctx context.Context, img Image) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	rec := toRecord(img)
	if err := db.WithContext(ctx).Create(&rec).Error; err != nil {
		return database.FromDatabase(err, "image")
	}
	return nil
}

func (s *GormStore) List(ctx context.Context) ([]Image, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	var records []ImageRecord
	if err := db.WithContext(ctx).Order("seq ASC").Find(&records).Error; err != nil {
		return nil, database.FromDatabase(err, "image")
	}
	images := make([]Image, 0, len(records))
	for _, r := range records {
		images = append(images, r.toImage())
	}
	return images, nil
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.WithContext(ctx).Model(&ImageRecord{}).Count(&n).Error; err != nil {
		return 0, database.FromDatabase(err, "image")
	}
	return n, nil
}

var _ Store = (*GormStore)(nil)
