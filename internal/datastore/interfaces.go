// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"github.com/jmurphy/apod-desktop/internal/conf"
	"github.com/jmurphy/apod-desktop/internal/errors"
	"gorm.io/gorm"
)

// Interface abstracts the underlying database implementation and defines the
// operations available on the image metadata store.
type Interface interface {
	Open() error
	Close() error
	SaveImage(record *ImageRecord) error
	ImageExistsByHash(sha256 string) (bool, error)
	GetImageByHash(sha256 string) (*ImageRecord, error)
	GetAllImages() ([]ImageRecord, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance for the metadata database at path.
func New(settings *conf.Settings, path string) Interface {
	return &SQLiteStore{
		Settings: settings,
		Path:     path,
	}
}

// SaveImage inserts a new image record into the database.
func (ds *DataStore) SaveImage(record *ImageRecord) error {
	if ds.DB == nil {
		return errors.NewStd("database connection is not initialized")
	}

	if err := ds.DB.Create(record).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_image").
			Context("date", record.Date).
			Build()
	}

	return nil
}

// ImageExistsByHash reports whether a record with the given content hash is
// already present. The hash is bound as a query parameter so lookups only
// match the exact stored value.
func (ds *DataStore) ImageExistsByHash(sha256 string) (bool, error) {
	if ds.DB == nil {
		return false, errors.NewStd("database connection is not initialized")
	}

	var count int64
	if err := ds.DB.Model(&ImageRecord{}).Where("sha256 = ?", sha256).Count(&count).Error; err != nil {
		return false, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "image_exists_by_hash").
			Build()
	}

	return count > 0, nil
}

// GetImageByHash retrieves the record with the given content hash, or a
// not-found error when no such record exists.
func (ds *DataStore) GetImageByHash(sha256 string) (*ImageRecord, error) {
	if ds.DB == nil {
		return nil, errors.NewStd("database connection is not initialized")
	}

	var record ImageRecord
	if err := ds.DB.Where("sha256 = ?", sha256).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Newf("no image record for hash %s", sha256).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_image_by_hash").
			Build()
	}

	return &record, nil
}

// GetAllImages returns all image records ordered by download time.
func (ds *DataStore) GetAllImages() ([]ImageRecord, error) {
	if ds.DB == nil {
		return nil, errors.NewStd("database connection is not initialized")
	}

	var records []ImageRecord
	if err := ds.DB.Order("downloaded_at ASC").Find(&records).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_all_images").
			Build()
	}

	return records, nil
}

// performAutoMigration runs gorm's auto migration for the image records table.
// AutoMigrate is idempotent, running it against an existing schema is a no-op.
func performAutoMigration(db *gorm.DB) error {
	if err := db.AutoMigrate(&ImageRecord{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migration").
			Build()
	}
	return nil
}
