// model.go this code defines the data model for the application
package datastore

import "time"

// ImageRecord represents one cached APOD image. A record is created exactly
// once, at the first successful download of previously unseen content, and is
// never updated or deleted.
type ImageRecord struct {
	ID           uint      `gorm:"primaryKey"`
	Date         string    `gorm:"not null;index:idx_image_records_date"` // APOD date the image was requested under, YYYY-MM-DD
	Size         int64     `gorm:"not null"`                              // byte length of the stored file
	SHA256       string    `gorm:"column:sha256;not null;index:idx_image_records_sha256"`
	DownloadedAt time.Time `gorm:"not null"` // time of first successful persist
}
