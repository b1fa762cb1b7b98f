// Package imagecache implements the content-addressed image cache. Images are
// stored as plain files under a base directory and indexed by the sha256 of
// their raw bytes in the metadata database, with a lookup-before-write policy
// so identical content is never persisted twice.
package imagecache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmurphy/apod-desktop/internal/datastore"
	"github.com/jmurphy/apod-desktop/internal/errors"
	"github.com/jmurphy/apod-desktop/internal/logging"
)

// DatabaseFileName is the fixed name of the metadata database inside the
// image directory.
const DatabaseFileName = "apod_images.db"

// Package-level logger for cache operations
var (
	cacheLogger   *slog.Logger
	cacheLevelVar = new(slog.LevelVar) // Dynamic level control
)

func init() {
	var err error
	cacheLevelVar.Set(slog.LevelInfo)

	cacheLogger, _, err = logging.NewFileLogger("logs/imagecache.log", "imagecache", cacheLevelVar)
	if err != nil {
		// Fall back to a disabled logger that still respects the level var
		logging.Error("Failed to initialize imagecache file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: cacheLevelVar})
		cacheLogger = slog.New(fbHandler).With("service", "imagecache")
	}
}

// SetLogLevel adjusts the level of the cache's file logger.
func SetLogLevel(level slog.Level) {
	cacheLevelVar.Set(level)
}

// ImageMeta carries the metadata recorded alongside a persisted image.
type ImageMeta struct {
	Date   string // APOD date the image was requested under
	Size   int64  // byte length of the image
	SHA256 string // hex digest of the raw image bytes
}

// Cache is a handle to one image cache: a base directory of image files plus
// the metadata store indexing them. Independent caches may coexist, nothing
// is shared between handles.
type Cache struct {
	store   datastore.Interface
	baseDir string
}

// New returns a cache backed by the given metadata store and base directory.
// The store must already be open.
func New(store datastore.Interface, baseDir string) *Cache {
	return &Cache{
		store:   store,
		baseDir: baseDir,
	}
}

// DatabasePath returns the metadata database path for an image directory.
func DatabasePath(baseDir string) string {
	return filepath.Join(baseDir, DatabaseFileName)
}

// Sum returns the hex encoded sha256 digest of data.
func Sum(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}

// ResolvePath derives the local file path for an image from the terminal
// segment of its source URL and creates missing intermediate directories.
// The same (baseDir, sourceURL) pair always resolves to the same path.
func ResolvePath(baseDir, sourceURL string) (string, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return "", errors.New(err).
			Component("imagecache").
			Category(errors.CategoryValidation).
			Context("operation", "resolve_path").
			Build()
	}

	segment := filepath.Base(parsed.Path)
	if segment == "." || segment == "/" || segment == "" {
		return "", errors.Newf("source URL %q has no file segment", sourceURL).
			Component("imagecache").
			Category(errors.CategoryValidation).
			Build()
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", errors.New(err).
			Component("imagecache").
			Category(errors.CategoryFileIO).
			Context("operation", "create_image_directory").
			Context("dir", baseDir).
			Build()
	}

	return filepath.Join(baseDir, segment), nil
}

// ResolvePath derives the local file path for an image source URL within the
// cache's base directory.
func (c *Cache) ResolvePath(sourceURL string) (string, error) {
	return ResolvePath(c.baseDir, sourceURL)
}

// IsKnown reports whether content with the given hash has already been
// persisted.
func (c *Cache) IsKnown(sha256Hex string) (bool, error) {
	return c.store.ImageExistsByHash(sha256Hex)
}

// Persist writes the image bytes to path and records its metadata, unless
// content with the same hash is already known, in which case neither the file
// write nor the insert happens. It returns true when a new record was
// persisted and false when the content was a known duplicate.
//
// The duplicate check and the write are kept inside this single method so a
// transactional guard can be added later without changing callers.
func (c *Cache) Persist(path string, data []byte, meta ImageMeta) (bool, error) {
	known, err := c.store.ImageExistsByHash(meta.SHA256)
	if err != nil {
		return false, err
	}

	if known {
		cacheLogger.Info("Content already cached, skipping persist",
			"sha256", meta.SHA256,
			"date", meta.Date)
		return false, nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, errors.New(err).
			Component("imagecache").
			Category(errors.CategoryFileIO).
			Context("operation", "write_image_file").
			Context("path", path).
			Build()
	}

	record := &datastore.ImageRecord{
		Date:         meta.Date,
		Size:         meta.Size,
		SHA256:       meta.SHA256,
		DownloadedAt: time.Now(),
	}

	if err := c.store.SaveImage(record); err != nil {
		// The file write succeeded but the insert did not, leaving an
		// orphaned file behind. Orphans are reported as reclaimable by
		// ScanOrphans rather than removed here.
		cacheLogger.Warn("Image file written but metadata insert failed, file is orphaned",
			"path", path,
			"sha256", meta.SHA256,
			"error", err)
		return false, err
	}

	cacheLogger.Info("Persisted new image",
		"path", path,
		"size", meta.Size,
		"sha256", meta.SHA256,
		"date", meta.Date)
	return true, nil
}

// ScanOrphans walks the base directory and returns the paths of image files
// whose content hash has no metadata record. Such files can appear when a
// metadata insert fails after the file write. They are reported as
// reclaimable, never deleted automatically.
func (c *Cache) ScanOrphans() ([]string, error) {
	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		return nil, errors.New(err).
			Component("imagecache").
			Category(errors.CategoryFileIO).
			Context("operation", "scan_orphans").
			Context("dir", c.baseDir).
			Build()
	}

	var orphans []string
	for _, entry := range entries {
		// Skip the metadata database and its sqlite sidecar files
		if entry.IsDir() || strings.HasPrefix(entry.Name(), DatabaseFileName) {
			continue
		}

		path := filepath.Join(c.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			cacheLogger.Warn("Failed to read file during orphan scan",
				"path", path,
				"error", err)
			continue
		}

		known, err := c.store.ImageExistsByHash(Sum(data))
		if err != nil {
			return nil, err
		}
		if !known {
			orphans = append(orphans, path)
		}
	}

	return orphans, nil
}
