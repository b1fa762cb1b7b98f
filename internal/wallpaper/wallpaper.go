// Package wallpaper asks the operating system to use a local image file as
// the desktop background. Failures here are not fatal to the caching
// pipeline, callers log them and move on.
package wallpaper

import (
	"path/filepath"

	"github.com/jmurphy/apod-desktop/internal/errors"
)

// Set applies the image at path as the desktop background. The mode controls
// picture placement where the platform supports it (e.g. "zoom", "scaled").
func Set(path, mode string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.New(err).
			Component("wallpaper").
			Category(errors.CategoryWallpaper).
			Context("path", path).
			Build()
	}

	if err := setDesktopBackground(abs, mode); err != nil {
		return errors.New(err).
			Component("wallpaper").
			Category(errors.CategoryWallpaper).
			Context("path", abs).
			Build()
	}

	return nil
}
