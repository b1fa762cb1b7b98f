// Package fetch implements the fetch subcommand: the full
// fetch, dedup-check, persist, set-background pipeline.
package fetch

import (
	"fmt"

	"github.com/jmurphy/apod-desktop/internal/apod"
	"github.com/jmurphy/apod-desktop/internal/conf"
	"github.com/jmurphy/apod-desktop/internal/datastore"
	"github.com/jmurphy/apod-desktop/internal/errors"
	"github.com/jmurphy/apod-desktop/internal/imagecache"
	"github.com/jmurphy/apod-desktop/internal/logging"
	"github.com/jmurphy/apod-desktop/internal/wallpaper"
	"github.com/spf13/cobra"
)

// Command creates the fetch subcommand
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [date]",
		Short: "Fetch the APOD for a date, cache it and set it as desktop background",
		Long: `Fetches NASA's Astronomy Picture of the Day for the given date (default today),
stores it in the image cache unless identical content was downloaded before,
and sets it as the desktop background.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := apod.Today()
			if len(args) > 0 {
				date = args[0]
			}
			noWallpaper, _ := cmd.Flags().GetBool("no-wallpaper")
			return runFetch(settings, date, noWallpaper)
		},
	}

	cmd.Flags().Bool("no-wallpaper", false, "Skip setting the desktop background")

	return cmd
}

// runFetch executes the pipeline. Control flows one way: fetcher, cache
// store, background setter. Any core error aborts the run.
func runFetch(settings *conf.Settings, date string, noWallpaper bool) error {
	if settings.ImageDir == "" {
		return errors.NewStd("missing image directory, set --dir or imagedir in the config file")
	}

	if err := apod.ValidateDate(date); err != nil {
		return err
	}

	// Open the metadata store first so a broken store aborts before any
	// network traffic.
	store := datastore.New(settings, imagecache.DatabasePath(settings.ImageDir))
	if err := store.Open(); err != nil {
		return err
	}
	defer store.Close()

	cache := imagecache.New(store, settings.ImageDir)
	client := apod.NewClient(settings)

	info, err := client.FetchInfo(date)
	if err != nil {
		return err
	}

	imageURL := info.ImageURL()
	data, err := client.Download(imageURL)
	if err != nil {
		return err
	}

	hash := imagecache.Sum(data)
	path, err := cache.ResolvePath(imageURL)
	if err != nil {
		return err
	}

	fmt.Printf("APOD date:  %s\n", date)
	fmt.Printf("Title:      %s\n", info.Title)
	fmt.Printf("Saved from: %s\n", imageURL)
	fmt.Printf("Saved at:   %s\n", path)
	fmt.Printf("Size:       %d bytes\n", len(data))
	fmt.Printf("SHA-256:    %s\n", hash)

	persisted, err := cache.Persist(path, data, imagecache.ImageMeta{
		Date:   date,
		Size:   int64(len(data)),
		SHA256: hash,
	})
	if err != nil {
		return err
	}
	if !persisted {
		fmt.Println("Image already in cache, nothing to download")
	}

	if noWallpaper || !settings.Wallpaper.Enabled {
		return nil
	}

	// A wallpaper failure doesn't invalidate the cached image, warn and
	// finish normally.
	if err := wallpaper.Set(path, settings.Wallpaper.Mode); err != nil {
		logging.Warn("Failed to set desktop background", "path", path, "error", err)
		fmt.Println("Warning: could not set desktop background:", err)
	} else {
		logging.Info("Desktop background updated", "path", path, "mode", settings.Wallpaper.Mode)
	}

	return nil
}
