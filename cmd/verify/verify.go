// Package verify implements the verify subcommand reporting orphaned cache
// files, i.e. files on disk with no matching metadata record.
package verify

import (
	"fmt"

	"github.com/jmurphy/apod-desktop/internal/conf"
	"github.com/jmurphy/apod-desktop/internal/datastore"
	"github.com/jmurphy/apod-desktop/internal/errors"
	"github.com/jmurphy/apod-desktop/internal/imagecache"
	"github.com/spf13/cobra"
)

// Command creates the verify subcommand
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Report cached files that have no metadata record",
		Long: `Scans the image directory for files whose content hash has no record in the
metadata database. Such orphans can appear when a run was interrupted between
the file write and the metadata insert. They are reported as reclaimable but
never deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(settings)
		},
	}
}

func runVerify(settings *conf.Settings) error {
	if settings.ImageDir == "" {
		return errors.NewStd("missing image directory, set --dir or imagedir in the config file")
	}

	store := datastore.New(settings, imagecache.DatabasePath(settings.ImageDir))
	if err := store.Open(); err != nil {
		return err
	}
	defer store.Close()

	cache := imagecache.New(store, settings.ImageDir)
	orphans, err := cache.ScanOrphans()
	if err != nil {
		return err
	}

	if len(orphans) == 0 {
		fmt.Println("No orphaned files found")
		return nil
	}

	fmt.Printf("Found %d orphaned file(s), safe to reclaim:\n", len(orphans))
	for _, path := range orphans {
		fmt.Println(" ", path)
	}
	return nil
}
