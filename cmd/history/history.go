// Package history implements the history subcommand listing cached images.
package history

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jmurphy/apod-desktop/internal/conf"
	"github.com/jmurphy/apod-desktop/internal/datastore"
	"github.com/jmurphy/apod-desktop/internal/errors"
	"github.com/jmurphy/apod-desktop/internal/imagecache"
	"github.com/spf13/cobra"
)

// Command creates the history subcommand
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List cached APOD images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(settings)
		},
	}
}

func runHistory(settings *conf.Settings) error {
	if settings.ImageDir == "" {
		return errors.NewStd("missing image directory, set --dir or imagedir in the config file")
	}

	store := datastore.New(settings, imagecache.DatabasePath(settings.ImageDir))
	if err := store.Open(); err != nil {
		return err
	}
	defer store.Close()

	records, err := store.GetAllImages()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No cached images")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSIZE\tSHA-256\tDOWNLOADED")
	for i := range records {
		r := &records[i]
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			r.Date, r.Size, r.SHA256, r.DownloadedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
