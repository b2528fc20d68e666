package driver

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/extractweb/extract-web/internal/domain"
)

// reporter prints the human-readable progress lines of a run
type reporter struct {
	w io.Writer
}

func (r *reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *reporter) extractionFailed(err error) {
	if domain.IsFetchError(err) {
		r.printf("Error fetching page: %v\n", err)
	} else {
		r.printf("Unexpected error: %v\n", err)
	}
	r.printf("Could not extract resources.\n")
}

// resources prints the discovered URLs. Empty lists get no header.
func (r *reporter) resources(page *domain.Page) {
	r.printf("Resources extracted successfully:\n")

	if len(page.Scripts) > 0 {
		r.printf("\nJavaScript files:\n")
		for _, u := range page.Scripts {
			r.printf("%s\n", u)
		}
	}

	if len(page.Stylesheets) > 0 {
		r.printf("\nCSS files:\n")
		for _, u := range page.Stylesheets {
			r.printf("%s\n", u)
		}
	}
}

func (r *reporter) directoryFailed(dir string, err error) {
	r.printf("Error creating directory %s: %v\n", dir, err)
}

func (r *reporter) downloaded(res *domain.DownloadResult) {
	r.printf("Downloaded %s (%s)\n", res.FileName, humanize.Bytes(uint64(res.BytesWritten)))
}

func (r *reporter) downloadFailed(resourceURL string, err error) {
	switch {
	case errors.Is(err, domain.ErrNoValidName):
		r.printf("Could not derive a valid name for resource %s\n", resourceURL)
	case domain.IsFilesystemError(err):
		r.printf("Error saving resource %s: %v\n", resourceURL, err)
	default:
		r.printf("Error downloading resource %s: %v\n", resourceURL, err)
	}
}

func (r *reporter) saved(name string) {
	r.printf("Saved %s\n", name)
}

func (r *reporter) saveFailed(name string, err error) {
	r.printf("Error saving file %s: %v\n", name, err)
}

func (r *reporter) summary(run *domain.RunReport, dir string) {
	r.printf("%d of %d resources downloaded to %s (%s), %d failed\n",
		run.Downloaded(),
		run.Page.ResourceCount(),
		dir,
		humanize.Bytes(uint64(run.TotalBytes())),
		run.Failed())
}
