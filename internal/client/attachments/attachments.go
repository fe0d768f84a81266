// Package attachments turns local image files into issue screenshots.
package attachments

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/issue"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrTooLarge = errors.New("file exceeds the 5 MiB attachment limit")
	ErrNotImage = errors.New("file is not an image")
	ErrEmpty    = errors.New("file is empty")
)

// Result is the outcome for one path. Exactly one of Screenshot and Err is
// meaningful.
type Result struct {
	Path       string
	Screenshot issue.Screenshot
	Err        error
}

var nowFn = time.Now

// Load reads every path concurrently and returns one Result per path, in the
// order given. A failing file does not affect the others. Upload times are
// taken once for the batch and step by a millisecond per path, so the server
// keeps the given order.
func Load(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	base := nowFn()

	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			shot, err := loadOne(ctx, p, base.Add(time.Duration(i)*time.Millisecond))
			results[i] = Result{Path: p, Screenshot: shot, Err: err}
		}(i, p)
	}
	wg.Wait()

	return results
}

// Screenshots returns the successful results' screenshots and a combined
// error for the failures, if any.
func Screenshots(results []Result) ([]issue.Screenshot, error) {
	shots := make([]issue.Screenshot, 0, len(results))
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, r.Err))
			continue
		}
		shots = append(shots, r.Screenshot)
	}
	return shots, errors.Join(errs...)
}

func loadOne(ctx context.Context, path string, uploadedAt time.Time) (issue.Screenshot, error) {
	if err := ctx.Err(); err != nil {
		return issue.Screenshot{}, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		return issue.Screenshot{}, err
	}
	if fi.IsDir() {
		return issue.Screenshot{}, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > issue.MaxScreenshotSize {
		return issue.Screenshot{}, ErrTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return issue.Screenshot{}, err
	}
	// the file may have grown since Stat
	if len(data) > issue.MaxScreenshotSize {
		return issue.Screenshot{}, ErrTooLarge
	}
	if len(data) == 0 {
		return issue.Screenshot{}, ErrEmpty
	}

	mime := mimetype.Detect(data)
	mediaType, _, _ := strings.Cut(mime.String(), ";")
	if !strings.HasPrefix(mediaType, "image/") {
		return issue.Screenshot{}, fmt.Errorf("%w: detected %s", ErrNotImage, mediaType)
	}

	return issue.Screenshot{
		ID:         issue.NewScreenshotID(),
		Name:       filepath.Base(path),
		Data:       "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data),
		Type:       mediaType,
		Size:       int64(len(data)),
		UploadedAt: issue.FormatTime(uploadedAt),
	}, nil
}
