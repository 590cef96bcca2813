package ocr

import (
	"context"

	"github.com/Abraxas-365/saenggibu/pkg/asyncx"
)

// DefaultWorkers bounds concurrent provider calls per document.
const DefaultWorkers = 4

// RecognizeAll runs r over every image with at most workers concurrent
// calls and merges the pages in input order. The first failure aborts the
// document.
func RecognizeAll(ctx context.Context, r Recognizer, images []Image, workers int, opts ...Option) (*Document, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	pages, err := asyncx.Pool(ctx, workers, images, func(ctx context.Context, img Image) (*Page, error) {
		return r.Recognize(ctx, img, opts...)
	})
	if err != nil {
		return nil, err
	}
	return MergePages(pages), nil
}
