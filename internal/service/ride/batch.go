package ride

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ridetrace/internal/model"
	"ridetrace/internal/service/receipt"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"
)

// ReceiptExtensions are the file extensions ProcessDir picks up.
var ReceiptExtensions = mapset.NewSet(".eml")

// BatchItem is the outcome for one receipt of a batch.
type BatchItem struct {
	Path   string
	Ride   *model.Ride
	Result *Reconstruction
	Err    error
}

// ProcessReceipt parses an .eml receipt, loads its map image and reconstructs the route.
func (s *Service) ProcessReceipt(ctx context.Context, path string) (*Reconstruction, error) {
	rc, err := receipt.ParseFile(path)
	if err != nil {
		return nil, err
	}
	img, err := rc.MapImage(ctx, s.fetcher)
	if err != nil {
		return &Reconstruction{Ride: rc.Ride()}, err
	}
	return s.ReconstructReceipt(ctx, rc, img)
}

// ReconstructReceipt reconstructs the route of an already parsed receipt from
// the given map image, carrying the receipt metadata onto the ride.
func (s *Service) ReconstructReceipt(ctx context.Context, rc *receipt.Receipt, img []byte) (*Reconstruction, error) {
	return s.reconstruct(ctx, img, rc.Ride())
}

// ReceiptFiles lists the receipts directly inside dir in lexicographic order.
func ReceiptFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ReceiptExtensions.Contains(strings.ToLower(filepath.Ext(e.Name()))) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ProcessDir reconstructs every receipt in dir. One item is returned per file,
// in file order; a failing receipt is logged and does not stop the batch.
// Only a context cancellation aborts the run.
func (s *Service) ProcessDir(ctx context.Context, dir string) ([]BatchItem, error) {
	paths, err := ReceiptFiles(dir)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("dir", dir).Int("files", len(paths)).Int("workers", s.workers).Msg("processing receipts")

	items := make([]BatchItem, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = s.processItem(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return items, err
	}

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	s.log.Info().Str("dir", dir).Int("ok", len(items)-failed).Int("failed", failed).Msg("batch finished")
	return items, nil
}

func (s *Service) processItem(ctx context.Context, path string) BatchItem {
	item := BatchItem{Path: path}
	rec, err := s.ProcessReceipt(ctx, path)
	item.Result, item.Err = rec, err
	if rec != nil {
		item.Ride = rec.Ride
	}
	if err != nil {
		s.log.Warn().
			Str("file", filepath.Base(path)).
			Str("kind", model.Kind(err)).
			Err(err).
			Msg("receipt skipped")
		return item
	}
	s.log.Info().
		Str("file", filepath.Base(path)).
		Str("ride", rec.Ride.ID).
		Float64("length_m", rec.Ride.LengthMeters).
		Msg("receipt processed")
	return item
}
