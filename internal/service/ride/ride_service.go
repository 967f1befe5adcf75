// Package ride runs the full reconstruction pipeline: segmentation, endpoint
// resolution, station lookup and geo-referencing.
package ride

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridetrace/internal/config"
	"ridetrace/internal/model"
	"ridetrace/internal/postgres"
	"ridetrace/internal/service/diagnostics"
	"ridetrace/internal/service/endpoint"
	"ridetrace/internal/service/gazetteer"
	"ridetrace/internal/service/georef"
	"ridetrace/internal/service/locator"
	"ridetrace/internal/service/receipt"
	"ridetrace/internal/service/segment"
	"ridetrace/internal/service/storage"
	"ridetrace/internal/util"

	"github.com/rs/zerolog"
)

// Reconstruction is the output of one pipeline run. Fields are filled as far
// as the pipeline got, so a failed run may still carry the route contour or
// the pixel-space route.
type Reconstruction struct {
	Ride    *model.Ride          `json:"ride"`
	Contour *model.ContourRegion `json:"-"`
	Start   *locator.Match       `json:"start_match,omitempty"`
	End     *locator.Match       `json:"end_match,omitempty"`
	ASCII   string               `json:"ascii,omitempty"`
	Summary diagnostics.Summary  `json:"summary"`
	Cached  bool                 `json:"cached"`
}

// Service wires the pipeline stages together. It is safe for concurrent use;
// the gazetteer is shared read-only.
type Service struct {
	gaz      *gazetteer.Gazetteer
	locator  *locator.Locator
	seg      segment.Segmenter
	resolver *endpoint.Resolver
	fetcher  receipt.Fetcher

	cache    Cache
	cacheTTL time.Duration
	store    storage.Storage[string, *model.Ride]
	persist  Persister

	workers     int
	asciiW      int
	asciiH      int
	summaryHead int
	log         zerolog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithCache enables the route cache.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithPersister enables ride persistence.
func WithPersister(p Persister) Option {
	return func(s *Service) { s.persist = p }
}

// WithStore replaces the in-memory ride store.
func WithStore(st storage.Storage[string, *model.Ride]) Option {
	return func(s *Service) { s.store = st }
}

// WithFetcher replaces the map image downloader.
func WithFetcher(f receipt.Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithScorer replaces the station similarity function.
func WithScorer(sc locator.Scorer) Option {
	return func(s *Service) { s.locator = locator.New(s.gaz, locator.WithScorer(sc), locator.WithMinScore(s.locator.MinScore()), locator.WithLogger(s.log)) }
}

// WithSegmenter replaces the segmentation backend.
func WithSegmenter(seg segment.Segmenter) Option {
	return func(s *Service) { s.seg = seg }
}

// New builds a Service from configuration.
func New(cfg config.Config, gaz *gazetteer.Gazetteer, log zerolog.Logger, opts ...Option) (*Service, error) {
	segOpts, err := segment.OptionsFromConfig(cfg, log.With().Str("component", "segment").Logger())
	if err != nil {
		return nil, err
	}
	seg, err := segment.New(cfg.SegmenterBackend, segOpts)
	if err != nil {
		return nil, err
	}

	s := &Service{
		gaz: gaz,
		locator: locator.New(gaz,
			locator.WithMinScore(cfg.FuzzyMatchMin),
			locator.WithLogger(log.With().Str("component", "locator").Logger()),
		),
		seg:         seg,
		resolver:    endpoint.New(cfg.CircularityMin, log.With().Str("component", "endpoint").Logger()),
		fetcher:     receipt.NewHTTPFetcher(cfg.FetchTimeout),
		cacheTTL:    cfg.CacheTTL,
		store:       storage.NewMemoryStorage[string, *model.Ride](),
		workers:     max(cfg.Workers, 1),
		asciiW:      cfg.AsciiWidth,
		asciiH:      cfg.AsciiHeight,
		summaryHead: diagnostics.DefaultHead,
		log:         log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Gazetteer returns the station table the service matches against.
func (s *Service) Gazetteer() *gazetteer.Gazetteer { return s.gaz }

// Locator returns the station matcher.
func (s *Service) Locator() *locator.Locator { return s.locator }

// Reconstruct runs the pipeline on raw image bytes and the two station names.
func (s *Service) Reconstruct(ctx context.Context, img []byte, startName, endName string) (*Reconstruction, error) {
	return s.reconstruct(ctx, img, &model.Ride{StartStation: startName, EndStation: endName})
}

func (s *Service) reconstruct(ctx context.Context, img []byte, base *model.Ride) (*Reconstruction, error) {
	key := cacheKey(img, base.StartStation, base.EndStation)
	if cached := s.cached(ctx, key); cached != nil {
		mergeReceipt(cached, base)
		rec := s.describe(cached)
		rec.Cached = true
		s.store.Set(cached.ID, cached)
		return rec, nil
	}

	rec, err := s.run(ctx, img, base)
	if err != nil {
		return rec, err
	}
	s.remember(ctx, key, rec.Ride)
	s.store.Set(rec.Ride.ID, rec.Ride)
	return rec, nil
}

func (s *Service) run(ctx context.Context, img []byte, ride *model.Ride) (*Reconstruction, error) {
	started := time.Now()
	rec := &Reconstruction{Ride: ride}

	seg, err := segment.SegmentBytes(ctx, s.seg, img)
	if err != nil && seg == nil {
		return nil, err
	}
	if err != nil {
		// a missing marker class still lets the route contour be reported
		if c := endpoint.LargestArea(seg.Route); c != nil {
			rec.Contour = c
		}
		return rec, err
	}

	res, err := s.resolver.Resolve(seg.Route, seg.Marker)
	if res != nil {
		rec.Contour = res.Contour
	}
	if err != nil {
		return rec, err
	}
	ride.Route = res.Route
	rec.ASCII = diagnostics.ASCII(ride.Route, s.asciiW, s.asciiH)
	rec.Summary = diagnostics.Summarize(ride.Route, nil, model.GeoPoint{}, model.GeoPoint{}, nil, s.summaryHead)

	start, err := s.locate("start", ride.StartStation)
	rec.Start = &start
	if err != nil {
		return rec, err
	}
	end, err := s.locate("end", ride.EndStation)
	rec.End = &end
	if err != nil {
		return rec, err
	}
	ride.StartMatch, ride.StartGeo = start.Name, start.Geo
	ride.EndMatch, ride.EndGeo = end.Name, end.Geo

	geo, err := georef.Georeference(ride.Route, start.Geo, end.Geo)
	if err != nil {
		return rec, err
	}
	ride.GeoRoute = geo
	ride.LengthMeters = diagnostics.Length(geo)
	ride.ID = util.ShortUUID()
	ride.UpdatedAt = time.Now().UTC()
	rec.Summary = diagnostics.Summarize(ride.Route, geo, ride.StartGeo, ride.EndGeo, s.gaz, s.summaryHead)

	s.log.Debug().
		Str("ride", ride.ID).
		Int("pixels", len(ride.Route.Pixels)).
		Float64("length_m", ride.LengthMeters).
		Dur("took", time.Since(started)).
		Msg("route reconstructed")
	return rec, nil
}

func (s *Service) locate(role, name string) (locator.Match, error) {
	m, ok := s.locator.Locate(name)
	if !ok {
		return m, &model.LocatorError{Role: role, Query: m.Query, Score: m.Score}
	}
	return m, nil
}

// describe rebuilds the text diagnostics of a finished ride.
func (s *Service) describe(ride *model.Ride) *Reconstruction {
	rec := &Reconstruction{Ride: ride}
	if ride.Route != nil {
		rec.ASCII = diagnostics.ASCII(ride.Route, s.asciiW, s.asciiH)
		rec.Summary = diagnostics.Summarize(ride.Route, ride.GeoRoute, ride.StartGeo, ride.EndGeo, s.gaz, s.summaryHead)
	}
	return rec
}

// mergeReceipt copies receipt metadata from src onto dst.
func mergeReceipt(dst, src *model.Ride) {
	dst.ReceiptNumber = src.ReceiptNumber
	dst.Date, dst.Time = src.Date, src.Time
	dst.StartTime, dst.EndTime = src.StartTime, src.EndTime
	dst.Charges = src.Charges
	dst.PaymentMethod = src.PaymentMethod
	dst.Total, dst.Savings = src.Total, src.Savings
	dst.ImageRef = src.ImageRef
}

// Ride returns a ride from memory, falling back to the persister.
func (s *Service) Ride(ctx context.Context, id string) (*model.Ride, bool, error) {
	if r, ok := s.store.Get(id); ok {
		return r, true, nil
	}
	if s.persist == nil {
		return nil, false, nil
	}
	r, err := s.persist.FindRide(ctx, id)
	if errors.Is(err, postgres.ErrRideNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load ride %s: %w", id, err)
	}
	return r, true, nil
}
