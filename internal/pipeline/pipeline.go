// Package pipeline turns bookmarks into a GeoJSON feature collection:
// extract place ID, look it up, map the result to a feature.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/places-geojson/internal/feature"
	"github.com/sells-group/places-geojson/internal/model"
	"github.com/sells-group/places-geojson/pkg/google"
)

// Pipeline drives extraction, lookup and mapping for a batch of bookmarks.
type Pipeline struct {
	client         google.Client
	concurrency    int
	skipUnresolved bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency sets the maximum number of in-flight lookups. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.concurrency = max(1, n)
	}
}

// WithSkipUnresolved makes bookmarks without a place ID a warning instead of a fatal error.
func WithSkipUnresolved(skip bool) Option {
	return func(p *Pipeline) {
		p.skipUnresolved = skip
	}
}

// New creates a Pipeline that resolves places through client.
func New(client google.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:      client,
		concurrency: 1,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Skipped records a bookmark left out of the collection in skip mode.
type Skipped struct {
	Row   int    `json:"row"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Result is the output of a successful run.
type Result struct {
	RunID      string
	Collection *geojson.FeatureCollection
	Skipped    []Skipped
	Lookups    int
}

// Run converts records into a FeatureCollection in input order. It returns either a
// complete result or an error, never a partial collection.
func (p *Pipeline) Run(ctx context.Context, records []model.Bookmark) (*Result, error) {
	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("pipeline: starting run", zap.Int("records", len(records)), zap.Int("concurrency", p.concurrency))

	result := &Result{RunID: runID}

	// Extract every ID up front so an unresolvable row fails before any billed lookup.
	var resolved []Resolution
	for _, r := range Plan(records) {
		log.Debug("pipeline: record", zap.Int("row", r.Row), zap.String("title", r.Title), zap.String("place_id", string(r.PlaceID)))
		if r.Found {
			resolved = append(resolved, r)
			continue
		}
		if !p.skipUnresolved {
			return nil, &MissingIdentifierError{Row: r.Row, Title: r.Title, URL: r.URL}
		}
		log.Warn("pipeline: skipping bookmark without place id",
			zap.Int("row", r.Row),
			zap.String("title", r.Title),
			zap.String("url", r.URL),
		)
		result.Skipped = append(result.Skipped, Skipped{Row: r.Row, Title: r.Title, URL: r.URL})
	}

	places, err := p.lookup(ctx, resolved)
	if err != nil {
		return nil, err
	}
	result.Lookups = len(places)

	features := make([]*geojson.Feature, 0, len(resolved))
	for _, r := range resolved {
		f := feature.ToFeature(*places[r.PlaceID])
		log.Debug("pipeline: feature", zap.Int("row", r.Row), zap.Any("properties", f.Properties))
		features = append(features, f)
	}
	result.Collection = feature.NewCollection(features)

	log.Info("pipeline: run complete",
		zap.Int("records", len(records)),
		zap.Int("features", len(features)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("lookups", result.Lookups),
	)
	return result, nil
}

// lookup fetches each distinct place ID once. Lookups write into index-addressed
// slots so completion order never affects the output.
func (p *Pipeline) lookup(ctx context.Context, resolved []Resolution) (map[model.PlaceID]*model.Place, error) {
	ids := distinctIDs(resolved)
	owner := make(map[model.PlaceID]Resolution, len(ids))
	for _, r := range resolved {
		if _, ok := owner[r.PlaceID]; !ok {
			owner[r.PlaceID] = r
		}
	}

	slots := make([]*model.Place, len(ids))
	fetch := func(ctx context.Context, i int) error {
		id := ids[i]
		place, err := p.client.PlaceDetails(ctx, id)
		if err == nil && place == nil {
			err = eris.Errorf("pipeline: empty place details for %s", id)
		}
		if err != nil {
			r := owner[id]
			return &RecordError{Row: r.Row, Title: r.Title, URL: r.URL, Err: err}
		}
		zap.L().Debug("pipeline: place details",
			zap.String("place_id", string(id)),
			zap.String("name", place.Name),
			zap.String("address", place.FormattedAddress),
		)
		slots[i] = place
		return nil
	}

	if p.concurrency <= 1 {
		for i := range ids {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "pipeline: context cancelled")
			}
			if err := fetch(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(p.concurrency)
		for i := range ids {
			g.Go(func() error {
				// Skip remaining lookups once one has failed.
				if err := gCtx.Err(); err != nil {
					return eris.Wrap(err, "pipeline: context cancelled")
				}
				return fetch(gCtx, i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	places := make(map[model.PlaceID]*model.Place, len(ids))
	for i, id := range ids {
		places[id] = slots[i]
	}
	return places, nil
}
