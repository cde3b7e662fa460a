package pipeline

import (
	"context"
	"log/slog"

	"darkroom/internal/logging"
	"darkroom/internal/photos"
	"darkroom/internal/transform"
)

// Pipeline turns one photo's source ref into a stored target ref. It is
// stateless: the outcome depends only on the source ref and the transform
// options, which is what makes retried and duplicate claims harmless.
type Pipeline struct {
	source photos.Source
	target photos.Target
	logger *slog.Logger
}

// New constructs a pipeline over the given asset stores.
func New(source photos.Source, target photos.Target, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{source: source, target: target, logger: logger}
}

// Process fetches the photo at sourceRef, re-encodes it, and stores the
// result under the deterministic key for id. Failures are tagged with the
// step that produced them and never abort anything beyond this item.
func (p *Pipeline) Process(ctx context.Context, id int64, sourceRef string, opts transform.Options) (string, error) {
	data, err := p.source.Fetch(ctx, sourceRef)
	if err != nil {
		return "", wrapStep(ErrFetch, err)
	}

	encoded, err := transform.Reencode(data, opts)
	if err != nil {
		return "", wrapStep(ErrTransform, err)
	}

	targetRef, err := p.target.Store(ctx, photos.Key(id, sourceRef), encoded)
	if err != nil {
		return "", wrapStep(ErrStore, err)
	}

	p.logger.Debug("photo migrated",
		logging.Int64("photo_id", id),
		logging.Int("source_bytes", len(data)),
		logging.Int("target_bytes", len(encoded)),
	)
	return targetRef, nil
}
