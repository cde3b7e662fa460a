package pipeline

import (
	"errors"
	"fmt"
)

// Step sentinels tag pipeline failures with the step that produced them so
// the ledger error message stays classifiable. The engine treats every item
// failure the same way; the classification is advisory text for operators.
var (
	ErrFetch     = errors.New("fetch failed")
	ErrTransform = errors.New("transform failed")
	ErrStore     = errors.New("store failed")
)

func wrapStep(marker error, err error) error {
	if err == nil {
		return marker
	}
	return fmt.Errorf("%w: %w", marker, err)
}

// Classify renders an error into the message persisted on an error row.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFetch):
		return "fetch: " + trimMarker(err, ErrFetch)
	case errors.Is(err, ErrTransform):
		return "transform: " + trimMarker(err, ErrTransform)
	case errors.Is(err, ErrStore):
		return "store: " + trimMarker(err, ErrStore)
	default:
		return err.Error()
	}
}

func trimMarker(err, marker error) string {
	msg := err.Error()
	prefix := marker.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
