package logging

import (
	"maps"

	"github.com/goliatone/go-site/pkg/interfaces"
)

// WithFields binds fields when logger supports it and returns logger as is
// otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	fl, ok := logger.(interfaces.FieldsLogger)
	if !ok || len(fields) == 0 {
		return logger
	}
	return fl.WithFields(maps.Clone(fields))
}
