package yaml

import (
	"context"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

// AppPoolRepository implements repositories.AppPoolRepository with a YAML file.
// An empty path serves the fallback pool.
type AppPoolRepository struct {
	path     string
	fallback []entities.AppTemplate
	parser   *AppPoolParser
}

// NewAppPoolRepository creates a new YAML-based app pool repository
func NewAppPoolRepository(path string, fallback []entities.AppTemplate) *AppPoolRepository {
	return &AppPoolRepository{
		path:     path,
		fallback: fallback,
		parser:   NewAppPoolParser(),
	}
}

// ListTemplates returns the templates of the pool file or the fallback pool
func (r *AppPoolRepository) ListTemplates(_ context.Context) ([]entities.AppTemplate, error) {
	if r.path == "" {
		out := make([]entities.AppTemplate, len(r.fallback))
		copy(out, r.fallback)
		return out, nil
	}
	return r.parser.ParseFile(r.path)
}
