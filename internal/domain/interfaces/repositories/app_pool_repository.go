package repositories

import (
	"context"

	"github.com/ochairo/mobscan/internal/domain/entities"
)

// AppPoolRepository defines the interface for accessing seed application templates
type AppPoolRepository interface {
	// ListTemplates returns all templates of the pool
	ListTemplates(ctx context.Context) ([]entities.AppTemplate, error)
}
