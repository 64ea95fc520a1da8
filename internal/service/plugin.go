package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ebookhub/ebookhub-server/internal/domain"
	domainerrors "github.com/ebookhub/ebookhub-server/internal/errors"
	"github.com/ebookhub/ebookhub-server/internal/id"
	"github.com/ebookhub/ebookhub-server/internal/store"
)

// PluginService manages the plugin registry. Plugins are inert records
// here, only their activation state is tracked.
type PluginService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewPluginService creates a new plugin registry service.
func NewPluginService(store *store.Store, logger *slog.Logger) *PluginService {
	return &PluginService{store: store, logger: logger}
}

// RegisterPluginRequest contains new plugin metadata.
type RegisterPluginRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Tags        []string `json:"tags,omitempty"`
}

// ListPlugins returns every registered plugin.
func (s *PluginService) ListPlugins(ctx context.Context) ([]*domain.Plugin, error) {
	var plugins []*domain.Plugin
	for plugin, err := range s.store.Plugins.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list plugins: %w", err)
		}
		plugins = append(plugins, plugin)
	}
	return plugins, nil
}

// GetPlugin returns a plugin by ID.
func (s *PluginService) GetPlugin(ctx context.Context, pluginID string) (*domain.Plugin, error) {
	plugin, err := s.store.Plugins.Get(ctx, pluginID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("plugin not found")
		}
		return nil, fmt.Errorf("get plugin: %w", err)
	}
	return plugin, nil
}

// RegisterPlugin adds a plugin to the registry, inactive by default.
// Titles are unique case-insensitively.
func (s *PluginService) RegisterPlugin(ctx context.Context, req RegisterPluginRequest) (*domain.Plugin, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	pluginID, err := id.Generate("plugin")
	if err != nil {
		return nil, fmt.Errorf("generate plugin ID: %w", err)
	}

	plugin := &domain.Plugin{
		Syncable: domain.Syncable{
			ID: pluginID,
		},
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	}
	plugin.InitTimestamps()

	if err := s.store.Plugins.Create(ctx, pluginID, plugin); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("plugin title already registered")
		}
		return nil, fmt.Errorf("create plugin: %w", err)
	}
	return plugin, nil
}

// TogglePlugin flips a plugin's activation state and returns the updated
// record.
func (s *PluginService) TogglePlugin(ctx context.Context, pluginID string) (*domain.Plugin, error) {
	plugin, err := s.GetPlugin(ctx, pluginID)
	if err != nil {
		return nil, err
	}

	plugin.IsActive = !plugin.IsActive
	plugin.Touch()

	if err := s.store.Plugins.Update(ctx, pluginID, plugin); err != nil {
		return nil, fmt.Errorf("update plugin: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Plugin toggled",
			"plugin_id", pluginID,
			"is_active", plugin.IsActive,
		)
	}
	return plugin, nil
}
