package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ebookhub/ebookhub-server/internal/domain"
	"github.com/ebookhub/ebookhub-server/internal/service"
)

func (s *Server) registerPluginRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-plugins",
		Method:      http.MethodGet,
		Path:        "/api/v1/plugins",
		Summary:     "List plugins",
		Tags:        []string{"Plugins"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPlugins)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-plugin",
		Method:      http.MethodGet,
		Path:        "/api/v1/plugins/{id}",
		Summary:     "Get plugin",
		Tags:        []string{"Plugins"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPlugin)

	huma.Register(s.api, huma.Operation{
		OperationID:   "register-plugin",
		Method:        http.MethodPost,
		Path:          "/api/v1/plugins",
		Summary:       "Register plugin",
		Description:   "Registers a new plugin. Plugins start out inactive.",
		Tags:          []string{"Plugins"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleRegisterPlugin)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggle-plugin",
		Method:      http.MethodPatch,
		Path:        "/api/v1/plugins/{id}/toggle",
		Summary:     "Toggle plugin",
		Description: "Flips the plugin's active state.",
		Tags:        []string{"Plugins"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleTogglePlugin)
}

// === DTOs ===

// PluginResponse is a registered plugin.
type PluginResponse struct {
	ID          string    `json:"id" doc:"Plugin ID"`
	Title       string    `json:"title" doc:"Plugin title"`
	Description string    `json:"description" doc:"Plugin description"`
	Tags        []string  `json:"tags,omitempty" doc:"Free-form tags"`
	IsActive    bool      `json:"is_active" doc:"Whether the plugin is active"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// PluginOutput wraps a single plugin for Huma.
type PluginOutput struct {
	Body PluginResponse
}

// PluginListOutput wraps a plugin listing for Huma.
type PluginListOutput struct {
	Body []PluginResponse
}

// RegisterPluginInput wraps a plugin registration.
type RegisterPluginInput struct {
	Body struct {
		Title       string   `json:"title" validate:"required" doc:"Plugin title, unique case-insensitively"`
		Description string   `json:"description" validate:"required" doc:"Plugin description"`
		Tags        []string `json:"tags,omitempty" doc:"Free-form tags"`
	}
}

// PluginIDInput identifies a plugin by path parameter.
type PluginIDInput struct {
	ID string `path:"id" doc:"Plugin ID"`
}

// === Handlers ===

func (s *Server) handleListPlugins(ctx context.Context, _ *struct{}) (*PluginListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	plugins, err := s.services.Plugin.ListPlugins(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PluginResponse, 0, len(plugins))
	for _, plugin := range plugins {
		out = append(out, mapPlugin(plugin))
	}
	return &PluginListOutput{Body: out}, nil
}

func (s *Server) handleGetPlugin(ctx context.Context, input *PluginIDInput) (*PluginOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	plugin, err := s.services.Plugin.GetPlugin(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PluginOutput{Body: mapPlugin(plugin)}, nil
}

func (s *Server) handleRegisterPlugin(ctx context.Context, input *RegisterPluginInput) (*PluginOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	plugin, err := s.services.Plugin.RegisterPlugin(ctx, service.RegisterPluginRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Tags:        input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}
	return &PluginOutput{Body: mapPlugin(plugin)}, nil
}

func (s *Server) handleTogglePlugin(ctx context.Context, input *PluginIDInput) (*PluginOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	plugin, err := s.services.Plugin.TogglePlugin(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PluginOutput{Body: mapPlugin(plugin)}, nil
}

// === Helpers ===

func mapPlugin(plugin *domain.Plugin) PluginResponse {
	return PluginResponse{
		ID:          plugin.ID,
		Title:       plugin.Title,
		Description: plugin.Description,
		Tags:        plugin.Tags,
		IsActive:    plugin.IsActive,
		CreatedAt:   plugin.CreatedAt,
		UpdatedAt:   plugin.UpdatedAt,
	}
}
