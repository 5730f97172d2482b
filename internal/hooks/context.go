package hooks

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/mdexport/internal/config"
)

// BuildContext carries the services and state hooks need during one build.
// It is constructed once per export run; hooks share it.
type BuildContext struct {
	// Context is the standard Go context for cancellation.
	Context context.Context

	// Logger provides structured logging for hook operations.
	Logger *slog.Logger

	// Config is the mdexport configuration for this run.
	Config *config.Config

	// OutputDir is the root of the exported markdown tree.
	OutputDir string

	// BuildID uniquely identifies this export run.
	BuildID string

	// Data lets hooks share state during one run without direct coupling.
	Data map[string]any
}

// NewBuildContext creates a build context with a fresh build ID.
func NewBuildContext(ctx context.Context, logger *slog.Logger, cfg *config.Config, outputDir string) *BuildContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildContext{
		Context:   ctx,
		Logger:    logger,
		Config:    cfg,
		OutputDir: outputDir,
		BuildID:   uuid.NewString(),
		Data:      make(map[string]any),
	}
}
