package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Production gets JSON output at info level,
// everything else gets the human-readable development encoder at debug.
func New(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
