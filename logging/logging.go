package logging

import "go.uber.org/zap"

// New creates a zap logger for the given environment. Production logs JSON at
// info, development logs console at debug, anything else gets the example
// logger.
func New(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewExample(), nil
	}
}
