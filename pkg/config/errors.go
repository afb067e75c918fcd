package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrParsingYAML is returned when a YAML overlay cannot be decoded.
	ErrParsingYAML = errors.New("failed to parse yaml config")

	// ErrConfigNotLoaded is returned when a config type has not been loaded.
	ErrConfigNotLoaded = errors.New("configuration has not been loaded")

	// ErrNilPointer is returned when a nil pointer is provided to Load.
	ErrNilPointer = errors.New("nil pointer provided to config loader")
)
