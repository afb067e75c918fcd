// Package config loads typed configuration from the environment.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv reads one or more .env files into the process environment.
//     Later files override earlier ones, real environment variables win.
//   - Load parses the environment into a struct by its `env` tags and
//     caches the result per type, so every caller sees the same copy.
//   - LoadYAML parses the environment and overlays a YAML file with
//     gopkg.in/yaml.v3, for deployments that ship a config file.
//
// Usage:
//
//	type Config struct {
//		Addr    string `env:"USERADMIN_ADDR" envDefault:":8080" yaml:"addr"`
//		Backend string `env:"USERADMIN_BACKEND" envDefault:"memory" yaml:"backend"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// ResetCache and ForceReload drop cached values, which tests use after
// changing the environment.
package config
