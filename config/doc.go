// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the application configuration structure
// including listener addresses, backend addresses, strategy selection, and
// health check settings.
package config
