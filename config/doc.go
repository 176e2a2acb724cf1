// Package config loads service configuration with Viper.
//
// A config.yml is looked up next to the service's cmd directory, an optional
// .env file is loaded with godotenv, and every leaf field of the target struct
// can be overridden by an environment variable named after its mapstructure
// path with the service prefix, e.g. VOICEMAP_PYANNOTE_BASE_URL.
package config
