// Package config loads configuration structs from environment variables
// (with optional .env file support) using `env:` struct tags.
//
// It exists so hosts can configure the engine from the environment without
// writing any glue; see engine.ConfigFromEnv for the canonical consumer.
package config
