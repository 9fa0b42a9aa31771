// Package config loads typed configuration structs from environment
// variables. Each struct type is parsed once per process and cached, so
// packages can call Load for their own config without coordinating startup
// order. A .env file is loaded on first use when present.
package config
