package test

import (
	"github.com/nats-io/nats.go"

	"github.com/safetycenter/safetycenter/server"
	"github.com/safetycenter/safetycenter/store"
)

// Server fires up a safety center with the given source registry for
// testing. Returns a client connection, ready-made credentials, and a stop
// function.
func Server(config store.Config) (*nats.Conn, server.TestCreds, func(), error) {
	return server.TestServer(config)
}

// TwoSourceConfig is a small registry used by many tests: two sources in one
// group plus a static entry.
func TwoSourceConfig() store.Config {
	return store.Config{
		Groups: []store.GroupConfig{
			{
				ID:    "device",
				Title: "Device safety",
				Sources: []store.SourceConfig{
					{ID: "lock", Title: "Screen lock", Summary: "No lock data yet"},
					{ID: "update", Title: "Security update", Summary: "No update data yet"},
				},
			},
		},
		Static: []store.StaticConfig{
			{Title: "About", Summary: "Device safety status"},
		},
	}
}
