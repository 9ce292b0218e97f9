package config

// Version is the Rootline binary version.
// Set at build time via: -ldflags "-X github.com/rootlinehq/rootline/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
