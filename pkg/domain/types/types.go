package types

// Version is the service version, overridden at build time via ldflags
var Version = "dev"

// ServiceName identifies this service in health responses and log output
const ServiceName = "rancher-release-bot"
