package statescript

// Version is the release of this module. Overridden at link time with
// -ldflags "-X github.com/aretw0/statescript.Version=...".
var Version = "0.3.0-dev"
