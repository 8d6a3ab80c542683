package canopy

// Version is the release of the canopy module.
// Release builds override it with -ldflags "-X github.com/aretw0/canopy.Version=...".
var Version = "0.1.0-dev"
