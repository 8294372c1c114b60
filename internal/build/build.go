// Package build carries values stamped in at link time.
package build

// Version is overridden with -ldflags "-X github.com/drummonds/pdfthumbs/internal/build.Version=..."
var Version = "dev"
