// Package version exposes build metadata for the imagefeed binaries.
//
// Values are injected at link time and fall back to the VCS stamp Go embeds
// in the binary:
//
//	go build -ldflags "-X github.com/kbukum/imagefeed/version.Version=1.2.0" ./cmd/imagefeed
package version
