// Package version reports build metadata for the /version endpoint and the
// startup banner.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/voicemap/version.Version=1.0.0" ./cmd/voicemap
package version
