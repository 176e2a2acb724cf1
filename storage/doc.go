// Package storage keeps uploaded recordings so segments can be cut from them
// later.
//
// Backends register a Factory under a provider name. Import the backend
// package for its side effect before calling New:
//
//	import _ "github.com/kbukum/voicemap/storage/local"
//
//	st, err := storage.New(cfg, log)
//
// Supported providers: local filesystem (default) and Amazon S3 or any
// S3-compatible service.
package storage
