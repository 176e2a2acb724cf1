// Package errors provides the structured error type shared by every voicemap
// package. Each AppError carries a machine-readable code, the HTTP status the
// route layer should answer with, and an advisory retryable flag. The JSON
// envelope follows RFC 7807.
package errors
