// Package logger provides structured logging for voicemap using zerolog.
//
// Loggers are component scoped and take their structured fields as maps:
//
//	log := logger.Get("explorer")
//	log.Info("projection computed", logger.Fields(logger.FieldSessionID, sid, "points", n))
package logger
