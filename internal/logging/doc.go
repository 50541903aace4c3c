// Package logging provides structured logging for lfslocker.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// persistent context (repository, cycle number) so that a long-running sync
// session can be analyzed after the fact.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/var/log/lfslocker.log", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	cycleLogger := logger.WithRepository("/work/game").WithCycle(12)
//	cycleLogger.Info("locking path", "path", "art/hero.psd")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"locking path","repository":"/work/game","cycle":12,"path":"art/hero.psd"}
//
// An empty path writes to stderr.
//
// # Log Rotation
//
// The sync loop runs for the lifetime of a work session, so file logs rotate
// by size:
//
//	logger, err := logging.NewLoggerWithRotation(path, "DEBUG", logging.RotationConfig{
//	    MaxSizeMB:  10,
//	    MaxBackups: 3,
//	})
//
// Rotated files are named lfslocker.log.1 (newest) through lfslocker.log.N.
//
// # Testing
//
// Use [NopLogger] to discard output, or [NewWriterLogger] with a bytes.Buffer
// to assert on emitted records.
package logging
