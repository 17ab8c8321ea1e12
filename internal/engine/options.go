package engine

import (
	"os"
	"strconv"
)

// Options configures open-time tunables the engine needs even though a
// config-file format is explicitly out of scope: batch size bounds today,
// a home for sync-policy and oversized-value knobs as they're added. The
// caller constructs this directly; there is no file to load it from.
type Options struct {
	// MaxBatchOperations is the most operations a single CommitBatch call
	// accepts before it's rejected with ErrInvalidArgument.
	MaxBatchOperations int
	// MaxBatchBytes is the most aggregate value bytes a single CommitBatch
	// call accepts before it's rejected with ErrInvalidArgument.
	MaxBatchBytes int64
}

// DefaultOptions returns the batch bounds, overridable via
// DOCSTORE_MAX_BATCH_OPS / DOCSTORE_MAX_BATCH_BYTES.
func DefaultOptions() Options {
	return Options{
		MaxBatchOperations: getEnvInt("DOCSTORE_MAX_BATCH_OPS", 1000),
		MaxBatchBytes:      getEnvInt64("DOCSTORE_MAX_BATCH_BYTES", 100*1024*1024),
	}
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
