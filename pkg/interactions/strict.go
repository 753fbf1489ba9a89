// ABOUTME: Process-wide strict mode switch for unknown tags and enum values
// ABOUTME: Off by default; INTERACTIONS_STRICT_UNKNOWN=1 turns it on at startup

package interactions

import (
	"os"
	"strconv"
	"sync/atomic"
)

// StrictUnknownEnv names the environment variable read at init.
const StrictUnknownEnv = "INTERACTIONS_STRICT_UNKNOWN"

var strictUnknown atomic.Bool

func init() {
	if v, err := strconv.ParseBool(os.Getenv(StrictUnknownEnv)); err == nil {
		strictUnknown.Store(v)
	}
}

// SetStrictUnknown makes decoding fail with *UnknownTagError instead of
// producing Unknown values. Intended for CI runs that must catch API drift.
func SetStrictUnknown(on bool) {
	strictUnknown.Store(on)
}

// StrictUnknown reports whether strict mode is on.
func StrictUnknown() bool {
	return strictUnknown.Load()
}
