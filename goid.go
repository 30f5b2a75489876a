package lazyslot

import "runtime"

// goroutineID returns the ID of the calling goroutine.
//
// The runtime does not expose goroutine IDs, so this parses the first line
// of the goroutine's stack trace, which has the stable format
// "goroutine 123 [running]:". The cost (~1.5µs) is paid only on the slot
// resolution paths, never on reads that hit owner storage directly.
func goroutineID() int64 {
	// The ID is on the first line, 64 bytes is more than enough.
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// parseGID extracts the numeric goroutine ID from stack trace bytes,
// returning 0 if the buffer does not start with "goroutine <digits>".
func parseGID(buf []byte) int64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}

	var gid int64
	for _, c := range buf[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		gid = gid*10 + int64(c-'0')
	}
	return gid
}
