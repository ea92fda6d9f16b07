package consts

import "time"

// Wire protocol limits
const (
	// DefaultFrameLimit is the maximum length in bytes of one encoded
	// frame (tag, separator, payload and line terminator included)
	DefaultFrameLimit = 255
)

// Buffer sizes for various operations
const (
	// BufferSize1KB is 1 kilobyte
	BufferSize1KB = 1024
	// BufferSize4KB is 4 kilobytes
	BufferSize4KB = 4 * 1024
)

// Timeouts for various operations
const (
	// DefaultQueueWait is how long a delivery-queue consumer waits for a
	// message before receiving the no-message sentinel
	DefaultQueueWait = 1 * time.Second
	// AcceptPollInterval is the listener deadline used so the accept loop
	// can periodically check for shutdown
	AcceptPollInterval = 1 * time.Second
	// Timeout5Seconds is a 5 second timeout
	Timeout5Seconds = 5 * time.Second
	// Timeout10Seconds is a 10 second timeout
	Timeout10Seconds = 10 * time.Second
)
