package notification

import "time"

const (
	MaxRetries     = 3
	retryDelayStep = 5 * time.Second
)

// BufferSchedule is the wait before each scheduled retry of a buffered job.
var BufferSchedule = []time.Duration{
	5 * time.Minute,
	20 * time.Minute,
	60 * time.Minute,
	240 * time.Minute,
}

// RetryDelay is the in-memory wait after the given number of failed attempts.
func RetryDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return retryDelayStep * time.Duration(attempts)
}

// BufferDelay returns the wait before scheduled retry number bufferRetries,
// or false once the schedule is exhausted.
func BufferDelay(bufferRetries int) (time.Duration, bool) {
	if bufferRetries < 0 || bufferRetries >= len(BufferSchedule) {
		return 0, false
	}
	return BufferSchedule[bufferRetries], true
}
