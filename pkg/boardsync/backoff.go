package boardsync

import "time"

// Reconnect timing. The first retry waits baseDelay; each failure doubles
// the wait up to maxDelay.
const (
	baseDelay = 1 * time.Second
	maxDelay  = 30 * time.Second
)

// Backoff produces the reconnect delay sequence 1s, 2s, 4s, ... capped at
// 30s. A successful sync resets it. The zero value is ready to use.
type Backoff struct {
	next time.Duration
}

// Next returns the delay to wait before the upcoming attempt and advances
// the sequence.
func (b *Backoff) Next() time.Duration {
	if b.next == 0 {
		b.next = baseDelay
	}
	d := b.next
	b.next *= 2
	if b.next > maxDelay {
		b.next = maxDelay
	}
	return d
}

// Reset restarts the sequence from the base delay.
func (b *Backoff) Reset() {
	b.next = 0
}
