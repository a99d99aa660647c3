package scope

import "sync"

// ingestBuffer is the staging area between the producer goroutine and the
// drain scheduler. It holds per-channel queues of pending samples together
// with the cooperative running flag. A single mutex guards both; critical
// sections are O(batch) appends and O(1) swaps or flag accesses, so neither
// side ever blocks the other for longer than the lock-hold duration. No
// windowing, FFT or rendering work may execute while the lock is held.
type ingestBuffer struct {
	mu      sync.Mutex
	pending [][]float64
	running bool
}

func newIngestBuffer(channels int) *ingestBuffer {
	b := ingestBuffer{pending: make([][]float64, channels)}
	for i := range b.pending {
		b.pending[i] = nil
	}
	return &b
}

// append adds one batch of samples to the pending queues and reports the
// running flag in the same critical section, establishing the producer
// handshake: the caller decides from the return value whether to keep
// producing. Samples must already be shape-checked by the caller.
func (b *ingestBuffer) append(samples [][]float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sample := range samples {
		for ch, v := range sample {
			b.pending[ch] = append(b.pending[ch], v)
		}
	}
	return b.running
}

// swap exchanges the pending queues for fresh empty ones and returns the
// drained batch. The caller obtains the batch exclusively and may process
// it without holding the lock.
func (b *ingestBuffer) swap() [][]float64 {
	fresh := make([][]float64, len(b.pending))

	b.mu.Lock()
	drained := b.pending
	b.pending = fresh
	b.mu.Unlock()

	return drained
}

func (b *ingestBuffer) isRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *ingestBuffer) setRunning(running bool) {
	b.mu.Lock()
	b.running = running
	b.mu.Unlock()
}
