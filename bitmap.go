package famalloc

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/hupe1980/famalloc/atomics"
)

const (
	// WordBits is the number of bits in one bitmap word. Every process that
	// maps the same buffer must agree on it.
	WordBits = 64

	// WordBytes is the size of one bitmap word in bytes.
	WordBytes = WordBits / 8
)

// Bitmap is a free/used bitmap over a registered buffer.
//
// Bit n lives in word n/WordBits at position n%WordBits, bit 0 being the
// least significant bit of word 0. The buffer is only ever touched through
// the atomics.Region it was registered as, so any number of goroutines or
// processes may operate on the same bits without further locking.
//
// New and Teardown must not race with other operations on the same Bitmap.
type Bitmap struct {
	region atomics.Region
	bits   uint64
	active atomic.Bool

	logger     *Logger
	metrics    MetricsCollector
	yieldAfter int
	contention rate.Sometimes
}

// New registers buf with provider and clears every bit.
//
// buf must be a non-empty multiple of WordBytes; the provider decides what
// else it accepts. On failure the error is a *RegistrationError, no word has
// been written and no Bitmap is returned. The caller keeps ownership of buf.
func New(provider atomics.Provider, buf []byte, opts ...Option) (*Bitmap, error) {
	b, err := register(provider, buf, opts)
	if err != nil {
		return nil, err
	}

	words := b.region.Words()
	for w := uint64(0); w < words; w++ {
		b.region.WriteWord(w, 0)
	}

	b.logger.LogInit(words, true, nil)

	return b, nil
}

// Attach registers buf with provider without clearing it, joining a bitmap
// that another process has already initialized with New.
func Attach(provider atomics.Provider, buf []byte, opts ...Option) (*Bitmap, error) {
	b, err := register(provider, buf, opts)
	if err != nil {
		return nil, err
	}

	b.logger.LogInit(b.region.Words(), false, nil)

	return b, nil
}

func register(provider atomics.Provider, buf []byte, opts []Option) (*Bitmap, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var (
		region atomics.Region
		err    error
	)
	if provider == nil {
		err = errNilProvider
	} else {
		region, err = provider.RegisterRegion(buf, o.fd, o.flags)
	}
	if err != nil {
		o.logger.LogInit(uint64(len(buf)/WordBytes), false, err)
		return nil, &RegistrationError{Bytes: len(buf), Fd: o.fd, cause: err}
	}

	bits := region.Words() * WordBits
	b := &Bitmap{
		region:     region,
		bits:       bits,
		logger:     o.logger.WithBits(bits),
		metrics:    o.metricsCollector,
		yieldAfter: o.yieldAfter,
		contention: rate.Sometimes{Interval: o.contentionWarnInterval},
	}
	b.active.Store(true)

	return b, nil
}

// Teardown unregisters the buffer. It is idempotent. A failure to unregister
// is logged, not returned. The Bitmap must not be used afterwards; operations
// that are still attempted report ErrClosed or not-found.
func (b *Bitmap) Teardown() {
	if !b.active.CompareAndSwap(true, false) {
		return
	}
	b.logger.LogTeardown(b.region.Words(), b.region.Unregister())
}

// Len returns the number of bits in the bitmap.
func (b *Bitmap) Len() uint64 {
	return b.bits
}

// Get returns the value of bit n at the instant its word is read.
func (b *Bitmap) Get(n uint64) (bool, error) {
	if err := b.check(n); err != nil {
		return false, err
	}
	return testBit(b.region.ReadWord(n/WordBits), n%WordBits), nil
}

// Set drives bit n to 1 regardless of its current value.
func (b *Bitmap) Set(n uint64) error {
	if err := b.check(n); err != nil {
		return err
	}
	b.transition(n, true, false)
	return nil
}

// Reset drives bit n to 0 regardless of its current value.
func (b *Bitmap) Reset(n uint64) error {
	if err := b.check(n); err != nil {
		return err
	}
	b.transition(n, false, false)
	return nil
}

// Reserve flips bit n from expected to !expected. If bit n is observed to
// hold anything other than expected, Reserve gives up and returns ErrConflict;
// at most one of any number of concurrent callers flipping the same bit from
// the same value succeeds.
func (b *Bitmap) Reserve(expected bool, n uint64) error {
	if err := b.check(n); err != nil {
		return err
	}
	return b.reserve(expected, n)
}

func (b *Bitmap) reserve(expected bool, n uint64) error {
	if b.transition(n, !expected, true) == casConflict {
		b.metrics.RecordReserve(true)
		return ErrConflict
	}
	b.metrics.RecordReserve(false)
	return nil
}

func (b *Bitmap) check(n uint64) error {
	if !b.active.Load() {
		return ErrClosed
	}
	if n >= b.bits {
		return fmt.Errorf("%w: bit %d, bitmap holds %d", ErrOutOfRange, n, b.bits)
	}
	return nil
}

// casOutcome is the result of one compare-and-swap attempt on a bitmap word.
type casOutcome int

const (
	// casDone means the swap installed the new word.
	casDone casOutcome = iota
	// casConflict means the target bit no longer holds the expected value.
	casConflict
	// casRetry means another bit of the same word changed; recompute and retry.
	casRetry
)

// classify decides what a swap that observed `observed` while expecting `old`
// means for the bit at pos. Only the target bit takes part in the conflict
// check; changes to the other bits of the word always lead to a retry.
func classify(old, observed uint64, pos uint64, expected, checked bool) casOutcome {
	if observed == old {
		return casDone
	}
	if checked && testBit(observed, pos) != expected {
		return casConflict
	}
	return casRetry
}

// transition drives bit n to target. With checked set the bit must hold
// !target throughout, otherwise the transition stops with casConflict.
// It returns casDone or casConflict.
func (b *Bitmap) transition(n uint64, target, checked bool) casOutcome {
	w, pos := n/WordBits, n%WordBits
	expected := !target

	old := b.region.ReadWord(w)
	if checked && testBit(old, pos) != expected {
		return casConflict
	}

	for attempt := 1; ; attempt++ {
		observed := b.region.CompareAndSwapWord(w, old, withBit(old, pos, target))

		switch outcome := classify(old, observed, pos, expected, checked); outcome {
		case casDone, casConflict:
			return outcome
		case casRetry:
			b.metrics.RecordCASRetry()
			b.backoff(n, attempt)
			old = observed
		}
	}
}

func (b *Bitmap) backoff(n uint64, attempt int) {
	if b.yieldAfter <= 0 || attempt%b.yieldAfter != 0 {
		return
	}
	b.contention.Do(func() {
		b.logger.LogContention(n, attempt)
	})
	runtime.Gosched()
}

func testBit(word, pos uint64) bool {
	return (word>>pos)&1 == 1
}

func withBit(word, pos uint64, v bool) uint64 {
	if v {
		return word | 1<<pos
	}
	return word &^ (1 << pos)
}
