package worker

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Debouncer откладывает вызов на delay после последнего Trigger.
// Каждый новый Trigger отменяет ожидающий вызов и запускает таймер заново.
type Debouncer struct {
	delay  time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64
	stopped bool
	wg      sync.WaitGroup
}

func NewDebouncer(delay time.Duration, logger *zap.Logger) *Debouncer {
	return &Debouncer{
		delay:  delay,
		logger: logger,
	}
}

func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.cancelLocked()

	d.gen++
	gen := d.gen
	d.pending = fn
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.fire(gen)
	})
}

// Flush сразу выполняет ожидающий вызов, если он есть
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.pending
	if fn == nil || d.stopped {
		d.mu.Unlock()
		return
	}
	d.cancelLocked()
	d.gen++
	d.mu.Unlock()

	d.run(fn)
}

// Pending сообщает, ждет ли сейчас вызов
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop отменяет ожидающий вызов и ждет завершения уже начатого
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.cancelLocked()
	d.gen++
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Debug("Debouncer stopped")
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.stopped {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	d.run(fn)
}

func (d *Debouncer) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("debounced call panicked", zap.Any("panic", r))
		}
	}()
	fn()
}

// cancelLocked останавливает таймер; вызывается под d.mu
func (d *Debouncer) cancelLocked() {
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done() // колбэк таймера уже не запустится
	}
	d.timer = nil
	d.pending = nil
}
