package counter

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Flusher periodically drains the Redis view counters into the database.
type Flusher struct {
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// StartFlusher begins flushing counters at the given interval.
func StartFlusher(interval time.Duration) *Flusher {
	f := &Flusher{
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
	}
	f.wg.Add(1)
	go f.run()
	return f
}

func (f *Flusher) run() {
	defer f.wg.Done()
	for {
		select {
		case <-f.stopCh:
			return
		case <-f.ticker.C:
			if err := FlushAll(); err != nil {
				log.Errorf("[Counter Flusher] flush error: %v", err)
			}
		}
	}
}

// Stop flushes one final time and stops the worker.
func (f *Flusher) Stop() {
	f.ticker.Stop()
	close(f.stopCh)
	f.wg.Wait()
	if err := FlushAll(); err != nil {
		log.Errorf("[Counter Flusher] final flush error: %v", err)
	}
}
