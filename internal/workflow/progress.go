package workflow

import (
	"sync"
	"time"
)

// Progress rotates through status messages on a fixed interval until cancelled.
type Progress struct {
	messages []string

	mu  sync.Mutex
	idx int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartProgress begins at the first message and advances every interval.
func StartProgress(messages []string, interval time.Duration) *Progress {
	p := &Progress{
		messages: messages,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if len(messages) < 2 || interval <= 0 {
		close(p.done)
		return p
	}
	go p.run(interval)
	return p
}

func (p *Progress) run(interval time.Duration) {
	defer close(p.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			p.idx = (p.idx + 1) % len(p.messages)
			p.mu.Unlock()
		}
	}
}

// Current returns the message being shown, or "" when there are none.
func (p *Progress) Current() string {
	if p == nil || len(p.messages) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages[p.idx]
}

// Cancel stops the ticker and waits for it to exit. Safe to call more than once.
func (p *Progress) Cancel() {
	if p == nil {
		return
	}
	p.once.Do(func() { close(p.stop) })
	<-p.done
}
