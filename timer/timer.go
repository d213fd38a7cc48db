// Package timer runs delayed and repeating callbacks off a single min-heap.
// Sessions use it for lobby expiry; the monitor uses it for periodic gauges.
package timer

import (
	"container/heap"
	"sync"
	"time"
)

type task struct {
	id       int64
	deadline time.Time
	interval time.Duration
	callback func()
	index    int
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	return h[i].deadline.Before(h[j].deadline)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x interface{}) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	t.index = -1
	*h = old[0 : n-1]
	return t
}

// Manager schedules callbacks. Callbacks run on their own goroutine so a slow
// one never delays the rest of the queue.
type Manager struct {
	mu     sync.Mutex
	queue  taskHeap
	nextID int64
	fire   chan *task
	done   chan struct{}
	once   sync.Once
}

func New() *Manager {
	m := &Manager{
		queue:  make(taskHeap, 0),
		fire:   make(chan *task, 1000),
		nextID: 1,
		done:   make(chan struct{}),
	}
	heap.Init(&m.queue)
	go m.loop()
	return m
}

// AddTimer schedules callback after delay. A non-zero interval reschedules it
// after every run. The returned id cancels it via RemoveTimer.
func (m *Manager) AddTimer(delay, interval time.Duration, callback func()) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &task{
		id:       m.nextID,
		deadline: time.Now().Add(delay),
		interval: interval,
		callback: callback,
	}
	m.nextID++

	heap.Push(&m.queue, t)
	return t.id
}

// RemoveTimer cancels a pending timer. Unknown ids are ignored.
func (m *Manager) RemoveTimer(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.queue {
		if t.id == id {
			heap.Remove(&m.queue, i)
			break
		}
	}
}

// Stop shuts the scheduler down. Pending timers never fire afterwards.
func (m *Manager) Stop() {
	m.once.Do(func() { close(m.done) })
}

func (m *Manager) loop() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return

		case <-ticker.C:
			m.mu.Lock()
			now := time.Now()
			for m.queue.Len() > 0 {
				t := m.queue[0]
				if t.deadline.After(now) {
					break
				}
				heap.Pop(&m.queue)
				m.fire <- t

				if t.interval > 0 {
					t.deadline = now.Add(t.interval)
					heap.Push(&m.queue, t)
				}
			}
			m.mu.Unlock()

		case t := <-m.fire:
			go t.callback()
		}
	}
}
