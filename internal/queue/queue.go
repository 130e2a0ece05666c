package queue

import (
	"container/heap"
	"errors"
	"sync"
	"time"

	"github.com/dgnsrekt/audioset/internal/render"
)

var (
	// ErrQueueFull is returned when the queue is at capacity
	ErrQueueFull = errors.New("queue is full")

	// ErrQueueClosed is returned when operations are attempted on a closed queue
	ErrQueueClosed = errors.New("queue is closed")

	// ErrQueueEmpty is returned by Dequeue and Peek when nothing is queued
	ErrQueueEmpty = errors.New("queue is empty")
)

// DefaultLookahead is the number of upcoming clips prefetched by default.
const DefaultLookahead = 1

// PrefetchFunc prepares a clip before it is played, typically by decoding
// it into the clip cache.
type PrefetchFunc func(render.Clip) error

// ClipQueue orders the clips of a play session. Clips queued with priority
// are played before the regular clips, which play in document order.
// Upcoming clips are handed to a background prefetcher so the next one is
// ready when the current one finishes.
type ClipQueue struct {
	priorityQueue *priorityQueue
	regularQueue  []render.Clip

	maxSize   int
	lookahead int
	prefetch  PrefetchFunc

	mu     sync.Mutex
	closed bool
	seq    int
	// prefetched tracks paths already handed to the prefetcher.
	prefetched map[string]bool
	stats      Stats

	requests chan render.Clip
	done     chan struct{}
	wg       sync.WaitGroup
}

// Stats tracks queue activity.
type Stats struct {
	TotalEnqueued   int64
	TotalDequeued   int64
	TotalPrefetched int64
	PrefetchErrors  int64
	PriorityCount   int64
	CurrentSize     int
	PeakSize        int
	LastEnqueue     time.Time
	LastDequeue     time.Time
}

// Option configures a ClipQueue.
type Option func(*ClipQueue)

// WithLookahead sets how many upcoming clips are prefetched.
func WithLookahead(n int) Option {
	return func(q *ClipQueue) {
		q.lookahead = max(n, 0)
	}
}

// WithPrefetch sets the function run on upcoming clips.
func WithPrefetch(fn PrefetchFunc) Option {
	return func(q *ClipQueue) {
		q.prefetch = fn
	}
}

// New returns a queue holding at most maxSize clips.
func New(maxSize int, opts ...Option) *ClipQueue {
	q := &ClipQueue{
		priorityQueue: &priorityQueue{},
		regularQueue:  make([]render.Clip, 0, maxSize),
		maxSize:       maxSize,
		lookahead:     DefaultLookahead,
		prefetched:    make(map[string]bool),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	heap.Init(q.priorityQueue)

	q.requests = make(chan render.Clip, max(q.lookahead, 1))
	q.wg.Add(1)
	go q.processLookahead()

	return q
}

// Enqueue adds a clip to the queue. Priority clips play before regular ones.
func (q *ClipQueue) Enqueue(clip render.Clip, priority bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.sizeLocked() >= q.maxSize {
		return ErrQueueFull
	}

	q.pushLocked(clip, priority)
	q.requestLookaheadLocked()
	return nil
}

// EnqueueBatch adds clips in order and returns how many were queued. When
// the queue fills up the rest are dropped and ErrQueueFull is returned.
func (q *ClipQueue) EnqueueBatch(clips []render.Clip, priority bool) (int, error) {
	if len(clips) == 0 {
		return 0, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0, ErrQueueClosed
	}

	n := 0
	for _, clip := range clips {
		if q.sizeLocked() >= q.maxSize {
			break
		}
		q.pushLocked(clip, priority)
		n++
	}
	q.requestLookaheadLocked()

	if n < len(clips) {
		return n, ErrQueueFull
	}
	return n, nil
}

func (q *ClipQueue) pushLocked(clip render.Clip, priority bool) {
	if priority {
		q.seq++
		heap.Push(q.priorityQueue, &queueItem{clip: clip, seq: q.seq})
		q.stats.PriorityCount++
	} else {
		q.regularQueue = append(q.regularQueue, clip)
	}

	q.stats.TotalEnqueued++
	q.stats.LastEnqueue = time.Now()
	q.stats.CurrentSize = q.sizeLocked()
	q.stats.PeakSize = max(q.stats.PeakSize, q.stats.CurrentSize)
}

// Dequeue removes and returns the next clip to play.
// Priority clips are returned first, followed by regular clips in FIFO order.
func (q *ClipQueue) Dequeue() (render.Clip, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return render.Clip{}, ErrQueueClosed
	}

	var clip render.Clip
	switch {
	case q.priorityQueue.Len() > 0:
		clip = heap.Pop(q.priorityQueue).(*queueItem).clip
	case len(q.regularQueue) > 0:
		clip = q.regularQueue[0]
		q.regularQueue[0] = render.Clip{}
		q.regularQueue = q.regularQueue[1:]
	default:
		return render.Clip{}, ErrQueueEmpty
	}

	q.stats.TotalDequeued++
	q.stats.LastDequeue = time.Now()
	q.stats.CurrentSize = q.sizeLocked()

	q.requestLookaheadLocked()
	return clip, nil
}

// Peek returns the next clip without removing it from the queue.
func (q *ClipQueue) Peek() (render.Clip, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return render.Clip{}, ErrQueueClosed
	}
	next := q.upcomingLocked(1)
	if len(next) == 0 {
		return render.Clip{}, ErrQueueEmpty
	}
	return next[0], nil
}

// Size returns the current number of queued clips.
func (q *ClipQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sizeLocked()
}

func (q *ClipQueue) sizeLocked() int {
	return q.priorityQueue.Len() + len(q.regularQueue)
}

// Clear removes all queued clips.
func (q *ClipQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.priorityQueue = &priorityQueue{}
	heap.Init(q.priorityQueue)
	q.regularQueue = q.regularQueue[:0]
	q.stats.CurrentSize = 0
}

// Lookahead returns the clips that will play next, in order, without
// removing them.
func (q *ClipQueue) Lookahead() []render.Clip {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.upcomingLocked(q.lookahead)
}

// upcomingLocked returns up to n clips in play order.
func (q *ClipQueue) upcomingLocked(n int) []render.Clip {
	if n <= 0 {
		return nil
	}

	// The heap only orders its root, so walk a sorted copy.
	items := make(priorityQueue, len(*q.priorityQueue))
	for i, item := range *q.priorityQueue {
		cp := *item
		items[i] = &cp
	}
	heap.Init(&items)

	out := make([]render.Clip, 0, n)
	for items.Len() > 0 && len(out) < n {
		out = append(out, heap.Pop(&items).(*queueItem).clip)
	}
	for _, clip := range q.regularQueue {
		if len(out) == n {
			break
		}
		out = append(out, clip)
	}
	return out
}

// Stats returns current queue statistics.
func (q *ClipQueue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := q.stats
	s.CurrentSize = q.sizeLocked()
	return s
}

// Close stops the prefetcher and rejects further operations.
func (q *ClipQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

// requestLookaheadLocked hands upcoming clips that were not prefetched yet
// to the background worker. A full request buffer skips the clip; it is
// requested again on the next queue change.
func (q *ClipQueue) requestLookaheadLocked() {
	if q.prefetch == nil {
		return
	}
	for _, clip := range q.upcomingLocked(q.lookahead) {
		if clip.File == nil || q.prefetched[clip.File.Path] {
			continue
		}
		select {
		case q.requests <- clip:
			q.prefetched[clip.File.Path] = true
		default:
			return
		}
	}
}

// processLookahead prefetches upcoming clips in the background.
func (q *ClipQueue) processLookahead() {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			return
		case clip := <-q.requests:
			err := q.prefetch(clip)

			q.mu.Lock()
			if err != nil {
				q.stats.PrefetchErrors++
				// allow another attempt
				delete(q.prefetched, clip.File.Path)
			} else {
				q.stats.TotalPrefetched++
			}
			q.mu.Unlock()
		}
	}
}

// Priority queue implementation using a heap
type queueItem struct {
	clip  render.Clip
	seq   int
	index int // Index in the heap
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	// Most recently prioritized clips come first
	return pq[i].seq > pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	item := x.(*queueItem)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // Avoid memory leak
	item.index = -1 // For safety
	*pq = old[0 : n-1]
	return item
}
