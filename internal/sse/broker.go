// Package sse implements a Server-Sent Events broker for workspace change
// notifications.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/starford/havenfs/internal/index"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Event types emitted by the broker.
const (
	TypeDocumentCreated = "document.created"
	TypeDocumentUpdated = "document.updated"
	TypeDocumentDeleted = "document.deleted"
	TypeIndexUpdated    = "index.updated"
)

// documentTypes maps watcher change kinds to broadcast event types.
var documentTypes = map[string]string{
	index.EventCreated: TypeDocumentCreated,
	index.EventUpdated: TypeDocumentUpdated,
	index.EventDeleted: TypeDocumentDeleted,
}

// DocumentData is the payload of document.created and document.updated
// events: what the indexed description now holds.
type DocumentData struct {
	Path        string `json:"path"`
	Nodes       int    `json:"nodes"`
	Tags        int    `json:"tags"`
	Libraries   int    `json:"libraries"`
	Diagnostics int    `json:"diagnostics"`
	Head        string `json:"head,omitempty"`
}

// IndexData is the payload of index.updated: the number of document events
// folded into it since the previous index.updated.
type IndexData struct {
	Changes int `json:"changes"`
}

func documentEvent(c index.Change) (Event, bool) {
	typ, ok := documentTypes[c.Kind]
	if !ok {
		return Event{}, false
	}
	if c.Kind == index.EventDeleted {
		return Event{Type: typ, Data: map[string]string{"path": c.Path}}, true
	}
	return Event{Type: typ, Data: DocumentData{
		Path:        c.Path,
		Nodes:       c.Nodes,
		Tags:        c.Tags,
		Libraries:   c.Libraries,
		Diagnostics: c.Diagnostics,
		Head:        c.Head,
	}}, true
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients + index throttle timestamp). Public methods communicate with this loop
// through channels, so no mutexes are required.
type Broker struct {
	indexMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	documentCh    chan index.Change
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. indexThrottle is the minimum interval
// between two index.updated events; non-positive values default to 2s.
func NewBroker(indexThrottle time.Duration) *Broker {
	if indexThrottle <= 0 {
		indexThrottle = 2 * time.Second
	}

	b := &Broker{
		indexMin:      indexThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		documentCh:    make(chan index.Change, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastIndex time.Time
	pending := 0

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		msg := fmt.Sprintf("id: %s\nevent: %s\ndata: %s\n\n", uuid.NewString(), event.Type, payload)
		raw := []byte(msg)

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case c := <-b.documentCh:
			event, ok := documentEvent(c)
			if !ok {
				continue
			}
			broadcast(event)
			pending++

			now := time.Now()
			if now.Sub(lastIndex) >= b.indexMin {
				lastIndex = now
				broadcast(Event{Type: TypeIndexUpdated, Data: IndexData{Changes: pending}})
				pending = 0
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishDocumentEvent publishes a watcher change as a document.* event
// followed by a throttled index.updated event. Changes of unknown kind are
// dropped. It satisfies index.EventCallback.
func (b *Broker) PublishDocumentEvent(c index.Change) {
	if b.closed.Load() {
		return
	}
	select {
	case b.documentCh <- c:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
