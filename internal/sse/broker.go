// Package sse implements a Server-Sent Events broker for live collection updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/brijesht/folio/internal/content"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type recordEventReq struct {
	collection string
	kind       string
	key        string
}

// Client is one live subscriber. A client subscribed to named collections
// only receives events for those; no names means every collection.
type Client struct {
	ch          chan []byte
	collections map[string]struct{}
}

// C is the channel delivering encoded SSE frames.
func (c *Client) C() <-chan []byte {
	return c.ch
}

func (c *Client) wants(collection string) bool {
	if len(c.collections) == 0 {
		return true
	}
	_, ok := c.collections[collection]
	return ok
}

// Broker manages SSE client connections and broadcasts record change events.
//
// Concurrency model: a single internal event loop (goroutine) owns the
// client set. Public methods communicate with this loop through channels,
// so no mutexes are required.
type Broker struct {
	subscribeCh   chan *Client
	unsubscribeCh chan *Client
	publishCh     chan Event
	recordEventCh chan recordEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Verify the broker satisfies the content publisher contract.
var _ content.Publisher = (*Broker)(nil)

// NewBroker creates a broker and starts its event loop.
func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan *Client),
		unsubscribeCh: make(chan *Client),
		publishCh:     make(chan Event, 256),
		recordEventCh: make(chan recordEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[*Client]struct{})

	deliver := func(collection string, event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for c := range clients {
			if collection != "" && !c.wants(collection) {
				continue
			}
			select {
			case c.ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for c := range clients {
				close(c.ch)
			}
			return

		case c := <-b.subscribeCh:
			clients[c] = struct{}{}

		case c := <-b.unsubscribeCh:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.ch)
			}

		case event := <-b.publishCh:
			deliver("", event)

		case req := <-b.recordEventCh:
			deliver(req.collection, Event{
				Type: req.collection + "." + req.kind,
				Data: map[string]string{"key": req.key},
			})

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client filtered to the given collections (none
// means all) and returns it.
func (b *Broker) Subscribe(collections ...string) *Client {
	c := &Client{ch: make(chan []byte, 64)}
	if len(collections) > 0 {
		c.collections = make(map[string]struct{}, len(collections))
		for _, name := range collections {
			c.collections[name] = struct{}{}
		}
	}

	if b.closed.Load() {
		close(c.ch)
		return c
	}

	select {
	case b.subscribeCh <- c:
	case <-b.stopped:
		close(c.ch)
	}

	return c
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(c *Client) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- c:
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

// Publish sends an event to every connected client regardless of filter.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishRecordEvent broadcasts a collection change (kind is "created",
// "updated" or "deleted") to subscribers of that collection.
func (b *Broker) PublishRecordEvent(collection, kind, key string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.recordEventCh <- recordEventReq{collection: collection, kind: kind, key: key}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). The optional
// "collections" query parameter holds a comma-separated filter; changing
// the admin inbox filter is a reconnect with a different value.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := b.Subscribe(parseCollections(r.URL.Query().Get("collections"))...)
	defer b.Unsubscribe(client)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client.C():
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

func parseCollections(raw string) []string {
	return content.SplitCommaList(raw)
}
