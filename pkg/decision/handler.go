// Package decision implements the Human-Decision Handler: a pending-map
// of outstanding decision requests, each resolved exactly once by a
// response, a cancellation, or a timeout.
package decision

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corevalidate/middleware/pkg/logger"
	"github.com/corevalidate/middleware/pkg/validate"
)

var decisionLog = logger.New("decision:handler")

// Request is a single outstanding Human-Decision request.
type Request struct {
	ID          string
	Kind        validate.DecisionKind
	Title       string
	Description string
	Summary     *validate.ValidationSummary
	Relevant    []validate.ValidatorResult
	Context     string
	Opts        *validate.RequestOptions
	RequestedAt time.Time
}

// Subscriber is notified of every new Request. Errors are swallowed per
// the handler's contract: a misbehaving subscriber must not block or
// fail the request.
type Subscriber func(req Request)

// FeedPublisher records a human-readable feed entry, used when
// emit_feed_entries is enabled.
type FeedPublisher func(entry string)

type pendingEntry struct {
	request Request
	ch      chan validate.Response
	timer   *time.Timer
	done    bool
}

// Handler implements validate.HumanHandler.
type Handler struct {
	mu                 sync.Mutex
	pending            map[string]*pendingEntry
	subscribers        []Subscriber
	feed               FeedPublisher
	emitFeedEntries    bool
	autoRejectOnExpiry bool
}

// New creates a Handler. emitFeedEntries controls whether feed is called
// on request/respond; autoRejectOnExpiry controls the synthetic response
// produced when a request's timeout fires (Rejected if true, else
// Deferred).
func New(feed FeedPublisher, emitFeedEntries, autoRejectOnExpiry bool) *Handler {
	return &Handler{
		pending:            make(map[string]*pendingEntry),
		feed:               feed,
		emitFeedEntries:    emitFeedEntries,
		autoRejectOnExpiry: autoRejectOnExpiry,
	}
}

// Subscribe registers a callback invoked for every new request.
func (h *Handler) Subscribe(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers = append(h.subscribers, sub)
}

// RequestDecision enqueues a request and blocks until it resolves.
func (h *Handler) RequestDecision(kind validate.DecisionKind, title, description string, summary *validate.ValidationSummary, relevant []validate.ValidatorResult, requestContext string, opts *validate.RequestOptions) (*validate.Response, error) {
	req := Request{
		ID:          uuid.NewString(),
		Kind:        kind,
		Title:       title,
		Description: description,
		Summary:     summary,
		Relevant:    relevant,
		Context:     requestContext,
		Opts:        opts,
		RequestedAt: time.Now(),
	}

	entry := &pendingEntry{request: req, ch: make(chan validate.Response, 1)}

	h.mu.Lock()
	h.pending[req.ID] = entry

	var timeoutMS uint32
	if opts != nil {
		timeoutMS = opts.TimeoutMS
	}
	if timeoutMS > 0 {
		entry.timer = time.AfterFunc(time.Duration(timeoutMS)*time.Millisecond, func() {
			h.expire(req.ID)
		})
	}
	subs := append([]Subscriber(nil), h.subscribers...)
	h.mu.Unlock()

	if h.emitFeedEntries && h.feed != nil {
		h.feed("decision requested: " + title)
	}

	for _, sub := range subs {
		safeInvoke(sub, req)
	}

	resp := <-entry.ch
	return &resp, nil
}

func safeInvoke(sub Subscriber, req Request) {
	defer func() {
		if r := recover(); r != nil {
			decisionLog.Printf("decision subscriber panicked: %v", r)
		}
	}()
	sub(req)
}

// Respond resolves a pending request, recording RespondedAt as now.
// Returns false if id is unknown or already resolved.
func (h *Handler) Respond(id string, resp validate.Response) bool {
	h.mu.Lock()
	entry, ok := h.pending[id]
	if !ok || entry.done {
		h.mu.Unlock()
		return false
	}
	entry.done = true
	if entry.timer != nil {
		entry.timer.Stop()
	}
	delete(h.pending, id)
	h.mu.Unlock()

	resp.RespondedAt = time.Now()
	entry.ch <- resp

	if h.emitFeedEntries && h.feed != nil {
		h.feed("decision resolved: " + entry.request.Title + " -> " + string(resp.Decision))
	}
	return true
}

// Cancel synthesizes a Rejected response for a pending request.
func (h *Handler) Cancel(id string) bool {
	return h.Respond(id, validate.Response{Decision: validate.DecisionRejected, Comment: "Request cancelled"})
}

// expire fires when a request's timeout elapses without a response.
func (h *Handler) expire(id string) {
	decision := validate.DecisionDeferred
	if h.autoRejectOnExpiry {
		decision = validate.DecisionRejected
	}
	h.Respond(id, validate.Response{Decision: decision, Comment: "Request timed out"})
}

// Cleanup cancels every pending request, used on Handler disposal.
func (h *Handler) Cleanup() {
	h.mu.Lock()
	ids := make([]string, 0, len(h.pending))
	for id := range h.pending {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.Cancel(id)
	}
}

// HasPending reports whether any request is still awaiting resolution.
func (h *Handler) HasPending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending) > 0
}
