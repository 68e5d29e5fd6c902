package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/easymake/clubportal/cmd/clubportal/internal/telemetry"
)

// Options configures an Engine.
type Options struct {
	Store Store
	// Push is optional. Without it, or without a Credential, the engine only
	// shows what the initial load returned.
	Push       PushChannel
	Credential string
	// BatchPolicy defaults to BatchAllOrNothing.
	BatchPolicy BatchPolicy
	Now         func() time.Time
	// OnChange receives a snapshot after every state change. It runs on the
	// engine goroutine and must not call back into the Engine.
	OnChange func(Snapshot)
	Metrics  *telemetry.PortalMetrics
}

// Engine owns the client-visible notification list. All state lives on a
// single goroutine; public methods send it work and wait for the answer, so
// callers never touch the list directly.
type Engine struct {
	store      Store
	push       PushChannel
	credential string
	policy     BatchPolicy
	now        func() time.Time
	onChange   func(Snapshot)
	metrics    *telemetry.PortalMetrics

	ctx    context.Context
	cancel context.CancelFunc
	cmds   chan func()
	done   chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	loaded    chan struct{}

	// Loop-owned state.
	items      []Notification
	loading    bool
	events     <-chan Event
	loadedOnce bool

	// final is written by the loop before done is closed.
	final Snapshot
}

// NewEngine creates an engine and starts its goroutine. Nothing is fetched
// until Start.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("notification engine requires a store")
	}
	policy := opts.BatchPolicy
	if policy == "" {
		policy = BatchAllOrNothing
	}
	if _, err := ParseBatchPolicy(string(policy)); err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		store:      opts.Store,
		push:       opts.Push,
		credential: opts.Credential,
		policy:     policy,
		now:        now,
		onChange:   opts.OnChange,
		metrics:    opts.Metrics,
		ctx:        ctx,
		cancel:     cancel,
		cmds:       make(chan func()),
		done:       make(chan struct{}),
		loaded:     make(chan struct{}),
	}
	go e.run()
	return e, nil
}

// Start performs the initial load and opens the push subscription. Both are
// issued without waiting on each other. Calling Start more than once has no
// effect.
func (e *Engine) Start() error {
	var err error
	e.startOnce.Do(func() {
		err = e.do(context.Background(), func() {
			e.beginLoad()
			e.subscribe()
		})
	})
	return err
}

// WaitLoaded blocks until the first load has finished, successfully or not.
func (e *Engine) WaitLoaded(ctx context.Context) error {
	select {
	case <-e.loaded:
		return nil
	default:
	}
	select {
	case <-e.loaded:
		return nil
	case <-e.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload fetches the full list again. It is a no-op while a load is running.
func (e *Engine) Reload(ctx context.Context) error {
	return e.do(ctx, func() {
		if !e.loading {
			e.beginLoad()
		}
	})
}

// MarkRead confirms id as read with the store and then marks it locally.
// Already-read items return immediately without contacting the store.
func (e *Engine) MarkRead(ctx context.Context, id string) error {
	found, unread := false, false
	if err := e.do(ctx, func() {
		if i := e.indexOf(id); i >= 0 {
			found = true
			unread = !e.items[i].Read
		}
	}); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !unread {
		return nil
	}

	reqCtx, cancel := e.requestContext(ctx)
	defer cancel()

	if err := e.store.MarkRead(reqCtx, id); err != nil {
		e.metrics.RecordMarkReadFailures(ctx, 1)
		log.Printf("mark notification %s read: %v", id, err)
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}

	return e.do(context.Background(), func() {
		e.setRead([]string{id})
	})
}

// MarkAllRead confirms every currently unread item concurrently and commits
// the results according to the batch policy. The returned error joins every
// failed confirmation.
func (e *Engine) MarkAllRead(ctx context.Context) error {
	var ids []string
	if err := e.do(ctx, func() {
		for _, item := range e.items {
			if !item.Read {
				ids = append(ids, item.ID)
			}
		}
	}); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	reqCtx, cancel := e.requestContext(ctx)
	defer cancel()

	results := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			if err := e.store.MarkRead(reqCtx, id); err != nil {
				results[i] = fmt.Errorf("mark notification %s read: %w", id, err)
			}
		}(i, id)
	}
	wg.Wait()

	confirmed := make([]string, 0, len(ids))
	var failed []error
	for i, id := range ids {
		if results[i] != nil {
			failed = append(failed, results[i])
			continue
		}
		confirmed = append(confirmed, id)
	}

	if len(failed) > 0 {
		e.metrics.RecordMarkReadFailures(ctx, len(failed))
		log.Printf("mark all read: %d of %d confirmations failed (policy %s)", len(failed), len(ids), e.policy)
		if e.policy == BatchAllOrNothing {
			confirmed = nil
		}
	}

	if len(confirmed) > 0 {
		if err := e.do(context.Background(), func() {
			e.setRead(confirmed)
		}); err != nil {
			return err
		}
	}
	return errors.Join(failed...)
}

// Snapshot returns a copy of the current state. After Close it returns the
// state at teardown.
func (e *Engine) Snapshot() Snapshot {
	var snap Snapshot
	if err := e.do(context.Background(), func() {
		snap = e.snapshot()
	}); err != nil {
		<-e.done
		return e.final
	}
	return snap
}

// Items returns the notifications in arrival order.
func (e *Engine) Items() []Notification {
	return e.Snapshot().Items
}

// UnreadCount returns the number of unread notifications, counted on every call.
func (e *Engine) UnreadCount() int {
	return e.Snapshot().UnreadCount()
}

// Close tears the engine down: in-flight requests are cancelled, the push
// subscription is closed, and late results are discarded.
func (e *Engine) Close() error {
	e.closeOnce.Do(e.cancel)
	<-e.done
	return nil
}

func (e *Engine) run() {
	defer func() {
		e.final = e.snapshot()
		close(e.done)
	}()

	for {
		select {
		case <-e.ctx.Done():
			return
		case fn := <-e.cmds:
			if e.ctx.Err() != nil {
				return
			}
			fn()
		case ev, ok := <-e.events:
			if e.ctx.Err() != nil {
				return
			}
			if !ok {
				log.Printf("notification push channel closed")
				e.events = nil
				e.changed()
				continue
			}
			e.applyPush(ev)
		}
	}
}

// do runs fn on the engine goroutine and waits for it to finish.
func (e *Engine) do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	wrapped := func() {
		fn()
		close(ran)
	}

	select {
	case e.cmds <- wrapped:
	case <-e.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ran:
		return nil
	case <-e.done:
		select {
		case <-ran:
			return nil
		default:
			return ErrClosed
		}
	}
}

// post hands fn to the engine goroutine without waiting. It reports false
// once the engine is gone.
func (e *Engine) post(fn func()) bool {
	select {
	case e.cmds <- fn:
		return true
	case <-e.done:
		return false
	}
}

// requestContext derives a context for remote calls that is also cancelled
// by Close.
func (e *Engine) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(e.ctx, cancel)
	return reqCtx, func() {
		stop()
		cancel()
	}
}

func (e *Engine) beginLoad() {
	e.loading = true
	e.changed()

	go func() {
		fetched, err := e.store.ListMine(e.ctx)
		e.post(func() {
			e.finishLoad(fetched, err)
		})
	}()
}

// finishLoad merges a fetched list into the cache. Every item already held
// keeps its position, including pushes the store does not list yet, so a late
// fetch never evicts or reorders what the client has seen. Fetched items the
// client did not know about are appended. Read state only moves to read.
func (e *Engine) finishLoad(fetched []Notification, err error) {
	e.loading = false
	if !e.loadedOnce {
		e.loadedOnce = true
		defer close(e.loaded)
	}

	if err != nil {
		log.Printf("load notifications: %v", err)
		e.changed()
		return
	}

	held := make(map[string]int, len(e.items))
	for i, item := range e.items {
		held[item.ID] = i
	}

	merged := make([]Notification, len(e.items), len(e.items)+len(fetched))
	copy(merged, e.items)
	seen := make(map[string]struct{}, len(fetched))
	for _, item := range fetched {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		if i, ok := held[item.ID]; ok {
			if item.Read {
				merged[i].Read = true
			}
			continue
		}
		merged = append(merged, item)
	}

	e.items = merged
	e.changed()
}

func (e *Engine) subscribe() {
	if e.push == nil || e.credential == "" {
		log.Printf("no push credential, skipping notification subscription")
		return
	}

	go func() {
		events, err := e.push.Subscribe(e.ctx, e.credential)
		if err != nil {
			if e.ctx.Err() == nil {
				log.Printf("subscribe to notifications: %v", err)
			}
			return
		}
		e.post(func() {
			e.events = events
			e.changed()
		})
	}()
}

func (e *Engine) applyPush(ev Event) {
	if ev.Name != EventNewNotification {
		return
	}

	n := ev.Notification
	if n.ID == "" {
		log.Printf("dropping pushed notification without id")
		return
	}
	if e.indexOf(n.ID) >= 0 {
		log.Printf("dropping duplicate pushed notification %s", n.ID)
		return
	}

	n.Read = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = e.now()
	}

	e.items = append([]Notification{n}, e.items...)
	e.metrics.RecordPush(e.ctx)
	e.changed()
}

func (e *Engine) setRead(ids []string) {
	mutated := false
	for _, id := range ids {
		if i := e.indexOf(id); i >= 0 && !e.items[i].Read {
			e.items[i].Read = true
			mutated = true
		}
	}
	if mutated {
		e.changed()
	}
}

func (e *Engine) indexOf(id string) int {
	for i := range e.items {
		if e.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) snapshot() Snapshot {
	items := make([]Notification, len(e.items))
	copy(items, e.items)
	return Snapshot{
		Items:      items,
		Loading:    e.loading,
		Subscribed: e.events != nil,
	}
}

func (e *Engine) changed() {
	if e.onChange != nil {
		e.onChange(e.snapshot())
	}
}
