package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/guiguan/caster"
	"github.com/npillmayer/pst"
)

// ErrClosed is returned for operations on a closed feed.
var ErrClosed = errors.New("feed: closed")

// Event announces a newly published version.
type Event[T any] struct {
	Version int // number of the new version
	Pos     int // index set by the version
	Value   T   // value set at Pos
}

// Feed serializes inserts into a tree and broadcasts an Event for every new
// version.
//
// Broadcasting applies back-pressure: Insert waits until every active
// subscriber has taken the previous event. Subscribers which are done (their
// context is cancelled) or a closed feed never block writers.
type Feed[T any] struct {
	wmx    sync.Mutex   // serializes writers, held while publishing
	mx     sync.RWMutex // guards the tree's version table and closed
	tree   *pst.Tree[T]
	cast   *caster.Caster  // broadcaster for published versions
	done   <-chan struct{} // closed when the feed is closed
	cancel context.CancelFunc
	closed bool
}

// New creates a feed for tree. The feed takes over ownership of tree: clients
// must not insert into tree directly afterwards. Cancelling ctx closes the
// feed's broadcaster, terminating all subscriptions.
func New[T any](ctx context.Context, tree *pst.Tree[T]) (*Feed[T], error) {
	if tree == nil {
		return nil, pst.ErrIllegalArguments
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Feed[T]{
		tree:   tree,
		cast:   caster.New(ctx),
		done:   ctx.Done(),
		cancel: cancel,
	}, nil
}

// Insert sets value at pos, creating a new version, and publishes an Event
// for the new version. The event is broadcast after the version has been
// appended to the tree.
func (f *Feed[T]) Insert(pos int, value T) (int, error) {
	f.wmx.Lock()
	defer f.wmx.Unlock()
	f.mx.Lock()
	if f.closed {
		f.mx.Unlock()
		return 0, ErrClosed
	}
	version, err := f.tree.Insert(pos, value)
	f.mx.Unlock()
	if err != nil {
		return 0, err
	}
	// readers may access the new version while subscribers are served
	if !f.cast.Pub(Event[T]{Version: version, Pos: pos, Value: value}) {
		tracer().Infof("feed: version %d not published, broadcaster closed", version)
	}
	return version, nil
}

// Snapshot returns a read-only view of a published version. Versions beyond
// the latest version are clamped.
func (f *Feed[T]) Snapshot(version int) (pst.Snapshot[T], error) {
	f.mx.RLock()
	defer f.mx.RUnlock()
	return f.tree.Snapshot(version)
}

// Latest returns the number of the most recently published version.
func (f *Feed[T]) Latest() int {
	f.mx.RLock()
	defer f.mx.RUnlock()
	return f.tree.Latest()
}

// Subscribe returns a channel receiving an Event for every version published
// after the call. capacity is the buffer size of the channel. The channel
// will be closed when ctx is done or when the feed is closed.
func (f *Feed[T]) Subscribe(ctx context.Context, capacity uint) (<-chan Event[T], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	f.mx.RLock()
	closed := f.closed
	f.mx.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	sub, ok := f.cast.Sub(ctx, capacity)
	if !ok {
		return nil, ErrClosed
	}
	events := make(chan Event[T], capacity)
	go f.forward(ctx, sub, events)
	return events, nil
}

// forward passes events from the broadcaster on to a subscriber until either
// the broadcaster closes sub, the subscriber is done or the feed is closed.
func (f *Feed[T]) forward(ctx context.Context, sub <-chan interface{}, events chan<- Event[T]) {
	defer close(events)
	for {
		select {
		case msg, ok := <-sub:
			if !ok {
				return
			}
			ev, ok := msg.(Event[T])
			if !ok {
				continue
			}
			select {
			case events <- ev:
				continue
			case <-ctx.Done():
			case <-f.done:
			}
		case <-ctx.Done():
		case <-f.done:
		}
		// the broadcaster must not block on a subscriber which has gone
		go drain(sub)
		return
	}
}

// drain discards messages until the broadcaster closes sub. The broadcaster
// drops subscriptions of done contexts with the next event, and all of them
// when it terminates.
func drain(sub <-chan interface{}) {
	for range sub {
	}
}

// Close stops the feed. Subscription channels are closed; the tree remains
// valid and queryable. Close does not wait for slow subscribers, and an
// Insert blocked by one returns.
func (f *Feed[T]) Close() {
	f.mx.Lock()
	if f.closed {
		f.mx.Unlock()
		return
	}
	f.closed = true
	latest := f.tree.Latest()
	f.mx.Unlock()
	f.cancel()
	f.cast.Close()
	tracer().Debugf("feed: closed after version %d", latest)
}
