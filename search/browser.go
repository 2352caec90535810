package search

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// session holds the accumulated listing state for a single search.
// A new search replaces the session wholesale; the identity sequence
// lets late responses from a replaced session be discarded.
type session struct {
	identity   uint64
	collection ResolvedContract
	items      []TokenItem
	seen       map[string]struct{}
	pageKey    string
	started    bool
	fetching   bool
	exhausted  bool
	notFound   bool
}

// Browser accumulates paginated collection listings for one session at
// a time. Pages are fetched strictly sequentially: Continue is a no-op
// while a fetch is in flight, after the listing is exhausted, or after
// an empty first page marked the collection as not found.
type Browser struct {
	id       string
	indexer  Indexer
	resolver *Resolver
	pageSize int
	events   EventSink

	mu   sync.Mutex
	seq  uint64
	sess *session
}

// NewBrowser creates a browser bound to the given session id.
func NewBrowser(id string, indexer Indexer, resolver *Resolver, pageSize int, events EventSink) *Browser {
	return &Browser{
		id:       id,
		indexer:  indexer,
		resolver: resolver,
		pageSize: pageSize,
		events:   events,
	}
}

// Search resolves the query and loads the first page of the resolved
// collection. Any previous session state is dropped immediately, before
// resolution begins, so late results from the old session cannot land
// in the new one.
func (b *Browser) Search(ctx context.Context, query string) (Snapshot, error) {
	b.mu.Lock()
	b.seq++
	ident := b.seq
	b.sess = &session{
		identity: ident,
		seen:     make(map[string]struct{}),
		fetching: true,
	}
	b.mu.Unlock()

	resolved, err := b.resolver.Resolve(ctx, query)

	b.mu.Lock()
	if b.sess == nil || b.sess.identity != ident {
		b.mu.Unlock()
		sessionsStartedTotal.WithLabelValues(outcomeStale).Inc()
		return Snapshot{}, ErrSuperseded
	}
	if err != nil {
		b.sess.fetching = false
		if errors.Is(err, ErrNotFound) {
			b.sess.started = true
			b.sess.notFound = true
		}
		snap := b.snapshotLocked()
		b.mu.Unlock()
		if errors.Is(err, ErrNotFound) {
			sessionsStartedTotal.WithLabelValues(outcomeNotFound).Inc()
			b.emit(EventSessionNotFound, snap, 0, nil)
		} else {
			sessionsStartedTotal.WithLabelValues(outcomeError).Inc()
			b.emit(EventSessionFailed, snap, 0, err)
		}
		return snap, err
	}
	b.sess.collection = *resolved
	b.mu.Unlock()

	sessionsStartedTotal.WithLabelValues(outcomeOK).Inc()
	return b.fetchPage(ctx, ident)
}

// Continue loads the next page of the current session. It returns the
// current snapshot unchanged when a fetch is already in flight, when
// the listing is exhausted, or when no search has started yet.
func (b *Browser) Continue(ctx context.Context) (Snapshot, error) {
	b.mu.Lock()
	if b.sess == nil || !b.sess.started || b.sess.fetching || b.sess.exhausted || b.sess.notFound {
		snap := b.snapshotLocked()
		b.mu.Unlock()
		return snap, nil
	}
	b.sess.fetching = true
	ident := b.sess.identity
	b.mu.Unlock()

	return b.fetchPage(ctx, ident)
}

// Snapshot returns the current accumulated state.
func (b *Browser) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// fetchPage loads one page for the session identified by ident and
// merges it into the accumulation. Results arriving after the session
// was replaced are discarded.
func (b *Browser) fetchPage(ctx context.Context, ident uint64) (Snapshot, error) {
	b.mu.Lock()
	if b.sess == nil || b.sess.identity != ident {
		snap := b.snapshotLocked()
		b.mu.Unlock()
		return snap, ErrSuperseded
	}
	address := b.sess.collection.Address
	collection := b.sess.collection
	pageKey := b.sess.pageKey
	firstPage := !b.sess.started
	b.mu.Unlock()

	start := time.Now()
	page, err := b.indexer.NFTsForContract(ctx, address, pageKey, b.pageSize)
	pageFetchDuration.Observe(time.Since(start).Seconds())

	b.mu.Lock()
	if b.sess == nil || b.sess.identity != ident {
		snap := b.snapshotLocked()
		b.mu.Unlock()
		pagesFetchedTotal.WithLabelValues(outcomeStale).Inc()
		return snap, ErrSuperseded
	}
	b.sess.fetching = false

	if err != nil {
		if firstPage {
			b.sess.items = nil
			b.sess.seen = make(map[string]struct{})
			b.sess.pageKey = ""
		}
		snap := b.snapshotLocked()
		b.mu.Unlock()
		pagesFetchedTotal.WithLabelValues(outcomeError).Inc()
		b.emit(EventSessionFailed, snap, 0, err)
		return snap, err
	}

	if firstPage && len(page.NFTs) == 0 {
		b.sess.started = true
		b.sess.notFound = true
		snap := b.snapshotLocked()
		b.mu.Unlock()
		pagesFetchedTotal.WithLabelValues(outcomeEmpty).Inc()
		b.emit(EventSessionNotFound, snap, 0, nil)
		return snap, ErrNotFound
	}

	added := 0
	for i := range page.NFTs {
		item := normalizeToken(page.NFTs[i], collection)
		if _, dup := b.sess.seen[item.TokenID]; dup {
			duplicatesDroppedTotal.Inc()
			continue
		}
		b.sess.seen[item.TokenID] = struct{}{}
		b.sess.items = append(b.sess.items, item)
		added++
	}
	sort.Slice(b.sess.items, func(i, j int) bool {
		return tokenIDLess(b.sess.items[i].TokenID, b.sess.items[j].TokenID)
	})
	itemsAccumulatedTotal.Add(float64(added))

	b.sess.pageKey = page.PageKey
	b.sess.exhausted = page.PageKey == ""
	b.sess.started = true
	snap := b.snapshotLocked()
	b.mu.Unlock()

	pagesFetchedTotal.WithLabelValues(outcomeOK).Inc()
	if firstPage {
		b.emit(EventSessionStarted, snap, added, nil)
	} else {
		b.emit(EventPageLoaded, snap, added, nil)
	}
	if snap.Exhausted {
		b.emit(EventSessionExhausted, snap, 0, nil)
	}
	return snap, nil
}

func (b *Browser) snapshotLocked() Snapshot {
	snap := Snapshot{SessionID: b.id}
	if b.sess == nil {
		return snap
	}
	snap.Collection = b.sess.collection
	snap.Items = append([]TokenItem(nil), b.sess.items...)
	snap.PageKey = b.sess.pageKey
	snap.Exhausted = b.sess.exhausted
	snap.NotFound = b.sess.notFound
	snap.InFlight = b.sess.fetching
	return snap
}

func (b *Browser) emit(event string, snap Snapshot, added int, err error) {
	if b.events == nil {
		return
	}
	data := SessionEventData{
		SessionID:  b.id,
		Collection: snap.Collection,
		NewItems:   added,
		TotalItems: len(snap.Items),
		Exhausted:  snap.Exhausted,
	}
	if err != nil {
		data.Error = err.Error()
	}
	b.events.SessionEvent(event, data)
}
