package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/0xvlm/nftsearch-go/upstream"
)

const testAddress = "0x00000000000000000000000000000000000000aa"

type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingSink) SessionEvent(event string, _ SessionEventData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func newTestBrowser(t *testing.T, fake *fakeIndexer, sink EventSink) *Browser {
	t.Helper()
	resolver := NewResolver(fake, nil, zap.NewNop())
	return NewBrowser("s1", fake, resolver, 100, sink)
}

func searchByName(fake *fakeIndexer, name string) {
	fake.searchFn = func(_ context.Context, query string, _ int) ([]upstream.ContractMatch, error) {
		return []upstream.ContractMatch{{Name: name, Address: testAddress}}, nil
	}
}

func TestSearchAccumulatesAcrossPages(t *testing.T) {
	fake := &fakeIndexer{}
	searchByName(fake, "Testpunks")
	fake.listFn = pagedListing(map[string]*upstream.NFTPage{
		"": {
			NFTs:    []upstream.NFT{token("3", "Three"), token("1", "One")},
			PageKey: "p2",
		},
		"p2": {
			NFTs: []upstream.NFT{token("2", "Two"), token("10", "Ten")},
		},
	})

	b := newTestBrowser(t, fake, nil)

	snap, err := b.Search(context.Background(), "testpunks")
	require.NoError(t, err)
	assert.Equal(t, "Testpunks", snap.Collection.DisplayName)
	assert.Equal(t, testAddress, snap.Collection.Address)
	assert.Len(t, snap.Items, 2)
	assert.False(t, snap.Exhausted)
	assert.Equal(t, "p2", snap.PageKey)

	snap, err = b.Continue(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Items, 4)
	assert.True(t, snap.Exhausted)

	ids := make([]string, 0, len(snap.Items))
	for _, it := range snap.Items {
		ids = append(ids, it.TokenID)
	}
	assert.Equal(t, []string{"1", "2", "3", "10"}, ids)
}

func TestSearchDropsDuplicateTokenIDs(t *testing.T) {
	fake := &fakeIndexer{}
	searchByName(fake, "Testpunks")
	fake.listFn = pagedListing(map[string]*upstream.NFTPage{
		"": {
			NFTs:    []upstream.NFT{token("5", "first"), token("7", "seven")},
			PageKey: "p2",
		},
		"p2": {
			NFTs: []upstream.NFT{token("5", "second"), token("6", "six")},
		},
	})

	b := newTestBrowser(t, fake, nil)

	_, err := b.Search(context.Background(), "testpunks")
	require.NoError(t, err)
	snap, err := b.Continue(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Items, 3)
	assert.Equal(t, "5", snap.Items[0].TokenID)
	// the earlier occurrence wins
	assert.Equal(t, "first", snap.Items[0].Title)
}

func TestSearchEmptyFirstPageIsNotFound(t *testing.T) {
	fake := &fakeIndexer{}
	searchByName(fake, "Ghost")
	fake.listFn = pagedListing(map[string]*upstream.NFTPage{
		"": {},
	})
	sink := &recordingSink{}

	b := newTestBrowser(t, fake, sink)

	snap, err := b.Search(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, snap.NotFound)
	assert.False(t, snap.Exhausted)
	assert.Empty(t, snap.Items)

	// terminal state: continuation must not fetch
	calls := fake.listCalls.Load()
	snap, err = b.Continue(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.NotFound)
	assert.Equal(t, calls, fake.listCalls.Load())

	assert.Equal(t, []string{EventSessionNotFound}, sink.names())
}

func TestSearchResolveNotFound(t *testing.T) {
	fake := &fakeIndexer{}
	fake.searchFn = func(context.Context, string, int) ([]upstream.ContractMatch, error) {
		return nil, nil
	}

	b := newTestBrowser(t, fake, nil)

	snap, err := b.Search(context.Background(), "does not exist")
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, snap.NotFound)
	assert.Zero(t, fake.listCalls.Load())
}

func TestSearchFirstPageFailure(t *testing.T) {
	fake := &fakeIndexer{}
	searchByName(fake, "Testpunks")
	fake.listFn = func(context.Context, string, string, int) (*upstream.NFTPage, error) {
		return nil, errors.New("upstream down")
	}
	sink := &recordingSink{}

	b := newTestBrowser(t, fake, sink)

	snap, err := b.Search(context.Background(), "testpunks")
	require.Error(t, err)
	assert.Empty(t, snap.Items)
	assert.False(t, snap.NotFound)
	assert.Equal(t, []string{EventSessionFailed}, sink.names())
}

func TestContinueFailurePreservesAccumulation(t *testing.T) {
	fake := &fakeIndexer{}
	searchByName(fake, "Testpunks")
	failSecond := true
	fake.listFn = func(_ context.Context, _, pageKey string, _ int) (*upstream.NFTPage, error) {
		if pageKey == "" {
			return &upstream.NFTPage{
				NFTs:    []upstream.NFT{token("1", "One"), token("2", "Two")},
				PageKey: "p2",
			}, nil
		}
		if failSecond {
			failSecond = false
			return nil, errors.New("transient")
		}
		return &upstream.NFTPage{NFTs: []upstream.NFT{token("3", "Three")}}, nil
	}

	b := newTestBrowser(t, fake, nil)

	_, err := b.Search(context.Background(), "testpunks")
	require.NoError(t, err)

	snap, err := b.Continue(context.Background())
	require.Error(t, err)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, "p2", snap.PageKey)

	// the failed page can be retried
	snap, err = b.Continue(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Items, 3)
	assert.True(t, snap.Exhausted)
}

func TestContinueWhileFetchInFlight(t *testing.T) {
	fake := &fakeIndexer{}
	searchByName(fake, "Testpunks")
	release := make(chan struct{})
	fake.listFn = func(_ context.Context, _, pageKey string, _ int) (*upstream.NFTPage, error) {
		if pageKey == "p2" {
			<-release
			return &upstream.NFTPage{NFTs: []upstream.NFT{token("2", "Two")}}, nil
		}
		return &upstream.NFTPage{
			NFTs:    []upstream.NFT{token("1", "One")},
			PageKey: "p2",
		}, nil
	}

	b := newTestBrowser(t, fake, nil)

	_, err := b.Search(context.Background(), "testpunks")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = b.Continue(context.Background())
	}()

	// wait until the continuation is holding the in-flight flag
	for !b.Snapshot().InFlight {
		time.Sleep(time.Millisecond)
	}

	calls := fake.listCalls.Load()
	snap, err := b.Continue(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.InFlight)
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, calls, fake.listCalls.Load())

	close(release)
	<-done
	assert.Len(t, b.Snapshot().Items, 2)
}

func TestContinueAfterExhausted(t *testing.T) {
	fake := &fakeIndexer{}
	searchByName(fake, "Testpunks")
	fake.listFn = pagedListing(map[string]*upstream.NFTPage{
		"": {NFTs: []upstream.NFT{token("1", "One")}},
	})

	b := newTestBrowser(t, fake, nil)

	snap, err := b.Search(context.Background(), "testpunks")
	require.NoError(t, err)
	require.True(t, snap.Exhausted)

	calls := fake.listCalls.Load()
	snap, err = b.Continue(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Exhausted)
	assert.Equal(t, calls, fake.listCalls.Load())
}

func TestContinueBeforeAnySearch(t *testing.T) {
	fake := &fakeIndexer{}
	b := newTestBrowser(t, fake, nil)

	snap, err := b.Continue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Zero(t, fake.listCalls.Load())
}

func TestNewSearchSupersedesInFlightPage(t *testing.T) {
	const heldAddress = "0x00000000000000000000000000000000000000bb"

	fake := &fakeIndexer{}
	fake.searchFn = func(_ context.Context, query string, _ int) ([]upstream.ContractMatch, error) {
		if query == "held" {
			return []upstream.ContractMatch{{Name: "Held", Address: heldAddress}}, nil
		}
		return []upstream.ContractMatch{{Name: "Fresh", Address: testAddress}}, nil
	}
	release := make(chan struct{})
	fake.listFn = func(_ context.Context, address, _ string, _ int) (*upstream.NFTPage, error) {
		if address == heldAddress {
			<-release
			return &upstream.NFTPage{NFTs: []upstream.NFT{token("99", "stale")}}, nil
		}
		return &upstream.NFTPage{NFTs: []upstream.NFT{token("1", "One")}}, nil
	}

	b := newTestBrowser(t, fake, nil)

	errs := make(chan error, 1)
	go func() {
		_, err := b.Search(context.Background(), "held")
		errs <- err
	}()

	// wait until the first search has its page request in flight
	for fake.listCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	snap, err := b.Search(context.Background(), "fresh")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "1", snap.Items[0].TokenID)

	close(release)
	require.ErrorIs(t, <-errs, ErrSuperseded)

	// the stale page never lands in the new session
	snap = b.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "1", snap.Items[0].TokenID)
	assert.Equal(t, "Fresh", snap.Collection.DisplayName)
}

func TestLargeAccumulationStaysSorted(t *testing.T) {
	fake := &fakeIndexer{}
	searchByName(fake, "Big")
	fake.listFn = func(_ context.Context, _, pageKey string, _ int) (*upstream.NFTPage, error) {
		switch pageKey {
		case "":
			page := &upstream.NFTPage{PageKey: "p2"}
			for i := 199; i >= 100; i-- {
				page.NFTs = append(page.NFTs, token(fmt.Sprintf("%d", i), ""))
			}
			return page, nil
		case "p2":
			page := &upstream.NFTPage{}
			for i := 0; i < 100; i++ {
				page.NFTs = append(page.NFTs, token(fmt.Sprintf("%d", i), ""))
			}
			return page, nil
		}
		return nil, errors.New("unexpected page key")
	}

	b := newTestBrowser(t, fake, nil)

	_, err := b.Search(context.Background(), "big")
	require.NoError(t, err)
	snap, err := b.Continue(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Items, 200)
	for i, it := range snap.Items {
		assert.Equal(t, fmt.Sprintf("%d", i), it.TokenID)
	}
}
