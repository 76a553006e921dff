// Package invoice materializes order invoices as PDF artifacts. An
// artifact is rendered at most once per order: its presence in the
// store is the cache signal, and committed artifacts are immutable.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotExist is returned by ArtifactStore.Open for an absent key.
	ErrNotExist = errors.New("invoice: artifact does not exist")
	// ErrMissingAsset means a line item's image could not be resolved.
	// Policy: the render aborts and nothing is cached, so the invoice
	// can be produced complete once the asset is restored.
	ErrMissingAsset = errors.New("invoice: missing image asset")
)

var (
	renders = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoice_renders_total",
		Help: "Number of invoice documents rendered (cache misses)",
	})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoice_cache_hits_total",
		Help: "Number of invoice requests served from the artifact store",
	})
)

// Key maps an order to its canonical artifact location.
func Key(orderID string) string {
	return "invoice-" + orderID + ".pdf"
}

type Renderer interface {
	Render(ctx context.Context, order *entity.Order, w io.Writer) error
}

// PendingArtifact buffers an artifact being produced. Commit publishes
// it atomically under its key; Discard drops it. Exactly one of the two
// must be called, and a discarded or failed artifact is never visible
// to Open.
type PendingArtifact interface {
	io.Writer
	Commit() error
	Discard() error
}

type ArtifactStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Create(ctx context.Context, key string) (PendingArtifact, error)
}

// Materializer streams a cached invoice artifact, or renders one in a
// single pass to both the store and the caller's sink.
type Materializer struct {
	store  ArtifactStore
	render Renderer
	group  singleflight.Group
}

func NewMaterializer(store ArtifactStore, render Renderer) *Materializer {
	return &Materializer{store: store, render: render}
}

// Obtain writes the invoice for order to sink. Authorization is the
// caller's concern; order must already be checked against the
// requesting principal.
func (m *Materializer) Obtain(ctx context.Context, order *entity.Order, sink io.Writer) error {
	key := Key(order.ID)

	rc, err := m.store.Open(ctx, key)
	switch {
	case err == nil:
		defer rc.Close()
		cacheHits.Inc()
		if _, err := io.Copy(sink, rc); err != nil {
			return fmt.Errorf("stream %s: %w", key, err)
		}
		return nil
	case !errors.Is(err, ErrNotExist):
		return fmt.Errorf("open %s: %w", key, err)
	}

	// Cache miss. At most one render runs per order id: the flight
	// leader writes the document to the pending artifact and its own
	// sink in one pass; followers block here and stream the committed
	// artifact below.
	streamed := false
	_, err, _ = m.group.Do(order.ID, func() (any, error) {
		// A flight that finished between Open and Do has already
		// committed the artifact; don't render again.
		if probe, err := m.store.Open(ctx, key); err == nil {
			probe.Close()
			return nil, nil
		} else if !errors.Is(err, ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", key, err)
		}

		pending, err := m.store.Create(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", key, err)
		}
		if err := m.render.Render(ctx, order, io.MultiWriter(pending, sink)); err != nil {
			_ = pending.Discard()
			return nil, err
		}
		if err := pending.Commit(); err != nil {
			return nil, fmt.Errorf("commit %s: %w", key, err)
		}
		renders.Inc()
		streamed = true
		return nil, nil
	})
	if err != nil {
		return err
	}
	if streamed {
		return nil
	}

	rc, err = m.store.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("open %s after render: %w", key, err)
	}
	defer rc.Close()
	if _, err := io.Copy(sink, rc); err != nil {
		return fmt.Errorf("stream %s: %w", key, err)
	}
	return nil
}
