// Package resolver turns logical asset keys into renderable or playable
// resources by composing the candidate sources in a fixed priority order:
// durable store, then bundled fallback file, then caller-supplied remote
// URL. Each consuming component holds one Binding, which reports an
// explicit Loading -> Resolved/Unavailable state stream and guarantees that
// a superseded request can never overwrite the state of a newer one.
package resolver

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/whxxx2005-coder/xianyi/internal/handle"
	"github.com/whxxx2005-coder/xianyi/pkg/assetstore"
)

// State is the phase of one resolution attempt.
type State string

const (
	// StateLoading is emitted immediately whenever the requested key
	// changes, before any source has answered.
	StateLoading State = "loading"

	// StateResolved carries a usable reference and its provenance.
	StateResolved State = "resolved"

	// StateUnavailable is the terminal state when no source could satisfy
	// the key. It is a normal outcome rendered as a placeholder, not an
	// error.
	StateUnavailable State = "unavailable"
)

// Provenance records which source satisfied a resolution.
type Provenance string

const (
	// ProvenanceDurable means the device-local durable store had a record.
	// This source always wins when present.
	ProvenanceDurable Provenance = "durable-store"

	// ProvenanceBundled means a static fallback file shipped with the
	// exhibit satisfied the key.
	ProvenanceBundled Provenance = "bundled-fallback"

	// ProvenanceRemote means the caller-supplied remote URL satisfied the
	// key as the last candidate.
	ProvenanceRemote Provenance = "remote"
)

// Resolution is one update on a Binding's state stream. Exactly one of
// Handle, URL, or Path is populated when State is StateResolved:
// Handle for binary durable records, URL for string durable records and
// remote candidates, Path for bundled fallback files.
type Resolution struct {
	State      State
	Provenance Provenance
	Handle     *handle.Handle
	URL        string
	Path       string
}

// Resolver resolves asset keys against the durable store, the bundled
// asset root, and remote URLs. It is shared by all bindings; the priority
// order is a global policy and is not parameterised per call.
type Resolver struct {
	store       *assetstore.Store
	handles     *handle.Manager
	bundledRoot string
	client      *http.Client
}

// New creates a resolver. bundledRoot is the directory the static fallback
// assets ship under; timeout bounds every remote probe so a stalled request
// settles to Unavailable instead of holding Loading.
func New(store *assetstore.Store, handles *handle.Manager, bundledRoot string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		store:       store,
		handles:     handles,
		bundledRoot: bundledRoot,
		client:      &http.Client{Timeout: timeout},
	}
}

// BundledPath returns the static fallback path for a key. Pure function of
// the key and asset kind:
//
//	images (poster, relic cards): {root}/assets/images/{key}.png
//	narration audio:              {root}/assets/audio/{relicID}_{persona}.mp3
func (r *Resolver) BundledPath(key string) string {
	if relicID, persona, ok := assetstore.ParseAudioKey(key); ok {
		return filepath.Join(r.bundledRoot, "assets", "audio", relicID+"_"+persona+".mp3")
	}
	return filepath.Join(r.bundledRoot, "assets", "images", key+".png")
}

// NewBinding creates the resolution slot for one consuming component
// instance. The caller must Close the binding in its teardown path.
func (r *Resolver) NewBinding() *Binding {
	return &Binding{
		r:       r,
		updates: make(chan Resolution, 8),
	}
}

// Binding is one component instance's view of the resolver: a state stream
// for the currently requested key plus ownership of any binary handle the
// resolution produced. All methods are safe for concurrent use.
type Binding struct {
	r *Resolver

	mu     sync.Mutex
	gen    uint64
	key    string
	hint   string
	last   Resolution
	closed bool

	slot    handle.Slot
	updates chan Resolution
}

// Updates returns the state stream. The channel is closed by Close. Slow
// consumers never block resolution; stale intermediate updates are dropped
// in favour of the newest.
func (b *Binding) Updates() <-chan Resolution {
	return b.updates
}

// Last returns the most recently emitted resolution.
func (b *Binding) Last() Resolution {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Request starts resolving key, superseding any in-flight attempt. A
// Loading state is emitted synchronously; the outcome arrives on the
// updates stream. remoteHint may be empty when the caller has no remote
// URL for this key.
func (b *Binding) Request(ctx context.Context, key, remoteHint string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.gen++
	gen := b.gen
	b.key = key
	b.hint = remoteHint
	b.emitLocked(Resolution{State: StateLoading})
	b.mu.Unlock()

	go b.resolve(ctx, gen, key, remoteHint)
}

// resolve walks the candidate sources in the fixed global order. Every
// outcome is delivered through deliver, which discards it if a newer
// request has started in the meantime.
func (b *Binding) resolve(ctx context.Context, gen uint64, key, remoteHint string) {
	// Source 1: durable store. A read failure degrades to the next source
	// rather than surfacing to the visitor.
	rec, ok, err := b.r.store.Get(ctx, key)
	if err == nil && ok {
		switch rec.Kind {
		case assetstore.KindBinary:
			h := b.r.handles.Wrap(rec.Data)
			b.deliverHandle(gen, h)
			return
		case assetstore.KindString:
			b.deliver(gen, Resolution{State: StateResolved, Provenance: ProvenanceDurable, URL: rec.Text})
			return
		}
	}

	// Source 2: bundled fallback file.
	path := b.r.BundledPath(key)
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		b.deliver(gen, Resolution{State: StateResolved, Provenance: ProvenanceBundled, Path: path})
		return
	}

	// Source 3: remote URL, if the caller supplied one.
	if remoteHint != "" {
		if err := b.r.probeRemote(ctx, remoteHint); err == nil {
			b.deliver(gen, Resolution{State: StateResolved, Provenance: ProvenanceRemote, URL: remoteHint})
			return
		}
	}

	b.deliver(gen, Resolution{State: StateUnavailable})
}

// ReportUnreachable lets the presentation layer report that the currently
// resolved bundled or remote candidate failed to load. A bundled failure
// swaps to the remote hint as a second-chance candidate without re-entering
// Loading; a remote failure (or a bundled failure with no hint) settles the
// attempt to Unavailable. Reports against a Loading or already-Unavailable
// state are ignored.
func (b *Binding) ReportUnreachable(ctx context.Context) {
	b.mu.Lock()
	if b.closed || b.last.State != StateResolved {
		b.mu.Unlock()
		return
	}
	gen := b.gen
	prov := b.last.Provenance
	hint := b.hint
	b.mu.Unlock()

	if prov == ProvenanceBundled && hint != "" {
		if err := b.r.probeRemote(ctx, hint); err == nil {
			b.deliver(gen, Resolution{State: StateResolved, Provenance: ProvenanceRemote, URL: hint})
			return
		}
	}
	b.deliver(gen, Resolution{State: StateUnavailable})
}

// Close tears the binding down: pending resolutions are ignored, the owned
// handle is released through the slot, and the updates channel is closed.
// Safe to call multiple times.
func (b *Binding) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.gen++
	close(b.updates)
	b.mu.Unlock()

	b.slot.Close()
}

// deliver emits res unless the attempt identified by gen has been
// superseded or the binding closed.
func (b *Binding) deliver(gen uint64, res Resolution) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || gen != b.gen {
		return
	}
	if res.Handle == nil {
		// Any handle from a previous resolution is superseded by this
		// non-binary outcome.
		b.slot.Adopt(nil)
	}
	b.emitLocked(res)
}

// deliverHandle emits a durable binary resolution, transferring ownership
// of h to the binding's slot. If the attempt was superseded while the store
// read was in flight, the fresh handle is released immediately — it never
// had a live owner.
func (b *Binding) deliverHandle(gen uint64, h *handle.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || gen != b.gen {
		h.Release()
		return
	}
	b.slot.Adopt(h)
	b.emitLocked(Resolution{State: StateResolved, Provenance: ProvenanceDurable, Handle: h})
}

// emitLocked records res as the latest state and pushes it on the stream,
// dropping the oldest buffered update if the consumer is behind. Callers
// must hold b.mu.
func (b *Binding) emitLocked(res Resolution) {
	b.last = res
	for {
		select {
		case b.updates <- res:
			return
		default:
		}
		select {
		case <-b.updates:
		default:
		}
	}
}
