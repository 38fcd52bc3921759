package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/whxxx2005-coder/xianyi/pkg/assetstore"
)

var (
	// ErrNoSyncCode is returned by Push when no sync code has been set.
	// Pull treats the missing code as a silent no-op instead, because it
	// runs unprompted on visitor entry.
	ErrNoSyncCode = errors.New("no sync code configured")

	// ErrBundleNotFound is returned by Pull when no device has pushed
	// under the code yet.
	ErrBundleNotFound = errors.New("no bundle found for sync code")
)

// IsNotFound reports whether err means no bundle exists under the code.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBundleNotFound)
}

// Milestone marks the phases of a transfer for progress reporting.
type Milestone string

const (
	MilestonePackaging    Milestone = "packaging"
	MilestoneTransferring Milestone = "transferring"
	MilestoneDone         Milestone = "done"
	MilestoneFailed       Milestone = "failed"
)

// ProgressFunc receives milestone callbacks during Push and Pull. assets is
// the number of records in the bundle once known, otherwise -1.
type ProgressFunc func(m Milestone, assets int)

// bundleKey namespaces bundles on the shared Redis server so unrelated
// tooling on the same instance cannot collide with them.
func bundleKey(code string) string {
	return fmt.Sprintf("xianyi:bundle:%s", code)
}

// Coordinator transfers full-snapshot bundles through a shared Redis
// server. It is safe for concurrent use.
type Coordinator struct {
	rdb   *redis.Client
	store *assetstore.Store
}

// New creates a coordinator over the given Redis options and local store.
func New(redisOpts *redis.Options, store *assetstore.Store) *Coordinator {
	return &Coordinator{rdb: redis.NewClient(redisOpts), store: store}
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Coordinator) Close() error {
	return c.rdb.Close()
}

// Ping verifies the transfer endpoint is reachable.
func (c *Coordinator) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Push packages the entire local store and uploads it under code,
// replacing whatever bundle the code previously held. The upload is a
// single write, so a concurrent pull sees either the old snapshot or the
// new one, never a mix. progress may be nil.
func (c *Coordinator) Push(ctx context.Context, code string, progress ProgressFunc) error {
	if code == "" {
		return ErrNoSyncCode
	}
	notify := func(m Milestone, assets int) {
		if progress != nil {
			progress(m, assets)
		}
	}

	notify(MilestonePackaging, -1)
	bundle, err := PackageStore(ctx, c.store)
	if err != nil {
		notify(MilestoneFailed, -1)
		return fmt.Errorf("failed to package assets: %w", err)
	}
	payload, err := bundle.Marshal()
	if err != nil {
		notify(MilestoneFailed, -1)
		return err
	}

	notify(MilestoneTransferring, len(bundle.Assets))
	if err := c.rdb.Set(ctx, bundleKey(code), payload, 0).Err(); err != nil {
		notify(MilestoneFailed, len(bundle.Assets))
		return fmt.Errorf("failed to upload bundle: %w", err)
	}

	notify(MilestoneDone, len(bundle.Assets))
	return nil
}

// Pull downloads the bundle under code and writes every entry into the
// local store. Local keys not present in the bundle are left untouched.
// Returns ErrBundleNotFound when nothing has been pushed under the code.
// progress may be nil.
func (c *Coordinator) Pull(ctx context.Context, code string, progress ProgressFunc) error {
	if code == "" {
		return ErrNoSyncCode
	}
	notify := func(m Milestone, assets int) {
		if progress != nil {
			progress(m, assets)
		}
	}

	notify(MilestoneTransferring, -1)
	payload, err := c.rdb.Get(ctx, bundleKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		notify(MilestoneFailed, -1)
		return ErrBundleNotFound
	}
	if err != nil {
		notify(MilestoneFailed, -1)
		return fmt.Errorf("failed to download bundle: %w", err)
	}

	bundle, err := UnmarshalBundle(payload)
	if err != nil {
		notify(MilestoneFailed, -1)
		return err
	}

	notify(MilestonePackaging, len(bundle.Assets))
	if err := bundle.Unpack(ctx, c.store); err != nil {
		notify(MilestoneFailed, len(bundle.Assets))
		return fmt.Errorf("failed to apply bundle: %w", err)
	}

	notify(MilestoneDone, len(bundle.Assets))
	return nil
}

// AutoPull runs the visitor-entry refresh: pull the bundle for code if one
// is set. The visitor never initiated this transfer, so every failure path
// is silent — no code, no bundle yet, and network trouble all leave the
// local store as it was. Returns true when a bundle was applied.
func (c *Coordinator) AutoPull(ctx context.Context, code string) bool {
	if code == "" {
		return false
	}
	return c.Pull(ctx, code, nil) == nil
}
