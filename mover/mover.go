package mover

import (
	"context"
	"fmt"
	"path"

	"github.com/gobeaver/shelfkit"
)

// Action identifies what the mover did (or would do) with an item.
type Action string

const (
	ActionDryRun     Action = "dry-run"
	ActionTagOnly    Action = "tag-only"
	ActionRename     Action = "rename"
	ActionCopyDelete Action = "copy+delete"
	ActionSkip       Action = "skip"
)

// Outcome reasons. Failure reasons match the per-item error taxonomy; skip
// and dry-run reasons explain no-ops.
const (
	ReasonAlreadyNormalized = "already_normalized"
	ReasonNoTags            = "no_tags"
	ReasonNotFound          = "blob_not_found"
	ReasonChecksumFailed    = "checksum_failed"
	ReasonChecksumMismatch  = "checksum_mismatch"
	ReasonRenameFailed      = "rename_failed"
	ReasonTagSetFailed      = "tag_set_failed"
)

// Outcome records what happened to a single item. Err is nil for successful
// and skipped items.
type Outcome struct {
	Action      Action
	Source      string
	Destination string
	Reason      string
	Err         error
}

// OK reports whether the item ended in a non-error state.
func (o Outcome) OK() bool { return o.Err == nil }

// Mover relocates objects using the strategy fixed at construction time. It
// holds no per-item state and is safe to reuse across a whole run.
type Mover struct {
	store     shelfkit.ObjectStore
	atomic    bool
	algorithm shelfkit.ChecksumAlgorithm
}

// MoverOption configures a Mover
type MoverOption func(*Mover)

// WithChecksum sets the algorithm used to verify non-atomic copies.
func WithChecksum(algorithm shelfkit.ChecksumAlgorithm) MoverOption {
	return func(m *Mover) { m.algorithm = algorithm }
}

// New creates a Mover. atomicRename should be the cached result of Probe for
// this store; when false the mover verifies every copy by checksum before
// deleting the source.
func New(store shelfkit.ObjectStore, atomicRename bool, opts ...MoverOption) *Mover {
	m := &Mover{
		store:     store,
		atomic:    atomicRename,
		algorithm: shelfkit.ChecksumSHA256,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Atomic reports which strategy the mover will use for real relocations.
func (m *Mover) Atomic() bool { return m.atomic }

// Move relocates src to dst and attaches tags to the object at its final
// location. The outcome always carries the attempted action and, on failure,
// a taxonomy reason. Failures never leave the corpus without exactly one
// good copy of the item: the source is only deleted after the destination
// has been verified.
func (m *Mover) Move(ctx context.Context, src, dst string, tags map[string]string, options ...Option) Outcome {
	opts := processOptions(options...)
	out := Outcome{Source: src, Destination: dst}

	// Idempotency: re-running over an already-placed item is a no-op.
	if src == dst {
		out.Action = ActionSkip
		out.Reason = ReasonAlreadyNormalized
		return out
	}

	if opts.TagOnly && len(tags) == 0 {
		out.Action = ActionSkip
		out.Reason = ReasonNoTags
		return out
	}

	if opts.DryRun {
		out.Action = ActionDryRun
		out.Reason = "would_" + string(m.liveAction(opts))
		return out
	}

	switch {
	case opts.TagOnly:
		return m.tagOnly(ctx, out, tags)
	case m.atomic:
		return m.rename(ctx, out, tags, opts.Overwrite)
	default:
		return m.copyDelete(ctx, out, tags)
	}
}

// liveAction names the action a live run would take with these options.
func (m *Mover) liveAction(opts *Options) Action {
	switch {
	case opts.TagOnly:
		return ActionTagOnly
	case m.atomic:
		return ActionRename
	default:
		return ActionCopyDelete
	}
}

func (m *Mover) tagOnly(ctx context.Context, out Outcome, tags map[string]string) Outcome {
	out.Action = ActionTagOnly
	out.Destination = out.Source // nothing moves
	if err := m.store.SetTags(ctx, out.Source, tags); err != nil {
		out.Reason = ReasonTagSetFailed
		if shelfkit.IsNotExist(err) {
			out.Reason = ReasonNotFound
		}
		out.Err = err
	}
	return out
}

func (m *Mover) rename(ctx context.Context, out Outcome, tags map[string]string, overwrite bool) Outcome {
	out.Action = ActionRename

	renamer, ok := m.store.(shelfkit.CanRename)
	if !ok {
		// The capability probe should have prevented this.
		out.Reason = ReasonRenameFailed
		out.Err = fmt.Errorf("%w: store cannot rename", shelfkit.ErrNotSupported)
		return out
	}

	// Ensure the destination's parent exists. "Already exists" is success.
	if parent := path.Dir(out.Destination); parent != "." && parent != "/" {
		if err := renamer.CreateDir(ctx, parent); err != nil && !shelfkit.IsExist(err) {
			out.Reason = ReasonRenameFailed
			out.Err = fmt.Errorf("create destination directory: %w", err)
			return out
		}
	}

	if err := renamer.Rename(ctx, out.Source, out.Destination, overwrite); err != nil {
		out.Reason = ReasonRenameFailed
		if shelfkit.IsNotExist(err) {
			out.Reason = ReasonNotFound
		}
		out.Err = err
		return out
	}

	if err := m.store.SetTags(ctx, out.Destination, tags); err != nil {
		out.Reason = ReasonTagSetFailed
		out.Err = err
	}
	return out
}

// copyDelete is the conservative fallback for flat-namespace stores: digest
// the source, server-side copy, digest the copy, and only delete the source
// once the digests match. On mismatch the destination copy is removed and
// the source is left untouched as the single copy of truth.
func (m *Mover) copyDelete(ctx context.Context, out Outcome, tags map[string]string) Outcome {
	out.Action = ActionCopyDelete

	srcSum, err := m.store.Checksum(ctx, out.Source, m.algorithm)
	if err != nil {
		out.Reason = ReasonChecksumFailed
		if shelfkit.IsNotExist(err) {
			out.Reason = ReasonNotFound
		}
		out.Err = err
		return out
	}

	// Copy returns only after the server-side copy has completed.
	if err := m.store.Copy(ctx, out.Source, out.Destination); err != nil {
		out.Reason = ReasonRenameFailed
		out.Err = fmt.Errorf("copy: %w", err)
		return out
	}

	dstSum, err := m.store.Checksum(ctx, out.Destination, m.algorithm)
	if err != nil {
		_ = m.store.Delete(ctx, out.Destination) // best effort cleanup
		out.Reason = ReasonChecksumFailed
		out.Err = fmt.Errorf("verify copy: %w", err)
		return out
	}

	if dstSum != srcSum {
		_ = m.store.Delete(ctx, out.Destination)
		out.Reason = ReasonChecksumMismatch
		out.Err = fmt.Errorf("%w: %s", shelfkit.ErrChecksumMismatch, out.Source)
		return out
	}

	if err := m.store.Delete(ctx, out.Source); err != nil {
		// Both copies are intact and verified; re-running cleans this up.
		out.Reason = ReasonRenameFailed
		out.Err = fmt.Errorf("delete source: %w", err)
		return out
	}

	if err := m.store.SetTags(ctx, out.Destination, tags); err != nil {
		out.Reason = ReasonTagSetFailed
		out.Err = err
	}
	return out
}
