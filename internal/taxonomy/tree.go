// Package taxonomy keeps the category hierarchy acyclic, depth-bounded, and
// uniquely identified. It is pure validation logic over a read-only view of
// the tree; the caller performs the actual writes inside its own transaction.
package taxonomy

import (
	"context"
	"fmt"

	"github.com/mughouse/mughouse-server/internal/errors"
	"github.com/mughouse/mughouse-server/internal/util"
)

// MaxDepth is the deepest allowed category chain, root counted as depth 1.
// Drinkware -> Mugs -> Travel Mugs is the deepest the storefront renders.
const MaxDepth = 3

// maxSlugAttempts bounds the duplicate-slug suffix probe so pathological
// input cannot loop forever.
const maxSlugAttempts = 50

// NodeSource is the read-only view of the category tree the validator needs.
// Implementations must return errors.ErrNotFound for unknown node IDs and
// always read current state, never a cached shape.
type NodeSource interface {
	// ParentID returns the parent of a node, or "" for a root node.
	ParentID(ctx context.Context, nodeID string) (string, error)
	// SlugExists reports whether any node already uses the slug.
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Tree validates structural mutations of the category hierarchy.
type Tree struct {
	nodes NodeSource
}

// New creates a tree validator over the given node source.
func New(nodes NodeSource) *Tree {
	return &Tree{nodes: nodes}
}

// Depth walks the parent chain from nodeID to the root and returns the chain
// length, root counted as 1.
//
// The walk is iterative and bounded: at most MaxDepth+1 hops with a visited
// guard, so corrupted data (a cycle already on disk) cannot hang the server.
// Corrupted or over-deep chains fail closed with a max-depth error.
func (t *Tree) Depth(ctx context.Context, nodeID string) (int, error) {
	seen := make(map[string]struct{}, MaxDepth+1)
	depth := 0
	cur := nodeID

	for cur != "" {
		if _, ok := seen[cur]; ok {
			return 0, errors.MaxDepthExceededf("category %s has a non-terminating parent chain", nodeID)
		}
		seen[cur] = struct{}{}

		depth++
		if depth > MaxDepth {
			return 0, errors.MaxDepthExceededf("category %s exceeds the maximum depth of %d", nodeID, MaxDepth)
		}

		parent, err := t.nodes.ParentID(ctx, cur)
		if err != nil {
			return 0, err
		}
		cur = parent
	}

	return depth, nil
}

// WouldCreateCycle reports whether making proposedParentID the parent of
// nodeID would close a loop: true when nodeID appears anywhere in the
// ancestor chain starting at proposedParentID, including the proposed parent
// itself. An empty nodeID (a node that does not exist yet) can never cycle.
func (t *Tree) WouldCreateCycle(ctx context.Context, nodeID, proposedParentID string) (bool, error) {
	if nodeID == "" {
		return false, nil
	}

	cur := proposedParentID
	for hops := 0; cur != ""; hops++ {
		if cur == nodeID {
			return true, nil
		}
		// Bounded walk: an ancestor chain longer than the depth limit is
		// already corrupt, so treat it as cyclic rather than reading on.
		if hops >= MaxDepth {
			return true, nil
		}
		parent, err := t.nodes.ParentID(ctx, cur)
		if err != nil {
			return false, err
		}
		cur = parent
	}

	return false, nil
}

// ValidateParentAssignment checks that nodeID may be re-parented (or, for an
// empty nodeID, created) under proposedParentID. It rejects self-parenting
// and cycles with errors.ErrCycleDetected, and assignments whose resulting
// depth would exceed MaxDepth with errors.ErrMaxDepthExceeded.
//
// Both failures are terminal validation results; callers surface them and
// never retry.
func (t *Tree) ValidateParentAssignment(ctx context.Context, nodeID, proposedParentID string) error {
	if proposedParentID == "" {
		// Becoming a root is always structurally safe.
		return nil
	}

	if nodeID != "" && nodeID == proposedParentID {
		return errors.CycleDetectedf("category %s cannot be its own parent", nodeID)
	}

	cycle, err := t.WouldCreateCycle(ctx, nodeID, proposedParentID)
	if err != nil {
		return err
	}
	if cycle {
		return errors.CycleDetectedf("category %s is an ancestor of the proposed parent %s", nodeID, proposedParentID)
	}

	parentDepth, err := t.Depth(ctx, proposedParentID)
	if err != nil {
		return err
	}
	if parentDepth+1 > MaxDepth {
		return errors.MaxDepthExceededf("parent %s is at depth %d; children would exceed the maximum depth of %d",
			proposedParentID, parentDepth, MaxDepth)
	}

	return nil
}

// AssignUniqueSlug slugifies candidate and resolves collisions by appending
// an incrementing numeric suffix: "mugs", "mugs-1", "mugs-2", ...
// Collisions are not errors; only exhausting the bounded attempt budget is.
func (t *Tree) AssignUniqueSlug(ctx context.Context, candidate string) (string, error) {
	return UniqueSlug(ctx, candidate, t.nodes.SlugExists)
}

// UniqueSlug is the suffix-probe shared by every slugged table. It is
// exported so the product catalog can reuse the same bounded resolution
// against its own slug namespace.
func UniqueSlug(ctx context.Context, candidate string, exists func(ctx context.Context, slug string) (bool, error)) (string, error) {
	base := util.Slugify(candidate)
	if base == "" {
		return "", errors.Validationf("%q produces an empty slug", candidate)
	}

	slug := base
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		taken, err := exists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, attempt)
	}

	return "", errors.Conflictf("no free slug for %q within %d attempts", base, maxSlugAttempts)
}
