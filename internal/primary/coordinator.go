// Package primary maintains the "exactly one primary item per owner"
// invariant over an owned collection. The concrete application is "exactly
// one main phone number per customer", but the coordinator's contract is
// owner-agnostic: it only speaks in owners, items, and a single boolean flag.
//
// Every mutation runs inside one database transaction spanning all affected
// rows for the owner, so a concurrent reader never observes a zero-primary
// or multi-primary state.
package primary

import (
	"context"
	"log/slog"
	"time"

	"github.com/mughouse/mughouse-server/internal/errors"
)

// Item is one member of an owned collection.
type Item struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Value     string    `json:"value"`
	Label     string    `json:"label,omitempty"`
	Main      bool      `json:"is_main"`
	CreatedAt time.Time `json:"created_at"`
}

// Changes describes a partial item update. Nil fields are left untouched.
type Changes struct {
	Value *string
	Label *string
	Main  *bool
}

// Tx is the transactional view of the collection. All methods observe and
// mutate the same uncommitted transaction; the Runner commits or rolls back
// as a unit.
type Tx interface {
	// OwnerExists reports whether the owner row exists.
	OwnerExists(ctx context.Context, ownerID string) (bool, error)
	// ListByOwner returns the owner's items ordered by creation, oldest first.
	ListByOwner(ctx context.Context, ownerID string) ([]Item, error)
	// Get returns a single item or errors.ErrNotFound.
	Get(ctx context.Context, itemID string) (*Item, error)
	// Insert adds a new item.
	Insert(ctx context.Context, item *Item) error
	// SetMain sets or clears the flag on one item.
	SetMain(ctx context.Context, itemID string, main bool) error
	// UpdateValues persists value/label changes for an item.
	UpdateValues(ctx context.Context, itemID, value, label string) error
	// Delete removes an item.
	Delete(ctx context.Context, itemID string) error
}

// Runner executes a function inside a single database transaction.
type Runner interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Coordinator applies flag-preserving mutations to owned collections.
// It validates against current in-transaction state before every write, so
// a failed validation aborts with no partial rows.
type Coordinator struct {
	db     Runner
	logger *slog.Logger
}

// NewCoordinator creates a coordinator over the given transaction runner.
func NewCoordinator(db Runner, logger *slog.Logger) *Coordinator {
	return &Coordinator{db: db, logger: logger}
}

// Add inserts a new item for the owner. The first item an owner ever gets
// becomes primary unconditionally. If wantPrimary is set and siblings exist,
// the current holder is demoted in the same transaction; otherwise the
// existing holder is left alone.
func (c *Coordinator) Add(ctx context.Context, ownerID string, item *Item, wantPrimary bool) error {
	return c.db.InTx(ctx, func(tx Tx) error {
		ok, err := tx.OwnerExists(ctx, ownerID)
		if err != nil {
			return err
		}
		if !ok {
			return errors.OwnerNotFoundf("owner %s not found", ownerID)
		}

		siblings, err := tx.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}

		item.OwnerID = ownerID
		switch {
		case len(siblings) == 0:
			// A non-empty collection must always have a primary.
			item.Main = true
		case wantPrimary:
			for _, s := range siblings {
				if s.Main {
					if err := tx.SetMain(ctx, s.ID, false); err != nil {
						return err
					}
				}
			}
			item.Main = true
		default:
			item.Main = false
		}

		return tx.Insert(ctx, item)
	})
}

// SetPrimary promotes itemID to the owner's primary, demoting every sibling,
// as one atomic clear-then-set.
func (c *Coordinator) SetPrimary(ctx context.Context, ownerID, itemID string) error {
	return c.db.InTx(ctx, func(tx Tx) error {
		ok, err := tx.OwnerExists(ctx, ownerID)
		if err != nil {
			return err
		}
		if !ok {
			return errors.OwnerNotFoundf("owner %s not found", ownerID)
		}

		siblings, err := tx.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}

		var target *Item
		for i := range siblings {
			if siblings[i].ID == itemID {
				target = &siblings[i]
				break
			}
		}
		if target == nil {
			return errors.NotFoundf("item %s not found for owner %s", itemID, ownerID)
		}

		for _, s := range siblings {
			if s.Main && s.ID != itemID {
				if err := tx.SetMain(ctx, s.ID, false); err != nil {
					return err
				}
			}
		}
		return tx.SetMain(ctx, itemID, true)
	})
}

// Remove deletes an item. The owner's last remaining item can never be
// removed. If the removed item held the flag, the oldest remaining sibling
// is promoted in the same transaction.
func (c *Coordinator) Remove(ctx context.Context, itemID string) error {
	return c.db.InTx(ctx, func(tx Tx) error {
		item, err := tx.Get(ctx, itemID)
		if err != nil {
			return err
		}

		siblings, err := tx.ListByOwner(ctx, item.OwnerID)
		if err != nil {
			return err
		}
		if len(siblings) <= 1 {
			return errors.LastItemRemoval("cannot remove the owner's only item")
		}

		if err := tx.Delete(ctx, itemID); err != nil {
			return err
		}

		if item.Main {
			if oldest := oldestOther(siblings, itemID); oldest != "" {
				if err := tx.SetMain(ctx, oldest, true); err != nil {
					return err
				}
				c.logger.Info("primary item removed, promoted oldest sibling",
					"owner_id", item.OwnerID, "removed", itemID, "promoted", oldest)
			}
		}
		return nil
	})
}

// Update applies partial changes to an item. Explicitly un-flagging the
// owner's only item is rejected; un-flagging the current holder with
// siblings present promotes the oldest sibling inside the same transaction.
func (c *Coordinator) Update(ctx context.Context, itemID string, changes Changes) error {
	return c.db.InTx(ctx, func(tx Tx) error {
		item, err := tx.Get(ctx, itemID)
		if err != nil {
			return err
		}

		siblings, err := tx.ListByOwner(ctx, item.OwnerID)
		if err != nil {
			return err
		}

		if changes.Main != nil {
			switch {
			case *changes.Main && !item.Main:
				for _, s := range siblings {
					if s.Main {
						if err := tx.SetMain(ctx, s.ID, false); err != nil {
							return err
						}
					}
				}
				if err := tx.SetMain(ctx, itemID, true); err != nil {
					return err
				}
			case !*changes.Main && item.Main:
				if len(siblings) <= 1 {
					return errors.LastItemRemoval("an owner with items must keep a primary item")
				}
				// Clear before promoting so a storage-level uniqueness
				// constraint on the flag never sees two holders.
				if err := tx.SetMain(ctx, itemID, false); err != nil {
					return err
				}
				if oldest := oldestOther(siblings, itemID); oldest != "" {
					if err := tx.SetMain(ctx, oldest, true); err != nil {
						return err
					}
				}
			}
		}

		if changes.Value != nil || changes.Label != nil {
			value := item.Value
			label := item.Label
			if changes.Value != nil {
				value = *changes.Value
			}
			if changes.Label != nil {
				label = *changes.Label
			}
			if err := tx.UpdateValues(ctx, itemID, value, label); err != nil {
				return err
			}
		}

		return nil
	})
}

// oldestOther returns the ID of the oldest item in siblings that is not
// excludeID, or "" if none. siblings is assumed oldest-first.
func oldestOther(siblings []Item, excludeID string) string {
	for _, s := range siblings {
		if s.ID != excludeID {
			return s.ID
		}
	}
	return ""
}
