// Package favorites coordinates the two-call favourites update: the user's
// favourites list and the denormalized counter on the item live behind
// separate endpoints with no transaction across them. The coordinator never
// hides the inconsistency window — when the list update lands but the
// counter bump fails, the caller gets the updated list together with a
// PartialError.
package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/snailmailtreasures/marketplace/internal/logging"
	"github.com/snailmailtreasures/marketplace/pkg/storeapi"
)

var (
	ErrDuplicateFavorite = storeapi.ErrDuplicateFavorite
	ErrNotFavorited      = storeapi.ErrNotFavorited
)

// PartialError reports that the favourites list was updated but the
// counter bump on the item failed. The list update stands.
type PartialError struct {
	ItemID string
	Err    error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("favorites: list updated but counter bump for item %s failed: %v", e.ItemID, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

type api interface {
	AddFavourite(ctx context.Context, userID, itemID string) ([]string, error)
	RemoveFavourite(ctx context.Context, userID, itemID string) ([]string, error)
	BumpFavoriteCount(ctx context.Context, itemID string, delta int) error
}

type Coordinator struct {
	Client api
}

func NewCoordinator(client *storeapi.Client) *Coordinator {
	return &Coordinator{Client: client}
}

// Add appends itemID to the user's favourites and bumps the item counter.
// A duplicate fails with ErrDuplicateFavorite before any write. On counter
// failure the returned list is valid and the error is a *PartialError.
func (c *Coordinator) Add(ctx context.Context, userID, itemID string) ([]string, error) {
	list, err := c.Client.AddFavourite(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := c.Client.BumpFavoriteCount(ctx, itemID, 1); err != nil {
		logging.FromContext(ctx).Warn("favorite counter bump failed after list update",
			"item_id", itemID, "user_id", userID, "error", err)
		return list, &PartialError{ItemID: itemID, Err: err}
	}

	return list, nil
}

// Remove mirrors Add: ErrNotFavorited when the item is absent, a
// *PartialError when the decrement fails after the list update.
func (c *Coordinator) Remove(ctx context.Context, userID, itemID string) ([]string, error) {
	list, err := c.Client.RemoveFavourite(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := c.Client.BumpFavoriteCount(ctx, itemID, -1); err != nil {
		logging.FromContext(ctx).Warn("favorite counter bump failed after list update",
			"item_id", itemID, "user_id", userID, "error", err)
		return list, &PartialError{ItemID: itemID, Err: err}
	}

	return list, nil
}

// IsPartial reports whether err is the observable partial-failure outcome.
func IsPartial(err error) bool {
	var pe *PartialError
	return errors.As(err, &pe)
}
