// Package repository provides the durable ad collection.
//
// The whole catalog lives in one JSON document on local disk, the same
// layout the serving frontend consumes. Every mutation rewrites the
// document; a single writer mutex serializes mutations while readers are
// served from the last fully-written snapshot without blocking.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/adwall/adwall/internal/model"
)

// Repository errors.
var (
	ErrAdNotFound    = errors.New("ad not found")
	ErrVideoCapacity = errors.New("video capacity exceeded")
	ErrVideoIndex    = errors.New("video index out of range")
)

// AdPatch is a shallow-merge update: non-nil fields overwrite, nil fields
// are preserved.
type AdPatch struct {
	Title   *string
	Author  *string
	Content *string
	URL     *string
	Pricing *float64
	Videos  *[]string
}

// Inventory is the authoritative collection of ad records, keyed by ID and
// persisted as a single JSON document.
type Inventory struct {
	path string

	mu  sync.Mutex // serializes all mutations
	ads []model.Ad // committed state, guarded by mu

	// snapshot is the last durably-written state. Readers load it without
	// taking mu, so an in-flight write is never observed half-applied.
	snapshot atomic.Pointer[[]model.Ad]
}

// NewInventory opens (or initializes) the inventory at path. A missing
// file starts an empty collection; a present file is decoded and becomes
// the first reader snapshot.
func NewInventory(path string) (*Inventory, error) {
	inv := &Inventory{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		inv.ads = []model.Ad{}
	case err != nil:
		return nil, fmt.Errorf("read inventory: %w", err)
	default:
		if err := json.Unmarshal(data, &inv.ads); err != nil {
			return nil, fmt.Errorf("decode inventory: %w", err)
		}
	}

	inv.publish(inv.ads)
	return inv, nil
}

// List returns a copy of every ad in insertion order.
func (inv *Inventory) List(ctx context.Context) []model.Ad {
	snap := *inv.snapshot.Load()
	ads := make([]model.Ad, 0, len(snap))
	for _, ad := range snap {
		ads = append(ads, ad.Clone())
	}
	return ads
}

// Get returns the ad with the given ID.
func (inv *Inventory) Get(ctx context.Context, id string) (model.Ad, error) {
	for _, ad := range *inv.snapshot.Load() {
		if ad.ID == id {
			return ad.Clone(), nil
		}
	}
	return model.Ad{}, ErrAdNotFound
}

// Insert assigns a fresh ID, zeroes the click counter, stamps timestamps
// and appends the record to the collection.
func (inv *Inventory) Insert(ctx context.Context, ad model.Ad) (model.Ad, error) {
	created := ad.Clone()
	created.ID = ulid.Make().String()
	created.Clicked = 0
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.Videos == nil {
		created.Videos = []string{}
	}

	err := inv.mutate(func(ads []model.Ad) ([]model.Ad, error) {
		return append(ads, created.Clone()), nil
	})
	if err != nil {
		return model.Ad{}, err
	}
	return created, nil
}

// Update applies a shallow merge of patch onto the record with the given
// ID. Patches that would push the video list over the cap are rejected.
func (inv *Inventory) Update(ctx context.Context, id string, patch AdPatch) (model.Ad, error) {
	if patch.Videos != nil && len(*patch.Videos) > model.MaxVideosPerAd {
		return model.Ad{}, ErrVideoCapacity
	}

	var updated model.Ad
	err := inv.mutate(func(ads []model.Ad) ([]model.Ad, error) {
		i := indexOf(ads, id)
		if i < 0 {
			return nil, ErrAdNotFound
		}
		ad := &ads[i]
		if patch.Title != nil {
			ad.Title = *patch.Title
		}
		if patch.Author != nil {
			ad.Author = *patch.Author
		}
		if patch.Content != nil {
			ad.Content = *patch.Content
		}
		if patch.URL != nil {
			ad.URL = *patch.URL
		}
		if patch.Pricing != nil {
			ad.Pricing = *patch.Pricing
		}
		if patch.Videos != nil {
			videos := make([]string, len(*patch.Videos))
			copy(videos, *patch.Videos)
			ad.Videos = videos
		}
		ad.UpdatedAt = time.Now().UTC()
		updated = ad.Clone()
		return ads, nil
	})
	if err != nil {
		return model.Ad{}, err
	}
	return updated, nil
}

// Remove deletes the record with the given ID.
func (inv *Inventory) Remove(ctx context.Context, id string) error {
	return inv.mutate(func(ads []model.Ad) ([]model.Ad, error) {
		i := indexOf(ads, id)
		if i < 0 {
			return nil, ErrAdNotFound
		}
		return append(ads[:i], ads[i+1:]...), nil
	})
}

// IncrementClick atomically adds one to the ad's click counter. Records
// written by older tooling may lack the counter; zero-value decoding makes
// that a zero start.
func (inv *Inventory) IncrementClick(ctx context.Context, id string) (model.Ad, error) {
	var updated model.Ad
	err := inv.mutate(func(ads []model.Ad) ([]model.Ad, error) {
		i := indexOf(ads, id)
		if i < 0 {
			return nil, ErrAdNotFound
		}
		ads[i].Clicked++
		ads[i].UpdatedAt = time.Now().UTC()
		updated = ads[i].Clone()
		return ads, nil
	})
	if err != nil {
		return model.Ad{}, err
	}
	return updated, nil
}

// AppendVideos appends asset references to the ad's video list. The cap
// check runs under the writer lock so concurrent appends cannot overshoot.
func (inv *Inventory) AppendVideos(ctx context.Context, id string, refs []string) (model.Ad, error) {
	var updated model.Ad
	err := inv.mutate(func(ads []model.Ad) ([]model.Ad, error) {
		i := indexOf(ads, id)
		if i < 0 {
			return nil, ErrAdNotFound
		}
		if !ads[i].HasVideoCapacity(len(refs)) {
			return nil, ErrVideoCapacity
		}
		ads[i].Videos = append(ads[i].Videos, refs...)
		ads[i].UpdatedAt = time.Now().UTC()
		updated = ads[i].Clone()
		return ads, nil
	})
	if err != nil {
		return model.Ad{}, err
	}
	return updated, nil
}

// RemoveVideo drops the asset reference at index from the ad's video list.
// The underlying file is untouched; copied ads may still reference it.
func (inv *Inventory) RemoveVideo(ctx context.Context, id string, index int) (model.Ad, error) {
	var updated model.Ad
	err := inv.mutate(func(ads []model.Ad) ([]model.Ad, error) {
		i := indexOf(ads, id)
		if i < 0 {
			return nil, ErrAdNotFound
		}
		if index < 0 || index >= len(ads[i].Videos) {
			return nil, ErrVideoIndex
		}
		videos := ads[i].Videos
		ads[i].Videos = append(videos[:index], videos[index+1:]...)
		ads[i].UpdatedAt = time.Now().UTC()
		updated = ads[i].Clone()
		return ads, nil
	})
	if err != nil {
		return model.Ad{}, err
	}
	return updated, nil
}

// Ping checks that the inventory's directory is reachable.
func (inv *Inventory) Ping(ctx context.Context) error {
	if _, err := os.Stat(filepath.Dir(inv.path)); err != nil {
		return fmt.Errorf("inventory dir: %w", err)
	}
	return nil
}

// mutate runs one mutation under the writer lock: clone the committed
// state, let fn transform it, persist the result, then commit it as the
// new reader snapshot. A failed persist leaves both the committed state
// and the snapshot untouched.
func (inv *Inventory) mutate(fn func(ads []model.Ad) ([]model.Ad, error)) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	working := make([]model.Ad, 0, len(inv.ads)+1)
	for _, ad := range inv.ads {
		working = append(working, ad.Clone())
	}

	next, err := fn(working)
	if err != nil {
		return err
	}

	if err := inv.persist(next); err != nil {
		return err
	}

	inv.ads = next
	inv.publish(next)
	return nil
}

// persist writes the collection to a temp file and renames it into place,
// so readers of the file on disk never see a partial document.
func (inv *Inventory) persist(ads []model.Ad) error {
	data, err := json.MarshalIndent(ads, "", "  ")
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}

	tmp := inv.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	if err := os.Rename(tmp, inv.path); err != nil {
		return fmt.Errorf("commit inventory: %w", err)
	}
	return nil
}

func (inv *Inventory) publish(ads []model.Ad) {
	snap := ads
	inv.snapshot.Store(&snap)
}

func indexOf(ads []model.Ad, id string) int {
	for i, ad := range ads {
		if ad.ID == id {
			return i
		}
	}
	return -1
}
