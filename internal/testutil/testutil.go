// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/adwall/adwall/internal/asset"
	"github.com/adwall/adwall/internal/formconfig"
	"github.com/adwall/adwall/internal/repository"
)

// Schema returns a form schema equivalent to the shipped form-config.json.
func Schema() formconfig.Schema {
	min := 0.0
	return formconfig.Schema{
		{Field: "title", Name: "Title", Validator: formconfig.Validator{Required: true, MaxLength: 20}},
		{Field: "author", Name: "Author", Validator: formconfig.Validator{Required: true, MaxLength: 10}},
		{Field: "content", Name: "Content", Validator: formconfig.Validator{MaxLength: 100}},
		{Field: "url", Name: "Landing URL", Validator: formconfig.Validator{Required: true, MaxLength: 200, IsURL: true}},
		{Field: "pricing", Name: "Bid", Validator: formconfig.Validator{Min: &min}},
		{Field: "videos", Name: "Videos", Validator: formconfig.Validator{}},
	}
}

// NewInventory opens a fresh inventory in a per-test temp dir.
func NewInventory(t testing.TB) *repository.Inventory {
	t.Helper()
	inv, err := repository.NewInventory(filepath.Join(t.TempDir(), "ads.json"))
	if err != nil {
		t.Fatalf("open inventory: %v", err)
	}
	return inv
}

// NewAssetStore opens a fresh asset store in a per-test temp dir.
func NewAssetStore(t testing.TB) *asset.Store {
	t.Helper()
	s, err := asset.NewStore(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("open asset store: %v", err)
	}
	return s
}
