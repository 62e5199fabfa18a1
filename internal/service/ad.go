// Package service provides business logic for the ad catalog.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/adwall/adwall/internal/asset"
	"github.com/adwall/adwall/internal/formconfig"
	"github.com/adwall/adwall/internal/metrics"
	"github.com/adwall/adwall/internal/model"
	"github.com/adwall/adwall/internal/ranking"
	"github.com/adwall/adwall/internal/repository"
)

// Service errors.
var (
	ErrAdNotFound           = errors.New("ad not found")
	ErrVideoNotFound        = errors.New("video not found")
	ErrVideoCapExceeded     = errors.New("video cap exceeded")
	ErrVideoIndexOutOfRange = errors.New("video index out of range")
	ErrVideoType            = errors.New("unsupported video format")
	ErrVideoTooLarge        = errors.New("video file too large")
	ErrNoVideos             = errors.New("no video files supplied")
)

// copyTitlePrefix marks copied ads the way the editing form did.
const copyTitlePrefix = "Copy-"

// DefaultMaxVideoSize caps a single uploaded video at 100 MiB.
const DefaultMaxVideoSize int64 = 100 << 20

// allowedVideoExts is the upload format allow-list.
var allowedVideoExts = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".m4v":  true,
}

// AdService orchestrates the ad lifecycle: creation, edits, copies,
// deletion, click recording and the video attach/detach flow. It enforces
// the catalog-level invariants the stores do not know about.
type AdService struct {
	inv          *repository.Inventory
	assets       *asset.Store
	schema       formconfig.Schema
	baseURL      string
	coefficient  float64
	maxVideoSize int64
	metrics      metrics.Recorder
}

// Options tunes an AdService. Zero values fall back to defaults.
type Options struct {
	// BaseURL prefixes stored asset references into servable URLs.
	BaseURL string
	// Coefficient is the ranking engagement weight; <= 0 selects
	// ranking.DefaultCoefficient.
	Coefficient float64
	// MaxVideoSize bounds one uploaded file's size in bytes.
	MaxVideoSize int64
	// Metrics receives lifecycle counters; nil installs a noop recorder.
	Metrics metrics.Recorder
}

// NewAdService creates an AdService over the given stores and form schema.
func NewAdService(inv *repository.Inventory, assets *asset.Store, schema formconfig.Schema, opts Options) *AdService {
	if opts.Coefficient <= 0 {
		opts.Coefficient = ranking.DefaultCoefficient
	}
	if opts.MaxVideoSize <= 0 {
		opts.MaxVideoSize = DefaultMaxVideoSize
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNoop()
	}
	return &AdService{
		inv:          inv,
		assets:       assets,
		schema:       schema,
		baseURL:      strings.TrimSuffix(opts.BaseURL, "/"),
		coefficient:  opts.Coefficient,
		maxVideoSize: opts.MaxVideoSize,
		metrics:      opts.Metrics,
	}
}

// Schema returns the form schema served to the editing UI.
func (s *AdService) Schema() formconfig.Schema {
	return s.schema
}

// List returns the catalog ordered by descending display score.
func (s *AdService) List(ctx context.Context) []model.Ad {
	return ranking.Rank(s.inv.List(ctx), s.coefficient)
}

// CreateAdInput defines input for creating an ad.
type CreateAdInput struct {
	Title   string
	Author  string
	Content string
	URL     string
	Pricing *float64
	Videos  []string
}

// Create validates the input against the form schema and inserts a new ad
// with a zero click counter.
func (s *AdService) Create(ctx context.Context, input CreateAdInput) (*model.Ad, error) {
	values := map[string]any{
		"title":   input.Title,
		"author":  input.Author,
		"content": input.Content,
		"url":     input.URL,
		"videos":  input.Videos,
	}
	if input.Pricing != nil {
		values["pricing"] = *input.Pricing
	}
	if err := validateFields(s.schema, values); err != nil {
		return nil, err
	}
	if len(input.Videos) > model.MaxVideosPerAd {
		return nil, ErrVideoCapExceeded
	}

	ad := model.Ad{
		Title:   input.Title,
		Author:  input.Author,
		Content: input.Content,
		URL:     input.URL,
		Videos:  input.Videos,
	}
	if input.Pricing != nil {
		ad.Pricing = *input.Pricing
	}

	created, err := s.inv.Insert(ctx, ad)
	if err != nil {
		return nil, fmt.Errorf("create ad: %w", err)
	}

	s.metrics.IncAdCreated()
	return &created, nil
}

// EditAdInput defines a partial update; nil fields are left untouched.
type EditAdInput struct {
	Title   *string
	Author  *string
	Content *string
	URL     *string
	Pricing *float64
	Videos  *[]string
}

// Edit validates the supplied fields against the form schema and merges
// them onto the existing record.
func (s *AdService) Edit(ctx context.Context, id string, patch EditAdInput) (*model.Ad, error) {
	values := make(map[string]any)
	if patch.Title != nil {
		values["title"] = *patch.Title
	}
	if patch.Author != nil {
		values["author"] = *patch.Author
	}
	if patch.Content != nil {
		values["content"] = *patch.Content
	}
	if patch.URL != nil {
		values["url"] = *patch.URL
	}
	if patch.Pricing != nil {
		values["pricing"] = *patch.Pricing
	}
	if patch.Videos != nil {
		values["videos"] = *patch.Videos
	}
	if err := validateFields(s.schema, values); err != nil {
		return nil, err
	}
	if patch.Videos != nil && len(*patch.Videos) > model.MaxVideosPerAd {
		return nil, ErrVideoCapExceeded
	}

	updated, err := s.inv.Update(ctx, id, repository.AdPatch{
		Title:   patch.Title,
		Author:  patch.Author,
		Content: patch.Content,
		URL:     patch.URL,
		Pricing: patch.Pricing,
		Videos:  patch.Videos,
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.metrics.IncAdUpdated()
	return &updated, nil
}

// Copy derives a new ad from an existing one: fresh identity, click
// counter reset, title prefixed unless the overrides replace it, and the
// video list referencing the same stored assets as the source.
func (s *AdService) Copy(ctx context.Context, sourceID string, overrides EditAdInput) (*model.Ad, error) {
	source, err := s.inv.Get(ctx, sourceID)
	if err != nil {
		return nil, translateRepoError(err)
	}

	derived := source.Clone()
	if overrides.Title != nil {
		derived.Title = *overrides.Title
	} else {
		derived.Title = copyTitlePrefix + source.Title
	}
	if overrides.Author != nil {
		derived.Author = *overrides.Author
	}
	if overrides.Content != nil {
		derived.Content = *overrides.Content
	}
	if overrides.URL != nil {
		derived.URL = *overrides.URL
	}
	if overrides.Pricing != nil {
		derived.Pricing = *overrides.Pricing
	}
	if overrides.Videos != nil {
		derived.Videos = *overrides.Videos
	}

	pricing := derived.Pricing
	created, err := s.Create(ctx, CreateAdInput{
		Title:   derived.Title,
		Author:  derived.Author,
		Content: derived.Content,
		URL:     derived.URL,
		Pricing: &pricing,
		Videos:  derived.Videos,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncAdCopied()
	return created, nil
}

// Delete removes the ad record. Stored video files are kept: copies may
// still reference them.
func (s *AdService) Delete(ctx context.Context, id string) error {
	if err := s.inv.Remove(ctx, id); err != nil {
		return translateRepoError(err)
	}
	s.metrics.IncAdDeleted()
	return nil
}

// RecordClick adds one view to the ad's click counter.
func (s *AdService) RecordClick(ctx context.Context, id string) (*model.Ad, error) {
	updated, err := s.inv.IncrementClick(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	s.metrics.IncClickRecorded()
	return &updated, nil
}

// Upload is one incoming video file.
type Upload struct {
	Name    string
	Size    int64
	Content io.Reader
}

// StoreVideos persists up to three uploaded files and returns their
// servable URLs in file order, without attaching them to any ad.
func (s *AdService) StoreVideos(ctx context.Context, uploads []Upload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, ErrNoVideos
	}
	if len(uploads) > model.MaxVideosPerAd {
		return nil, ErrVideoCapExceeded
	}
	return s.storeAll(ctx, uploads)
}

// AttachVideos stores the uploaded files and appends their URLs to the
// ad's video list in one update. All files are stored before anything is
// recorded, so a mid-batch storage failure attaches nothing.
func (s *AdService) AttachVideos(ctx context.Context, id string, uploads []Upload) (*model.Ad, error) {
	if len(uploads) == 0 {
		return nil, ErrNoVideos
	}

	ad, err := s.inv.Get(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if !ad.HasVideoCapacity(len(uploads)) {
		return nil, ErrVideoCapExceeded
	}

	urls, err := s.storeAll(ctx, uploads)
	if err != nil {
		return nil, err
	}

	updated, err := s.inv.AppendVideos(ctx, id, urls)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return &updated, nil
}

// DetachVideo removes the video reference at index from the ad. The
// underlying file stays on disk in case a copy shares the reference.
func (s *AdService) DetachVideo(ctx context.Context, id string, index int) (*model.Ad, error) {
	updated, err := s.inv.RemoveVideo(ctx, id, index)
	if err != nil {
		return nil, translateRepoError(err)
	}
	s.metrics.IncVideoDetached()
	return &updated, nil
}

// OpenVideo opens the stored bytes for an asset reference.
func (s *AdService) OpenVideo(ref string) (io.ReadSeekCloser, error) {
	rc, err := s.assets.Resolve(ref)
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) || errors.Is(err, asset.ErrInvalidRef) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return rc, nil
}

// VideoURL builds the servable URL for an asset reference.
func (s *AdService) VideoURL(ref string) string {
	return s.baseURL + "/uploads/" + ref
}

// storeAll validates every upload up front, then persists them in order.
func (s *AdService) storeAll(ctx context.Context, uploads []Upload) ([]string, error) {
	for _, up := range uploads {
		if err := s.checkUpload(up); err != nil {
			return nil, err
		}
	}

	urls := make([]string, 0, len(uploads))
	for _, up := range uploads {
		ref, err := s.assets.Store(ctx, up.Content, up.Name)
		if err != nil {
			return nil, fmt.Errorf("store video %q: %w", up.Name, err)
		}
		s.metrics.IncVideoStored()
		urls = append(urls, s.VideoURL(ref))
	}
	return urls, nil
}

func (s *AdService) checkUpload(up Upload) error {
	ext := strings.ToLower(filepath.Ext(up.Name))
	if !allowedVideoExts[ext] {
		return fmt.Errorf("%q: %w", up.Name, ErrVideoType)
	}
	if up.Size > s.maxVideoSize {
		return fmt.Errorf("%q: %w", up.Name, ErrVideoTooLarge)
	}
	return nil
}

// translateRepoError maps repository errors onto the service taxonomy.
func translateRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrAdNotFound):
		return ErrAdNotFound
	case errors.Is(err, repository.ErrVideoCapacity):
		return ErrVideoCapExceeded
	case errors.Is(err, repository.ErrVideoIndex):
		return ErrVideoIndexOutOfRange
	default:
		return err
	}
}
