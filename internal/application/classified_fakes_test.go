package application

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/domain/repository"
)

// fakeClassifiedRepo is an in-memory ClassifiedRepository with the same
// listing rules as the SQL store: published only, all_cities or a matching
// city link, and a selected_cities ad with no links in no listing at all.
type fakeClassifiedRepo struct {
	mu     sync.Mutex
	seq    int
	imgSeq int
	// order preserves insertion order for newest-first listings; links maps
	// an ad id to its city id set.
	order  []string
	ads    map[string]*entity.Classified
	links  map[string]map[string]bool
	images map[string][]entity.ClassifiedImage
}

func newFakeClassifiedRepo() *fakeClassifiedRepo {
	return &fakeClassifiedRepo{
		ads:    map[string]*entity.Classified{},
		links:  map[string]map[string]bool{},
		images: map[string][]entity.ClassifiedImage{},
	}
}

func (r *fakeClassifiedRepo) snapshot(c *entity.Classified) entity.Classified {
	cp := *c
	cp.SelectedCities = nil
	for cityID := range r.links[c.ID] {
		cp.SelectedCities = append(cp.SelectedCities, entity.City{ID: cityID})
	}
	sort.Slice(cp.SelectedCities, func(i, j int) bool {
		return cp.SelectedCities[i].ID < cp.SelectedCities[j].ID
	})
	cp.Images = append([]entity.ClassifiedImage(nil), r.images[c.ID]...)
	sort.Slice(cp.Images, func(i, j int) bool {
		return cp.Images[i].SortOrder < cp.Images[j].SortOrder
	})
	return cp
}

func (r *fakeClassifiedRepo) visibleIn(c *entity.Classified, cityID string) bool {
	if c.Visibility == entity.VisibilityAllCities {
		return true
	}
	set := r.links[c.ID]
	if cityID == "" {
		return len(set) > 0
	}
	return set[cityID]
}

func (r *fakeClassifiedRepo) ListPublished(_ context.Context, f repository.PublishedFilter) ([]entity.Classified, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Classified{}
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.ads[r.order[i]]
		if c == nil || c.Status != entity.StatusPublished {
			continue
		}
		if !r.visibleIn(c, f.CityID) {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(c.Title), q) &&
				!strings.Contains(strings.ToLower(c.Description), q) {
				continue
			}
		}
		out = append(out, r.snapshot(c))
	}
	return out, nil
}

func (r *fakeClassifiedRepo) GetPublished(_ context.Context, id string) (*entity.Classified, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.ads[id]
	if !ok || c.Status != entity.StatusPublished {
		return nil, repository.ErrNotFound
	}
	cp := r.snapshot(c)
	return &cp, nil
}

func (r *fakeClassifiedRepo) GetByID(_ context.Context, id string) (*entity.Classified, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.ads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := r.snapshot(c)
	return &cp, nil
}

func (r *fakeClassifiedRepo) ListByOwner(_ context.Context, userID string) ([]entity.Classified, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Classified{}
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.ads[r.order[i]]
		if c != nil && c.UserID == userID {
			out = append(out, r.snapshot(c))
		}
	}
	return out, nil
}

func (r *fakeClassifiedRepo) ListAll(_ context.Context) ([]entity.Classified, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Classified{}
	for i := len(r.order) - 1; i >= 0; i-- {
		if c := r.ads[r.order[i]]; c != nil {
			out = append(out, r.snapshot(c))
		}
	}
	return out, nil
}

func (r *fakeClassifiedRepo) Create(_ context.Context, in repository.ClassifiedInsert) (*entity.Classified, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := time.Now()
	c := &entity.Classified{
		ID:           fmt.Sprintf("ad-%d", r.seq),
		UserID:       in.UserID,
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		Visibility:   in.Visibility,
		Status:       entity.StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.ads[c.ID] = c
	r.order = append(r.order, c.ID)
	cp := *c
	return &cp, nil
}

func (r *fakeClassifiedRepo) Update(_ context.Context, id, ownerID string, p repository.ClassifiedPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.ads[id]
	if !ok || c.UserID != ownerID {
		return repository.ErrNotFound
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.ContactEmail != nil {
		c.ContactEmail = p.ContactEmail
	}
	if p.ContactPhone != nil {
		c.ContactPhone = p.ContactPhone
	}
	if p.Visibility != nil {
		c.Visibility = *p.Visibility
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (r *fakeClassifiedRepo) UpdateStatus(_ context.Context, id, status string) (*entity.Classified, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.ads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	cp := r.snapshot(c)
	return &cp, nil
}

func (r *fakeClassifiedRepo) Delete(_ context.Context, id, ownerID string) ([]entity.ClassifiedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.ads[id]
	if !ok || (ownerID != "" && c.UserID != ownerID) {
		return nil, repository.ErrNotFound
	}
	imgs := append([]entity.ClassifiedImage(nil), r.images[id]...)
	delete(r.ads, id)
	delete(r.links, id)
	delete(r.images, id)
	return imgs, nil
}

func (r *fakeClassifiedRepo) ReplaceCityLinks(_ context.Context, id string, cityIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ads[id]; !ok {
		return repository.ErrNotFound
	}
	set := map[string]bool{}
	for _, cityID := range cityIDs {
		set[cityID] = true
	}
	r.links[id] = set
	return nil
}

func (r *fakeClassifiedRepo) AddImages(_ context.Context, id string, imgs []repository.ImageInsert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ads[id]; !ok {
		return repository.ErrNotFound
	}
	for _, img := range imgs {
		r.imgSeq++
		r.images[id] = append(r.images[id], entity.ClassifiedImage{
			ID:        fmt.Sprintf("img-%d", r.imgSeq),
			FilePath:  img.FilePath,
			SortOrder: img.SortOrder,
		})
	}
	return nil
}

func (r *fakeClassifiedRepo) ListImages(_ context.Context, id string) ([]entity.ClassifiedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]entity.ClassifiedImage(nil), r.images[id]...)
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *fakeClassifiedRepo) RemoveImages(_ context.Context, id string, imageIDs []string) ([]entity.ClassifiedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := map[string]bool{}
	for _, imgID := range imageIDs {
		drop[imgID] = true
	}
	removed := []entity.ClassifiedImage{}
	kept := []entity.ClassifiedImage{}
	for _, img := range r.images[id] {
		if drop[img.ID] {
			removed = append(removed, img)
		} else {
			kept = append(kept, img)
		}
	}
	r.images[id] = kept
	return removed, nil
}

func (r *fakeClassifiedRepo) MaxSortOrder(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := -1
	for _, img := range r.images[id] {
		if img.SortOrder > max {
			max = img.SortOrder
		}
	}
	return max, nil
}

func (r *fakeClassifiedRepo) CountAll(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ads), nil
}

func (r *fakeClassifiedRepo) CountPublished(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.ads {
		if c.Status == entity.StatusPublished {
			n++
		}
	}
	return n, nil
}

var _ repository.ClassifiedRepository = (*fakeClassifiedRepo)(nil)

// fakeBackend records object keys instead of writing anywhere.
type fakeBackend struct {
	mu      sync.Mutex
	seq     int
	saved   []string
	removed []string
	cleared []string
	fail    error
}

func (b *fakeBackend) Save(_ context.Context, classifiedID, ext, _ string, r io.Reader) (string, error) {
	if b.fail != nil {
		return "", b.fail
	}
	if r != nil {
		_, _ = io.Copy(io.Discard, r)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	key := fmt.Sprintf("classifieds/%s/obj-%d%s", classifiedID, b.seq, ext)
	b.saved = append(b.saved, key)
	return key, nil
}

func (b *fakeBackend) Remove(_ context.Context, stored string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removed = append(b.removed, stored)
	return nil
}

func (b *fakeBackend) RemoveAll(_ context.Context, classifiedID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleared = append(b.cleared, classifiedID)
	return nil
}

// fakeNotifier counts broadcasts.
type fakeNotifier struct {
	mu          sync.Mutex
	classifieds int
	admin       int
}

func (n *fakeNotifier) ClassifiedsChanged() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.classifieds++
}

func (n *fakeNotifier) AdminChanged() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.admin++
}

func (n *fakeNotifier) classifiedsCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.classifieds
}
