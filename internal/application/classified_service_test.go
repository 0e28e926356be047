package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/domain/repository"
)

func newTestClassifiedService() (*ClassifiedService, *fakeClassifiedRepo, *fakeBackend, *fakeNotifier) {
	repo := newFakeClassifiedRepo()
	backend := &fakeBackend{}
	notifier := &fakeNotifier{}
	svc := NewClassifiedService(repo, backend, notifier, nil, quietLogger())
	return svc, repo, backend, notifier
}

func upload(name string) Upload {
	return Upload{Filename: name, ContentType: "image/jpeg", Reader: strings.NewReader("bytes")}
}

func TestCreateStartsAsDraft(t *testing.T) {
	svc, _, _, notifier := newTestClassifiedService()

	c, err := svc.Create(context.Background(), "user-1", CreateClassifiedInput{
		Title:       "Couch",
		Description: "Three seats",
		Category:    "furniture",
		Visibility:  entity.VisibilityAllCities,
		Images:      []Upload{upload("a.jpg"), upload("b.png")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Status != entity.StatusDraft {
		t.Fatalf("status %q, want draft", c.Status)
	}
	if len(c.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(c.Images))
	}
	if c.Images[0].SortOrder != 0 || c.Images[1].SortOrder != 1 {
		t.Fatalf("sort orders %d/%d, want 0/1", c.Images[0].SortOrder, c.Images[1].SortOrder)
	}
	if notifier.classifiedsCount() != 1 {
		t.Fatalf("got %d broadcasts, want 1", notifier.classifiedsCount())
	}
}

func TestCreateRejectsUnknownVisibility(t *testing.T) {
	svc, _, _, _ := newTestClassifiedService()

	_, err := svc.Create(context.Background(), "user-1", CreateClassifiedInput{
		Title:      "Couch",
		Visibility: "everywhere",
	})
	if !errors.Is(err, ErrInvalidVisibility) {
		t.Fatalf("want ErrInvalidVisibility, got %v", err)
	}
}

func TestUnlinkedSelectedCitiesAdIsInvisible(t *testing.T) {
	svc, repo, _, _ := newTestClassifiedService()

	c, err := svc.Create(context.Background(), "user-1", CreateClassifiedInput{
		Title:      "Tutoring",
		Category:   "services",
		Visibility: entity.VisibilitySelectedCities,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.UpdateStatus(context.Background(), c.ID, entity.StatusPublished); err != nil {
		t.Fatalf("publish: %v", err)
	}

	all, err := svc.ListPublished(context.Background(), repository.PublishedFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("an ad with no city links must not appear in the unfiltered listing, got %d", len(all))
	}
	byCity, err := svc.ListPublished(context.Background(), repository.PublishedFilter{CityID: "city-1"})
	if err != nil {
		t.Fatalf("list by city: %v", err)
	}
	if len(byCity) != 0 {
		t.Fatalf("an ad with no city links must not appear in any city, got %d", len(byCity))
	}

	if err := repo.ReplaceCityLinks(context.Background(), c.ID, []string{"city-1"}); err != nil {
		t.Fatalf("link: %v", err)
	}
	all, _ = svc.ListPublished(context.Background(), repository.PublishedFilter{})
	byCity, _ = svc.ListPublished(context.Background(), repository.PublishedFilter{CityID: "city-1"})
	other, _ := svc.ListPublished(context.Background(), repository.PublishedFilter{CityID: "city-2"})
	if len(all) != 1 || len(byCity) != 1 {
		t.Fatalf("linked ad should be listed everywhere it belongs, got %d/%d", len(all), len(byCity))
	}
	if len(other) != 0 {
		t.Fatalf("linked ad leaked into an unlinked city, got %d", len(other))
	}
}

func TestCityFilterScopesListing(t *testing.T) {
	svc, repo, _, _ := newTestClassifiedService()

	everywhere, _ := svc.Create(context.Background(), "user-1", CreateClassifiedInput{
		Title:      "Moving sale",
		Visibility: entity.VisibilityAllCities,
	})
	scoped, _ := svc.Create(context.Background(), "user-1", CreateClassifiedInput{
		Title:      "Yard work",
		Visibility: entity.VisibilitySelectedCities,
		CityIDs:    []string{"city-1"},
	})
	for _, id := range []string{everywhere.ID, scoped.ID} {
		if _, err := repo.UpdateStatus(context.Background(), id, entity.StatusPublished); err != nil {
			t.Fatalf("publish %s: %v", id, err)
		}
	}

	inCity, err := svc.ListPublished(context.Background(), repository.PublishedFilter{CityID: "city-1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(inCity) != 2 {
		t.Fatalf("city-1 sees both ads, got %d", len(inCity))
	}
	elsewhere, _ := svc.ListPublished(context.Background(), repository.PublishedFilter{CityID: "city-9"})
	if len(elsewhere) != 1 || elsewhere[0].ID != everywhere.ID {
		t.Fatalf("city-9 sees only the all_cities ad, got %+v", elsewhere)
	}
}

func TestUpdateVisibilityReplacesCityLinks(t *testing.T) {
	svc, repo, _, _ := newTestClassifiedService()

	c, err := svc.Create(context.Background(), "user-1", CreateClassifiedInput{
		Title:      "Bike",
		Visibility: entity.VisibilitySelectedCities,
		CityIDs:    []string{"city-1", "city-2"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(c.SelectedCities) != 2 {
		t.Fatalf("got %d linked cities, want 2", len(c.SelectedCities))
	}

	vis := entity.VisibilitySelectedCities
	updated, err := svc.Update(context.Background(), "user-1", c.ID, UpdateClassifiedInput{
		Visibility: &vis,
		CityIDs:    []string{"city-3"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.SelectedCities) != 1 || updated.SelectedCities[0].ID != "city-3" {
		t.Fatalf("links not replaced, got %+v", updated.SelectedCities)
	}

	allCities := entity.VisibilityAllCities
	updated, err = svc.Update(context.Background(), "user-1", c.ID, UpdateClassifiedInput{
		Visibility: &allCities,
		CityIDs:    []string{"city-4"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.SelectedCities) != 0 {
		t.Fatalf("all_cities must clear city links, got %+v", updated.SelectedCities)
	}
	if len(repo.links[c.ID]) != 0 {
		t.Fatalf("stored links survived the visibility change: %v", repo.links[c.ID])
	}
}

func TestUpdateAppendsImagesAfterHighestOrder(t *testing.T) {
	svc, _, _, _ := newTestClassifiedService()

	c, err := svc.Create(context.Background(), "user-1", CreateClassifiedInput{
		Title:      "Desk",
		Visibility: entity.VisibilityAllCities,
		Images:     []Upload{upload("a.jpg"), upload("b.jpg")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(context.Background(), "user-1", c.ID, UpdateClassifiedInput{
		NewImages: []Upload{upload("c.jpg")},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Images) != 3 {
		t.Fatalf("got %d images, want 3", len(updated.Images))
	}
	last := updated.Images[len(updated.Images)-1]
	if last.SortOrder != 2 {
		t.Fatalf("new image got order %d, want 2", last.SortOrder)
	}
}

func TestUpdateRemovesImageRowsAndObjects(t *testing.T) {
	svc, _, backend, _ := newTestClassifiedService()

	c, err := svc.Create(context.Background(), "user-1", CreateClassifiedInput{
		Title:      "Lamp",
		Visibility: entity.VisibilityAllCities,
		Images:     []Upload{upload("a.jpg"), upload("b.jpg")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	victim := c.Images[0]

	updated, err := svc.Update(context.Background(), "user-1", c.ID, UpdateClassifiedInput{
		RemoveImageIDs: []string{victim.ID},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Images) != 1 {
		t.Fatalf("got %d images, want 1", len(updated.Images))
	}
	if len(backend.removed) != 1 || backend.removed[0] != victim.FilePath {
		t.Fatalf("backing object not removed, removed=%v want %q", backend.removed, victim.FilePath)
	}
}

func TestUpdateByNonOwnerIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestClassifiedService()

	c, err := svc.Create(context.Background(), "user-1", CreateClassifiedInput{
		Title:      "Chair",
		Visibility: entity.VisibilityAllCities,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Stolen chair"
	_, err = svc.Update(context.Background(), "user-2", c.ID, UpdateClassifiedInput{Title: &title})
	if !errors.Is(err, ErrClassifiedNotFound) {
		t.Fatalf("want ErrClassifiedNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "user-2", c.ID); !errors.Is(err, ErrClassifiedNotFound) {
		t.Fatalf("want ErrClassifiedNotFound on foreign delete, got %v", err)
	}
}

func TestDeleteCleansUpStorage(t *testing.T) {
	svc, repo, backend, notifier := newTestClassifiedService()

	c, err := svc.Create(context.Background(), "user-1", CreateClassifiedInput{
		Title:      "Table",
		Visibility: entity.VisibilityAllCities,
		Images:     []Upload{upload("a.jpg"), upload("b.jpg")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), "user-1", c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), c.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("row should be gone, got %v", err)
	}
	if len(backend.removed) != 2 {
		t.Fatalf("got %d removed objects, want 2", len(backend.removed))
	}
	if len(backend.cleared) != 1 || backend.cleared[0] != c.ID {
		t.Fatalf("namespace not cleared: %v", backend.cleared)
	}
	if notifier.classifiedsCount() != 2 {
		t.Fatalf("got %d broadcasts, want 2 (create and delete)", notifier.classifiedsCount())
	}
}

func TestGetPublishedHidesDrafts(t *testing.T) {
	svc, _, _, _ := newTestClassifiedService()

	c, err := svc.Create(context.Background(), "user-1", CreateClassifiedInput{
		Title:      "Sofa",
		Visibility: entity.VisibilityAllCities,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.GetPublished(context.Background(), c.ID); !errors.Is(err, ErrClassifiedNotFound) {
		t.Fatalf("draft must read as absent, got %v", err)
	}
}
