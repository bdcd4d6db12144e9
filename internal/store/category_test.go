package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"jobalert/internal/models"
	"jobalert/internal/slug"
)

func TestCategoryStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	desc := "Government jobs across the state"
	name := uniqueName("Haryana Jobs")
	created, err := s.Create(ctx, &models.Category{Name: name, Description: &desc})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanCategories(t, db, created.ID) })

	if created.ID == 0 {
		t.Error("expected a generated id")
	}
	if created.Slug != slug.Generate(name) {
		t.Errorf("slug: got %q, want %q", created.Slug, slug.Generate(name))
	}

	found, err := s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil || found.Name != name {
		t.Fatalf("FindByID: got %+v, want name %q", found, name)
	}
	if found.Description == nil || *found.Description != desc {
		t.Errorf("description: got %v, want %q", found.Description, desc)
	}

	byName, err := s.FindByName(ctx, name)
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if byName == nil || byName.ID != created.ID {
		t.Errorf("FindByName: got %+v", byName)
	}

	// FindByName is exact.
	other, err := s.FindByName(ctx, strings.ToUpper(name))
	if err != nil {
		t.Fatalf("FindByName upper: %v", err)
	}
	if other != nil {
		t.Error("FindByName should not match a different letter case")
	}
}

func TestCategoryStoreFindByIDMissing(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	c, err := s.FindByID(context.Background(), -1)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if c != nil {
		t.Errorf("expected nil for a missing category, got %+v", c)
	}
}

// TestCategoryStoreFindBySlug covers exact, case-insensitive and failed
// slug resolution.
func TestCategoryStoreFindBySlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	word := uniqueWord()

	t.Run("exact title case", func(t *testing.T) {
		c := testCategory(t, db, "Current Affairs "+word)
		got, err := s.FindBySlug(ctx, "current-affairs-"+strings.ToLower(word))
		if err != nil {
			t.Fatalf("FindBySlug: %v", err)
		}
		if got == nil || got.ID != c.ID {
			t.Fatalf("FindBySlug: got %+v, want id %d", got, c.ID)
		}
	})

	t.Run("case-insensitive fallback", func(t *testing.T) {
		c := testCategory(t, db, "Haryana jobs "+strings.ToLower(word))
		got, err := s.FindBySlug(ctx, "haryana-jobs-"+strings.ToLower(word))
		if err != nil {
			t.Fatalf("FindBySlug: %v", err)
		}
		if got == nil || got.ID != c.ID {
			t.Fatalf("FindBySlug: got %+v, want id %d", got, c.ID)
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		got, err := s.FindBySlug(ctx, "no-such-category-"+strings.ToLower(word))
		if err != nil {
			t.Fatalf("FindBySlug: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		testCategory(t, db, "Admit Cards "+word)
		first, err := s.FindBySlug(ctx, "admit-cards-"+strings.ToLower(word))
		if err != nil {
			t.Fatalf("FindBySlug: %v", err)
		}
		second, err := s.FindBySlug(ctx, "admit-cards-"+strings.ToLower(word))
		if err != nil {
			t.Fatalf("FindBySlug: %v", err)
		}
		if first == nil || second == nil || *first != *second {
			t.Errorf("repeated resolution differs: %+v vs %+v", first, second)
		}
	})
}

func TestCategoryStoreDuplicateName(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	name := uniqueName("Results")
	testCategory(t, db, name)

	_, err := s.Create(context.Background(), &models.Category{Name: strings.ToLower(name)})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("Create duplicate: got %v, want ErrDuplicate", err)
	}
}

func TestCategoryStoreUpdate(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()
	c := testCategory(t, db, uniqueName("Documents"))

	renamed := uniqueName("Important Documents")
	c.Name = renamed
	updated, err := s.Update(ctx, c)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != renamed {
		t.Errorf("name: got %q, want %q", updated.Name, renamed)
	}
	if !updated.UpdatedAt.After(c.CreatedAt) && !updated.UpdatedAt.Equal(c.CreatedAt) {
		t.Error("updated_at moved backwards")
	}

	missing, err := s.Update(ctx, &models.Category{ID: -1, Name: "ghost"})
	if err != nil {
		t.Fatalf("Update missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil when updating a missing category")
	}
}

// TestCategoryStoreDeleteKeepsPosts verifies that deleting a category
// leaves its posts in place, uncategorised.
func TestCategoryStoreDeleteKeepsPosts(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()
	c := testCategory(t, db, uniqueName("Yojna"))
	p := testPost(t, db, &models.Post{Title: "PM Kisan", CategoryID: &c.ID})

	if err := s.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	post, err := NewPostStore(db).FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if post == nil {
		t.Fatal("post was deleted along with its category")
	}
	if post.CategoryID != nil {
		t.Errorf("category_id: got %d, want NULL", *post.CategoryID)
	}
}

func TestCategoryStoreListCounts(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	c := testCategory(t, db, uniqueName("Answer Keys"))
	testPost(t, db, &models.Post{Title: "Key 1", CategoryID: &c.ID})
	testPost(t, db, &models.Post{Title: "Key 2", CategoryID: &c.ID})

	items, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	for _, item := range items {
		if item.ID == c.ID {
			if item.PostCount != 2 {
				t.Errorf("post_count: got %d, want 2", item.PostCount)
			}
			return
		}
	}
	t.Error("created category missing from List")
}
