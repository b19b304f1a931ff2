package storage

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"mercator-hq/webstore/pkg/cart"
)

// backends runs a test against every store implementation.
func backends(t *testing.T, fn func(t *testing.T, store cart.Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		store := NewMemoryStore()
		defer store.Close()
		fn(t, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		store, err := NewSQLiteStore(SQLiteConfig{
			Path: filepath.Join(t.TempDir(), "carts.db"),
		})
		if err != nil {
			t.Fatalf("NewSQLiteStore: %v", err)
		}
		defer store.Close()
		fn(t, store)
	})
}

func TestStore_CreateAndGetOpenCart(t *testing.T) {
	backends(t, func(t *testing.T, store cart.Store) {
		ctx := context.Background()

		c, err := store.CreateOpenCart(ctx, "alice")
		if err != nil {
			t.Fatalf("CreateOpenCart: %v", err)
		}
		if c.ID == 0 {
			t.Error("Expected assigned cart ID")
		}
		if c.Status != cart.StatusOpen {
			t.Errorf("Expected Open status, got %s", c.Status)
		}

		got, err := store.GetOpenCart(ctx, "alice")
		if err != nil {
			t.Fatalf("GetOpenCart: %v", err)
		}
		if got == nil || got.ID != c.ID {
			t.Errorf("GetOpenCart returned %+v, want cart %d", got, c.ID)
		}

		// Unknown user has no cart, and that is not an error
		got, err = store.GetOpenCart(ctx, "nobody")
		if err != nil {
			t.Fatalf("GetOpenCart: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for unknown user, got %+v", got)
		}
	})
}

func TestStore_SingleOpenCartPerUser(t *testing.T) {
	backends(t, func(t *testing.T, store cart.Store) {
		ctx := context.Background()

		if _, err := store.CreateOpenCart(ctx, "alice"); err != nil {
			t.Fatalf("CreateOpenCart: %v", err)
		}

		_, err := store.CreateOpenCart(ctx, "alice")
		if err != cart.ErrOpenCartExists {
			t.Errorf("Expected ErrOpenCartExists, got %v", err)
		}

		// A different user is unaffected
		if _, err := store.CreateOpenCart(ctx, "bob"); err != nil {
			t.Errorf("CreateOpenCart for bob: %v", err)
		}
	})
}

func TestStore_SecondOpenCartAfterSubmit(t *testing.T) {
	backends(t, func(t *testing.T, store cart.Store) {
		ctx := context.Background()

		first, err := store.CreateOpenCart(ctx, "alice")
		if err != nil {
			t.Fatalf("CreateOpenCart: %v", err)
		}

		first.Status = cart.StatusSubmitted
		if err := store.UpdateCart(ctx, first); err != nil {
			t.Fatalf("UpdateCart: %v", err)
		}

		// The invariant constrains Open carts only
		second, err := store.CreateOpenCart(ctx, "alice")
		if err != nil {
			t.Fatalf("CreateOpenCart after submit: %v", err)
		}
		if second.ID == first.ID {
			t.Error("New open cart reused the submitted cart's identity")
		}
	})
}

func TestStore_UpdateCartPersistsItems(t *testing.T) {
	backends(t, func(t *testing.T, store cart.Store) {
		ctx := context.Background()

		c, err := store.CreateOpenCart(ctx, "alice")
		if err != nil {
			t.Fatalf("CreateOpenCart: %v", err)
		}

		c.Items = []cart.LineItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 7, Quantity: 5},
		}
		if err := store.UpdateCart(ctx, c); err != nil {
			t.Fatalf("UpdateCart: %v", err)
		}

		got, err := store.GetCart(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetCart: %v", err)
		}
		if len(got.Items) != 2 {
			t.Fatalf("Expected 2 items, got %d", len(got.Items))
		}
		if item := got.Item(7); item == nil || item.Quantity != 5 {
			t.Errorf("Line for product 7 not persisted: %+v", item)
		}
	})
}

func TestStore_UpdateCartVersionConflict(t *testing.T) {
	backends(t, func(t *testing.T, store cart.Store) {
		ctx := context.Background()

		created, err := store.CreateOpenCart(ctx, "alice")
		if err != nil {
			t.Fatalf("CreateOpenCart: %v", err)
		}

		// Two readers load the same version
		a, err := store.GetCart(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetCart: %v", err)
		}
		b, err := store.GetCart(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetCart: %v", err)
		}

		a.Items = []cart.LineItem{{ProductID: 1, Quantity: 1}}
		if err := store.UpdateCart(ctx, a); err != nil {
			t.Fatalf("First UpdateCart: %v", err)
		}

		// The stale writer must lose, not overwrite
		b.Items = []cart.LineItem{{ProductID: 2, Quantity: 9}}
		err = store.UpdateCart(ctx, b)
		if !cart.IsConflict(err) {
			t.Fatalf("Expected ConflictError for stale version, got %v", err)
		}

		got, err := store.GetCart(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetCart: %v", err)
		}
		if item := got.Item(1); item == nil {
			t.Error("Winning write was lost")
		}
		if item := got.Item(2); item != nil {
			t.Error("Stale write was applied")
		}
	})
}

func TestStore_UpdateCartBumpsVersion(t *testing.T) {
	backends(t, func(t *testing.T, store cart.Store) {
		ctx := context.Background()

		c, err := store.CreateOpenCart(ctx, "alice")
		if err != nil {
			t.Fatalf("CreateOpenCart: %v", err)
		}
		before := c.Version

		c.Items = []cart.LineItem{{ProductID: 1, Quantity: 1}}
		if err := store.UpdateCart(ctx, c); err != nil {
			t.Fatalf("UpdateCart: %v", err)
		}
		if c.Version != before+1 {
			t.Errorf("Expected version %d, got %d", before+1, c.Version)
		}

		// The bumped version is current: a follow-up write succeeds
		c.Items = append(c.Items, cart.LineItem{ProductID: 2, Quantity: 1})
		if err := store.UpdateCart(ctx, c); err != nil {
			t.Errorf("Second UpdateCart with fresh version: %v", err)
		}
	})
}

func TestStore_ConcurrentCreateOpenCart(t *testing.T) {
	backends(t, func(t *testing.T, store cart.Store) {
		ctx := context.Background()

		const callers = 10

		var wg sync.WaitGroup
		var mu sync.Mutex
		created := 0
		start := make(chan struct{})

		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := store.CreateOpenCart(ctx, "alice")
				if err == nil {
					mu.Lock()
					created++
					mu.Unlock()
				} else if err != cart.ErrOpenCartExists {
					t.Errorf("CreateOpenCart: %v", err)
				}
			}()
		}

		close(start)
		wg.Wait()

		if created != 1 {
			t.Errorf("Expected exactly one creation to win, got %d", created)
		}
	})
}

func TestStore_ListSubmittedFiltersAndSorts(t *testing.T) {
	backends(t, func(t *testing.T, store cart.Store) {
		ctx := context.Background()

		ids := make([]int64, 0, 4)
		for i := 0; i < 4; i++ {
			c, err := store.CreateOpenCart(ctx, "alice")
			if err != nil {
				t.Fatalf("CreateOpenCart: %v", err)
			}
			c.Status = cart.StatusSubmitted
			if err := store.UpdateCart(ctx, c); err != nil {
				t.Fatalf("UpdateCart: %v", err)
			}
			ids = append(ids, c.ID)
			time.Sleep(2 * time.Millisecond)
		}

		// An open cart must never appear in the listing
		if _, err := store.CreateOpenCart(ctx, "alice"); err != nil {
			t.Fatalf("CreateOpenCart: %v", err)
		}

		page, err := store.ListSubmitted(ctx, "alice", cart.ListQuery{Page: 1})
		if err != nil {
			t.Fatalf("ListSubmitted: %v", err)
		}
		if page.TotalCount != 4 {
			t.Errorf("Expected 4 submitted, got %d", page.TotalCount)
		}
		if len(page.Orders) != cart.PageSize {
			t.Fatalf("Expected page of %d, got %d", cart.PageSize, len(page.Orders))
		}
		if page.Orders[0].ID != ids[0] {
			t.Errorf("Default sort: expected oldest %d first, got %d", ids[0], page.Orders[0].ID)
		}

		desc, err := store.ListSubmitted(ctx, "alice",
			cart.ListQuery{SortOrder: cart.SortDateDesc, Page: 1})
		if err != nil {
			t.Fatalf("ListSubmitted desc: %v", err)
		}
		if desc.Orders[0].ID != ids[3] {
			t.Errorf("Descending sort: expected newest %d first, got %d", ids[3], desc.Orders[0].ID)
		}
	})
}

func TestStore_ListSubmittedNumericSearch(t *testing.T) {
	backends(t, func(t *testing.T, store cart.Store) {
		ctx := context.Background()

		var target int64
		for i := 0; i < 3; i++ {
			c, err := store.CreateOpenCart(ctx, "alice")
			if err != nil {
				t.Fatalf("CreateOpenCart: %v", err)
			}
			c.Status = cart.StatusSubmitted
			if err := store.UpdateCart(ctx, c); err != nil {
				t.Fatalf("UpdateCart: %v", err)
			}
			if i == 1 {
				target = c.ID
			}
		}

		page, err := store.ListSubmitted(ctx, "alice", cart.ListQuery{
			Search: strconv.FormatInt(target, 10),
			Page:   1,
		})
		if err != nil {
			t.Fatalf("ListSubmitted: %v", err)
		}
		if page.TotalCount != 1 || page.Orders[0].ID != target {
			t.Errorf("Numeric search: expected only order %d, got %+v", target, page.Orders)
		}

		// Non-numeric search is a no-op filter
		page, err = store.ListSubmitted(ctx, "alice", cart.ListQuery{
			Search: "abc",
			Page:   1,
		})
		if err != nil {
			t.Fatalf("ListSubmitted: %v", err)
		}
		if page.TotalCount != 3 {
			t.Errorf("Non-numeric search filtered: got %d of 3", page.TotalCount)
		}
	})
}

func TestStore_DeleteCart(t *testing.T) {
	backends(t, func(t *testing.T, store cart.Store) {
		ctx := context.Background()

		c, err := store.CreateOpenCart(ctx, "alice")
		if err != nil {
			t.Fatalf("CreateOpenCart: %v", err)
		}
		c.Items = []cart.LineItem{{ProductID: 1, Quantity: 1}}
		if err := store.UpdateCart(ctx, c); err != nil {
			t.Fatalf("UpdateCart: %v", err)
		}

		if err := store.DeleteCart(ctx, c.ID); err != nil {
			t.Fatalf("DeleteCart: %v", err)
		}

		got, err := store.GetCart(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetCart: %v", err)
		}
		if got != nil {
			t.Error("Cart survived deletion")
		}

		// Deleting again is a no-op
		if err := store.DeleteCart(ctx, c.ID); err != nil {
			t.Errorf("Repeated DeleteCart: %v", err)
		}
	})
}

func TestStore_PruneAbandoned(t *testing.T) {
	backends(t, func(t *testing.T, store cart.Store) {
		ctx := context.Background()

		open, err := store.CreateOpenCart(ctx, "alice")
		if err != nil {
			t.Fatalf("CreateOpenCart: %v", err)
		}

		submitted, err := store.CreateOpenCart(ctx, "bob")
		if err != nil {
			t.Fatalf("CreateOpenCart: %v", err)
		}
		submitted.Status = cart.StatusSubmitted
		if err := store.UpdateCart(ctx, submitted); err != nil {
			t.Fatalf("UpdateCart: %v", err)
		}

		time.Sleep(5 * time.Millisecond)

		deleted, err := store.PruneAbandoned(ctx, time.Now())
		if err != nil {
			t.Fatalf("PruneAbandoned: %v", err)
		}
		if deleted != 1 {
			t.Errorf("Expected 1 pruned cart, got %d", deleted)
		}

		if got, _ := store.GetCart(ctx, open.ID); got != nil {
			t.Error("Open cart survived pruning")
		}
		if got, _ := store.GetCart(ctx, submitted.ID); got == nil {
			t.Error("Submitted order was pruned")
		}
	})
}
