package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jsamuelsen11/go-mediate/internal/adapters/store/memory"
	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

func testRecord(id, tenantID, token string) ports.Record {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	return ports.Record{
		EntityType: "priority",
		ID:         id,
		TenantID:   tenantID,
		Payload:    []byte(`{"name":"High"}`),
		Token:      token,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  "actor-1",
		UpdatedBy:  "actor-1",
	}
}

func TestInsertAndFindByID(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()

	if err := s.Insert(ctx, testRecord("p1", "t1", "tok1")); err != nil {
		t.Fatalf("Insert error = %v", err)
	}

	rec, err := s.FindByID(ctx, "priority", "t1", "p1")
	if err != nil {
		t.Fatalf("FindByID error = %v", err)
	}
	if rec.Token != "tok1" {
		t.Errorf("Token = %q, want %q", rec.Token, "tok1")
	}
	if string(rec.Payload) != `{"name":"High"}` {
		t.Errorf("Payload = %s, want stored payload", rec.Payload)
	}
}

func TestInsert_DuplicateConflicts(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()

	if err := s.Insert(ctx, testRecord("p1", "t1", "tok1")); err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	if err := s.Insert(ctx, testRecord("p1", "t1", "tok2")); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate Insert error = %v, want ErrConflict", err)
	}
}

func TestFindByID_TenantScoped(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()

	if err := s.Insert(ctx, testRecord("p1", "t1", "tok1")); err != nil {
		t.Fatalf("Insert error = %v", err)
	}

	if _, err := s.FindByID(ctx, "priority", "t2", "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-tenant FindByID error = %v, want ErrNotFound", err)
	}
	if _, err := s.FindByID(ctx, "other", "t1", "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-type FindByID error = %v, want ErrNotFound", err)
	}
}

func TestUpdateWithTokenCheck(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()

	if err := s.Insert(ctx, testRecord("p1", "t1", "tok1")); err != nil {
		t.Fatalf("Insert error = %v", err)
	}

	updated := testRecord("p1", "t1", "tok2")
	updated.Payload = []byte(`{"name":"Critical"}`)
	if err := s.UpdateWithTokenCheck(ctx, updated, "tok1"); err != nil {
		t.Fatalf("UpdateWithTokenCheck error = %v", err)
	}

	rec, err := s.FindByID(ctx, "priority", "t1", "p1")
	if err != nil {
		t.Fatalf("FindByID error = %v", err)
	}
	if rec.Token != "tok2" {
		t.Errorf("Token = %q, want rotated %q", rec.Token, "tok2")
	}
	if string(rec.Payload) != `{"name":"Critical"}` {
		t.Errorf("Payload = %s, want updated payload", rec.Payload)
	}
}

func TestUpdateWithTokenCheck_StaleToken(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()

	if err := s.Insert(ctx, testRecord("p1", "t1", "tok1")); err != nil {
		t.Fatalf("Insert error = %v", err)
	}

	err := s.UpdateWithTokenCheck(ctx, testRecord("p1", "t1", "tok2"), "wrong")
	var cErr *domain.ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("error = %v, want *ConflictError", err)
	}

	// The stale write left the record untouched.
	rec, err := s.FindByID(ctx, "priority", "t1", "p1")
	if err != nil {
		t.Fatalf("FindByID error = %v", err)
	}
	if rec.Token != "tok1" {
		t.Errorf("Token = %q, want unchanged %q", rec.Token, "tok1")
	}
}

func TestUpdateWithTokenCheck_Missing(t *testing.T) {
	t.Parallel()

	s := memory.New()

	err := s.UpdateWithTokenCheck(context.Background(), testRecord("nope", "t1", "tok"), "tok")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateWithTokenCheck_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()

	if err := s.Insert(ctx, testRecord("p1", "t1", "tok0")); err != nil {
		t.Fatalf("Insert error = %v", err)
	}

	// Many writers race with the same expected token; exactly one may win.
	const writers = 16
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := testRecord("p1", "t1", "tok-new")
			errs[i] = s.UpdateWithTokenCheck(ctx, rec, "tok0")
		}(i)
	}
	wg.Wait()

	var winners int
	for _, err := range errs {
		if err == nil {
			winners++
		} else if !errors.Is(err, domain.ErrConflict) {
			t.Errorf("loser error = %v, want ErrConflict", err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}

func TestSetDeletedFlag(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()

	if err := s.Insert(ctx, testRecord("p1", "t1", "tok1")); err != nil {
		t.Fatalf("Insert error = %v", err)
	}

	if err := s.SetDeletedFlag(ctx, testRecord("p1", "t1", "tok2"), "tok1"); err != nil {
		t.Fatalf("SetDeletedFlag error = %v", err)
	}

	// Soft-deleted records read as absent.
	if _, err := s.FindByID(ctx, "priority", "t1", "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindByID after soft delete error = %v, want ErrNotFound", err)
	}

	// A second conditional write on the deleted record also reads as absent.
	err := s.UpdateWithTokenCheck(ctx, testRecord("p1", "t1", "tok3"), "tok2")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("update after soft delete error = %v, want ErrNotFound", err)
	}
}

func TestList_FiltersAndOrders(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		if err := s.Insert(ctx, testRecord(id, "t1", "tok")); err != nil {
			t.Fatalf("Insert %q error = %v", id, err)
		}
	}
	if err := s.Insert(ctx, testRecord("other-tenant", "t2", "tok")); err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	if err := s.SetDeletedFlag(ctx, testRecord("b", "t1", "tok2"), "tok"); err != nil {
		t.Fatalf("SetDeletedFlag error = %v", err)
	}

	recs, err := s.List(ctx, "priority", "t1", false)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("List = %d records, want 2", len(recs))
	}
	if recs[0].ID != "a" || recs[1].ID != "c" {
		t.Errorf("order = [%s %s], want [a c]", recs[0].ID, recs[1].ID)
	}

	withDeleted, err := s.List(ctx, "priority", "t1", true)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(withDeleted) != 3 {
		t.Errorf("List includeDeleted = %d records, want 3", len(withDeleted))
	}
}

func TestHardDelete(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()

	if err := s.Insert(ctx, testRecord("p1", "t1", "tok1")); err != nil {
		t.Fatalf("Insert error = %v", err)
	}

	if err := s.HardDelete(ctx, "priority", "t1", "p1"); err != nil {
		t.Fatalf("HardDelete error = %v", err)
	}
	if err := s.HardDelete(ctx, "priority", "t1", "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second HardDelete error = %v, want ErrNotFound", err)
	}

	recs, err := s.List(ctx, "priority", "t1", true)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("List = %d records, want 0", len(recs))
	}
}

func TestFindByID_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := memory.New()
	ctx := context.Background()

	if err := s.Insert(ctx, testRecord("p1", "t1", "tok1")); err != nil {
		t.Fatalf("Insert error = %v", err)
	}

	rec, err := s.FindByID(ctx, "priority", "t1", "p1")
	if err != nil {
		t.Fatalf("FindByID error = %v", err)
	}
	rec.Payload[0] = 'X'

	again, err := s.FindByID(ctx, "priority", "t1", "p1")
	if err != nil {
		t.Fatalf("FindByID error = %v", err)
	}
	if string(again.Payload) != `{"name":"High"}` {
		t.Error("mutating a returned payload leaked into the store")
	}
}
