package records

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newBadgerStore(t *testing.T) Store {
	t.Helper()
	s, err := NewBadger(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"badger": newBadgerStore(t),
		"memory": NewMemory(),
	}
}

func TestStoreGetPutDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get missing = %v, want ErrNotFound", err)
			}
			created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			rec := &Interview{
				ID:         "a",
				UserName:   "Ada",
				TargetRole: "SRE",
				JobLevel:   JobLevelSenior,
				Type:       TypeTechnical,
				Status:     StatusSetupCompleted,
				CreatedAt:  created,
				UpdatedAt:  created,
			}
			if err := s.Put(ctx, rec); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := s.Get(ctx, "a")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.UserName != "Ada" || got.JobLevel != JobLevelSenior || !got.CreatedAt.Equal(created) {
				t.Errorf("Get = %+v", got)
			}

			got.UserName = "mutated"
			again, _ := s.Get(ctx, "a")
			if again.UserName != "Ada" {
				t.Error("store shares state with callers")
			}

			if err := s.Delete(ctx, "a"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := s.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"c", "a", "b"} {
				if err := s.Put(ctx, &Interview{ID: id, TargetRole: "r"}); err != nil {
					t.Fatal(err)
				}
			}
			var ids []string
			for rec, err := range s.List(ctx) {
				if err != nil {
					t.Fatalf("List: %v", err)
				}
				ids = append(ids, rec.ID)
			}
			if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
				t.Errorf("List = %v, want [a b c]", ids)
			}

			n := 0
			for range s.List(ctx) {
				n++
				break
			}
			if n != 1 {
				t.Errorf("early break yielded %d", n)
			}
		})
	}
}
