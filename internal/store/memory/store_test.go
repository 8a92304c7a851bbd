package memory

import (
	"context"
	"sync"
	"testing"
)

func TestStore(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Fatal("expected missing key")
	}

	if err := s.Set(ctx, "k", map[string]int{"a": 1}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	raw, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if string(raw) != `{"a":1}` {
		t.Errorf("Get = %s", raw)
	}

	// Mutating the returned slice must not affect the store.
	raw[0] = 'X'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != `{"a":1}` {
		t.Errorf("store was mutated through Get result: %s", again)
	}

	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("Count = %d, want 0", s.Count())
	}
}

func TestStoreKeys(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.SetRaw("a:1", []byte("1"))
	s.SetRaw("a:2", []byte("2"))
	s.SetRaw("b:1", []byte("3"))

	keys, _ := s.Keys(ctx, "a:")
	if len(keys) != 2 {
		t.Errorf("Keys = %v", keys)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, "shared", i)
		}()
		go func() {
			defer wg.Done()
			_, _, _ = s.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	if _, ok, _ := s.Get(ctx, "shared"); !ok {
		t.Error("expected shared key to exist")
	}
}
