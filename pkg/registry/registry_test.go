package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ideafmt/ideafmt/pkg/errors"
)

type testService struct {
	ID   int
	Name string
}

func TestNew(t *testing.T) {
	reg := New[testService]()

	if reg == nil {
		t.Fatal("New() returned nil")
	}

	if reg.Count() != 0 {
		t.Errorf("New registry should be empty, got count %d", reg.Count())
	}
}

func TestRegister(t *testing.T) {
	reg := New[testService]()

	t.Run("register valid item", func(t *testing.T) {
		err := reg.Register("svc1", testService{ID: 1, Name: "engine"})

		if err != nil {
			t.Fatalf("Register() error = %v, want nil", err)
		}

		if reg.Count() != 1 {
			t.Errorf("Count() = %d, want 1", reg.Count())
		}
	})

	t.Run("register with empty name", func(t *testing.T) {
		err := reg.Register("", testService{ID: 2})

		if !errors.IsErrorCode(err, errors.ErrInvalidInput) {
			t.Errorf("Register() with empty name should return ErrInvalidInput, got %v", err)
		}
	})

	t.Run("register duplicate", func(t *testing.T) {
		err := reg.Register("svc1", testService{ID: 3})

		if !errors.IsErrorCode(err, errors.ErrAlreadyExists) {
			t.Errorf("Register() duplicate should return ErrAlreadyExists, got %v", err)
		}
	})
}

func TestPut(t *testing.T) {
	reg := New[testService]()

	t.Run("put is idempotent", func(t *testing.T) {
		if err := reg.Put("svc", testService{ID: 1}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := reg.Put("svc", testService{ID: 2}); err != nil {
			t.Fatalf("Put() replace error = %v", err)
		}

		got, err := reg.Get("svc")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.ID != 2 {
			t.Errorf("Put() should replace, got ID %d, want 2", got.ID)
		}
		if reg.Count() != 1 {
			t.Errorf("Count() = %d, want 1", reg.Count())
		}
	})

	t.Run("put with empty name", func(t *testing.T) {
		err := reg.Put("", testService{})
		if !errors.IsErrorCode(err, errors.ErrInvalidInput) {
			t.Errorf("Put() with empty name should return ErrInvalidInput, got %v", err)
		}
	})
}

func TestGet(t *testing.T) {
	reg := New[testService]()
	_ = reg.Register("svc1", testService{ID: 1, Name: "engine"})

	t.Run("get existing item", func(t *testing.T) {
		got, err := reg.Get("svc1")

		if err != nil {
			t.Fatalf("Get() error = %v, want nil", err)
		}

		if got.ID != 1 || got.Name != "engine" {
			t.Errorf("Get() = %+v, want {1 engine}", got)
		}
	})

	t.Run("get missing item", func(t *testing.T) {
		_, err := reg.Get("missing")

		if !errors.IsErrorCode(err, errors.ErrNotFound) {
			t.Errorf("Get() missing should return ErrNotFound, got %v", err)
		}
	})
}

func TestListIsSorted(t *testing.T) {
	reg := New[int]()
	_ = reg.Register("c", 3)
	_ = reg.Register("a", 1)
	_ = reg.Register("b", 2)

	names := reg.List()
	want := []string{"a", "b", "c"}

	if len(names) != len(want) {
		t.Fatalf("List() length = %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestHasAndClear(t *testing.T) {
	reg := New[int]()
	_ = reg.Register("x", 1)

	if !reg.Has("x") {
		t.Error("Has(x) = false, want true")
	}
	if reg.Has("y") {
		t.Error("Has(y) = true, want false")
	}

	reg.Clear()

	if reg.Has("x") {
		t.Error("Has(x) after Clear() = true, want false")
	}
	if reg.Count() != 0 {
		t.Errorf("Count() after Clear() = %d, want 0", reg.Count())
	}
}

func TestConcurrentAccess(t *testing.T) {
	reg := New[int]()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = reg.Put(fmt.Sprintf("item%d", n), n)
			_ = reg.Has(fmt.Sprintf("item%d", n))
			_, _ = reg.Get(fmt.Sprintf("item%d", n))
		}(i)
	}

	wg.Wait()

	if reg.Count() != 50 {
		t.Errorf("Count() = %d, want 50", reg.Count())
	}
}
