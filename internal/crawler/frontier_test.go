package crawler

import (
	"reflect"
	"testing"
)

func TestFrontier(t *testing.T) {
	t.Parallel()

	t.Run("pops in FIFO order", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("a")
		f.Push("b")
		f.Push("c")

		var got []string
		for {
			u, ok := f.Pop()
			if !ok {
				break
			}
			got = append(got, u)
		}
		if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
			t.Errorf("pop order = %v, want %v", got, want)
		}
	})

	t.Run("rejects pending and visited URLs", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("a")
		if f.Push("a") {
			t.Error("pending URL must not be enqueued twice")
		}
		if _, ok := f.Pop(); !ok {
			t.Fatal("expected a URL")
		}
		if f.Push("a") {
			t.Error("visited URL must not be enqueued again")
		}
		if !f.Push("b") {
			t.Error("new URL should be enqueued")
		}
		if f.Len() != 1 || f.Visited() != 1 {
			t.Errorf("expected 1 pending and 1 visited, got %d and %d", f.Len(), f.Visited())
		}
	})

	t.Run("URLs differing only by a trailing slash are distinct", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("http://x/a")
		if !f.Push("http://x/a/") {
			t.Error("expected exact string comparison")
		}
	})

	t.Run("duplicate seeds are enqueued once", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("a", "a", "b")
		if f.Len() != 2 {
			t.Errorf("expected 2 pending, got %d", f.Len())
		}
	})

	t.Run("unpop restores the head", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("a", "b")
		f.Pop()
		f.Unpop()
		if got := f.Pending(); !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Errorf("Pending() = %v", got)
		}

		empty := NewFrontier()
		empty.Unpop()
		if empty.Len() != 0 || empty.Visited() != 0 {
			t.Error("unpop on an untouched frontier must be a no-op")
		}
	})

	t.Run("pending is a copy", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("a")
		p := f.Pending()
		p[0] = "changed"
		if u, _ := f.Pop(); u != "a" {
			t.Errorf("frontier was modified through Pending(): %q", u)
		}
	})

	t.Run("known covers pending and visited", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("a", "b")
		f.Pop()
		if !f.Known("a") || !f.Known("b") || f.Known("c") {
			t.Error("unexpected Known() result")
		}
	})
}

func TestProgress(t *testing.T) {
	t.Parallel()

	p := Progress{Visited: 1, Pending: 3}
	if p.Known() != 4 {
		t.Errorf("Known() = %d, want 4", p.Known())
	}
	if p.Fraction() != 0.25 {
		t.Errorf("Fraction() = %v, want 0.25", p.Fraction())
	}
	if (Progress{}).Fraction() != 1 {
		t.Error("empty progress should be complete")
	}
}
