package inline

import "testing"

func TestBufferInlineOverflow(t *testing.T) {
	b := New[int, Cap2]()
	if !b.IsInline() {
		t.Fatal("new buffer should start inline")
	}

	b.Push(1)
	b.Push(2)
	if !b.IsInline() {
		t.Fatal("buffer should still be inline at exactly capacity")
	}

	if err := b.Push(3); err != nil {
		t.Fatalf("unexpected error on overflow push: %v", err)
	}
	if b.IsInline() {
		t.Fatal("buffer should have spilled to heap after third push")
	}
	if b.Len() != 3 {
		t.Fatalf("len = %d, want 3", b.Len())
	}
	for i, want := range []int{1, 2, 3} {
		if got := b.At(i); got != want {
			t.Errorf("At(%d) = %d, want %d", i, got, want)
		}
	}

	b.Pop()
	if b.Len() != 2 {
		t.Fatalf("len after pop = %d, want 2", b.Len())
	}
	if b.IsInline() {
		t.Fatal("buffer should remain heap-backed after popping back to inline-sized length")
	}

	b.Clear()
	if !b.IsInline() {
		t.Fatal("clear should return buffer to inline state")
	}
	if b.Len() != 0 {
		t.Fatalf("len after clear = %d, want 0", b.Len())
	}

	b.Push(9)
	if !b.IsInline() {
		t.Fatal("push after clear should stay inline")
	}
}

func TestBufferStaysInlineAtCapacity(t *testing.T) {
	b := New[int, Cap4]()
	for i := 0; i < 4; i++ {
		if err := b.Push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if !b.IsInline() {
		t.Fatal("buffer at exactly capacity should still be inline")
	}
	if got := b.Slice(); len(got) != 4 {
		t.Fatalf("slice len = %d, want 4", len(got))
	}
}
