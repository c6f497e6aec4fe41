package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestValue(t *testing.T) {
	tests := []struct {
		value Value
		kind  Kind
		iface any
		text  string
	}{
		{String("A"), KindString, "A", "A"},
		{Bool(true), KindBool, true, "true"},
		{Int32(-7), KindInt32, int32(-7), "-7"},
		{Float32(0.5), KindFloat32, float32(0.5), "0.5"},
		{Value{}, KindInvalid, nil, "<invalid>"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if tt.value.Kind() != tt.kind {
				t.Errorf("Kind: got %v, want %v", tt.value.Kind(), tt.kind)
			}
			if tt.value.Interface() != tt.iface {
				t.Errorf("Interface: got %v, want %v", tt.value.Interface(), tt.iface)
			}
			if tt.value.String() != tt.text {
				t.Errorf("String: got %q, want %q", tt.value.String(), tt.text)
			}
		})
	}

	if _, ok := Int32(3).Str(); ok {
		t.Error("Str on Int32 value reported ok")
	}
	if f, ok := Float32(2).Float32(); !ok || f != 2 {
		t.Errorf("Float32: got %v, %v", f, ok)
	}
}

func buildChain(t *testing.T) (*Forest, Handle, Handle, Handle) {
	t.Helper()
	f := NewForest(3)
	a, _ := f.Add("Model", "1")
	b, _ := f.Add("Folder", "2")
	c, _ := f.Add("Part", "3")
	if err := f.Attach(a, b); err != nil {
		t.Fatalf("attach b: %v", err)
	}
	if err := f.Attach(b, c); err != nil {
		t.Fatalf("attach c: %v", err)
	}
	return f, a, b, c
}

func TestForest(t *testing.T) {
	t.Run("ChainRoots", func(t *testing.T) {
		f, a, _, c := buildChain(t)
		roots := f.Roots()
		if len(roots) != 1 || roots[0] != a {
			t.Fatalf("Roots: got %v, want [%d]", roots, a)
		}
		if n := len(f.Node(c).Children); n != 0 {
			t.Errorf("leaf children: got %d, want 0", n)
		}
	})

	t.Run("DuplicateReference", func(t *testing.T) {
		f := NewForest(0)
		if _, err := f.Add("Part", "1"); err != nil {
			t.Fatal(err)
		}
		if _, err := f.Add("Part", "1"); !errors.Is(err, ErrDuplicateReference) {
			t.Errorf("got %v, want ErrDuplicateReference", err)
		}
		if f.Len() != 1 {
			t.Errorf("Len: got %d, want 1", f.Len())
		}
	})

	t.Run("SecondParentRejected", func(t *testing.T) {
		f, a, _, c := buildChain(t)
		if err := f.Attach(a, c); !errors.Is(err, ErrAlreadyParented) {
			t.Errorf("got %v, want ErrAlreadyParented", err)
		}
	})

	t.Run("CycleRejected", func(t *testing.T) {
		f, a, _, c := buildChain(t)
		if err := f.Attach(c, a); !errors.Is(err, ErrCycle) {
			t.Errorf("got %v, want ErrCycle", err)
		}
		if err := f.Attach(a, a); !errors.Is(err, ErrCycle) {
			t.Errorf("self attach: got %v, want ErrCycle", err)
		}
	})

	t.Run("DeepCycleRejected", func(t *testing.T) {
		const n = 1000
		f := NewForest(n)
		handles := make([]Handle, n)
		for i := range handles {
			h, err := f.Add("Folder", fmt.Sprint(i))
			if err != nil {
				t.Fatal(err)
			}
			handles[i] = h
		}
		// Link bottom-up so the root only becomes known at the last step.
		for i := n - 1; i > 0; i-- {
			if err := f.Attach(handles[i-1], handles[i]); err != nil {
				t.Fatalf("attach %d: %v", i, err)
			}
		}
		if err := f.Attach(handles[n-1], handles[0]); !errors.Is(err, ErrCycle) {
			t.Errorf("got %v, want ErrCycle", err)
		}
		if roots := f.Roots(); len(roots) != 1 || roots[0] != handles[0] {
			t.Errorf("Roots: got %v, want [%d]", roots, handles[0])
		}
	})

	t.Run("InvalidHandle", func(t *testing.T) {
		f, a, _, _ := buildChain(t)
		if err := f.Attach(a, 99); !errors.Is(err, ErrInvalidHandle) {
			t.Errorf("got %v, want ErrInvalidHandle", err)
		}
		if f.Node(NoHandle) != nil {
			t.Error("Node(NoHandle) should be nil")
		}
	})

	t.Run("WalkOrder", func(t *testing.T) {
		f, _, _, _ := buildChain(t)
		if _, err := f.Add("Script", "4"); err != nil {
			t.Fatal(err)
		}

		var refs []string
		var depths []int
		f.Walk(func(h Handle, depth int) bool {
			refs = append(refs, f.Node(h).Reference)
			depths = append(depths, depth)
			return true
		})

		wantRefs := []string{"1", "2", "3", "4"}
		wantDepths := []int{0, 1, 2, 0}
		for i := range wantRefs {
			if refs[i] != wantRefs[i] || depths[i] != wantDepths[i] {
				t.Fatalf("Walk: got %v %v, want %v %v", refs, depths, wantRefs, wantDepths)
			}
		}
	})

	t.Run("WalkPrune", func(t *testing.T) {
		f, _, _, _ := buildChain(t)
		visited := 0
		f.Walk(func(h Handle, depth int) bool {
			visited++
			return depth < 1
		})
		if visited != 2 {
			t.Errorf("visited: got %d, want 2", visited)
		}
	})
}
