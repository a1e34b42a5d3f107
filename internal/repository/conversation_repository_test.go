package repository

import "testing"

func TestCanonicalIDSymmetric(t *testing.T) {
	a := "0b5e9c1a-1111-4aaa-8bbb-000000000001"
	b := "f42d7a9e-2222-4ccc-9ddd-000000000002"

	ab := CanonicalID(a, b)
	ba := CanonicalID(b, a)
	if ab != ba {
		t.Fatalf("canonical id differs by direction: %q vs %q", ab, ba)
	}
	if want := a + "_" + b; ab != want {
		t.Fatalf("canonical id = %q, want smaller id first %q", ab, want)
	}
}

func TestCanonicalIDDistinctPairs(t *testing.T) {
	a, b, c := "aaa", "bbb", "ccc"
	if CanonicalID(a, b) == CanonicalID(a, c) {
		t.Fatal("different pairs must map to different conversation ids")
	}
}
