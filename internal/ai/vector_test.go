package ai

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarityIdentical(t *testing.T) {
	v := []float32{0.5, -1.2, 3.4, 0.01}
	got, err := CosineSimilarity(v, v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("cos(v, v) = %v, want 1", got)
	}
}

func TestCosineSimilarityOpposite(t *testing.T) {
	v := []float32{1, 2, 3}
	neg := []float32{-1, -2, -3}
	got, err := CosineSimilarity(v, neg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got+1.0) > 1e-9 {
		t.Errorf("cos(v, -v) = %v, want -1", got)
	}
}

func TestCosineSimilarityZeroMagnitude(t *testing.T) {
	zero := []float32{0, 0, 0}
	v := []float32{1, 2, 3}
	got, err := CosineSimilarity(zero, v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("cos(0, v) = %v, want 0", got)
	}
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
	var mismatch *DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected DimensionMismatchError, got %T", err)
	}
	if mismatch.LenA != 2 || mismatch.LenB != 3 {
		t.Errorf("unexpected lengths in error: %+v", mismatch)
	}
}
