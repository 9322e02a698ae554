// pkg/namegen/namegen_test.go

package namegen

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
)

func TestSequencePadding(t *testing.T) {
	t.Parallel()

	got, err := Sequence("P-", 1, 3, nil, true)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	want := []string{"P-01", "P-02", "P-03"}
	assertNames(t, got, want)
}

func TestSequencePaddingStopsAtTwoDigits(t *testing.T) {
	t.Parallel()

	got, err := Sequence("P-", 9, 11, nil, true)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	assertNames(t, got, []string{"P-09", "P-10", "P-11"})

	got, err = Sequence("P-", 99, 100, nil, true)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	assertNames(t, got, []string{"P-99", "P-100"})
}

func TestSequenceNoPadding(t *testing.T) {
	t.Parallel()

	got, err := Sequence("LAB", 1, 3, nil, false)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	assertNames(t, got, []string{"LAB1", "LAB2", "LAB3"})
}

func TestSequenceExclusions(t *testing.T) {
	t.Parallel()

	got, err := Sequence("P-", 1, 4, []int{2}, true)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	assertNames(t, got, []string{"P-01", "P-03", "P-04"})

	got, err = Sequence("P-", 1, 3, []int{1, 2, 3}, true)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("all-excluded range returned %v, want empty", got)
	}

	got, err = Sequence("P-", 1, 2, []int{99}, true)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	assertNames(t, got, []string{"P-01", "P-02"})
}

func TestSequenceSingleItem(t *testing.T) {
	t.Parallel()

	got, err := Sequence("DC-", 7, 7, nil, true)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	assertNames(t, got, []string{"DC-07"})
}

func TestSequenceValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		prefix     string
		start, end int
	}{
		{"empty prefix", "", 1, 3},
		{"negative start", "P-", -1, 3},
		{"end before start", "P-", 5, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Sequence(tc.prefix, tc.start, tc.end, nil, true)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !argus_err.IsCategory(err, argus_err.CategoryValidation) {
				t.Errorf("error %v is not a validation error", err)
			}
		})
	}
}

func assertNames(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, got[i], want[i])
		}
	}
}
