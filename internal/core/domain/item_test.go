package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }

func TestItemPatch_Apply(t *testing.T) {
	base := Item{Type: "Suv", Price: "26k", Brand: "Honda", Year: "2018"}

	tests := []struct {
		name  string
		patch ItemPatch
		want  Item
	}{
		{
			name:  "empty patch keeps everything",
			patch: ItemPatch{},
			want:  base,
		},
		{
			name:  "price only",
			patch: ItemPatch{Price: strPtr("24k")},
			want:  Item{Type: "Suv", Price: "24k", Brand: "Honda", Year: "2018"},
		},
		{
			name:  "explicit empty year is written",
			patch: ItemPatch{Year: strPtr("")},
			want:  Item{Type: "Suv", Price: "26k", Brand: "Honda", Year: ""},
		},
		{
			name: "all fields",
			patch: ItemPatch{
				Type:  strPtr("Truck"),
				Price: strPtr("50k"),
				Brand: strPtr("Ford"),
				Year:  strPtr("2021"),
			},
			want: Item{Type: "Truck", Price: "50k", Brand: "Ford", Year: "2021"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.patch.Apply(base)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestItemPatch_IsEmpty(t *testing.T) {
	if !(ItemPatch{}).IsEmpty() {
		t.Error("expected zero patch to be empty")
	}
	if (ItemPatch{Year: strPtr("")}).IsEmpty() {
		t.Error("expected patch with explicit empty year to be non-empty")
	}
}

func TestSeedItems_ReturnsFreshCopy(t *testing.T) {
	first := SeedItems()
	first[1] = Item{Type: "changed"}

	second := SeedItems()
	if second[1].Type != "Sedan" {
		t.Errorf("expected seed to be unaffected by caller mutation, got %q", second[1].Type)
	}
	if len(second) != 3 {
		t.Errorf("expected 3 seed items, got %d", len(second))
	}
}
