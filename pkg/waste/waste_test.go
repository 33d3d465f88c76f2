package waste

import (
	"testing"

	"github.com/teslashibe/go-wastesort/pkg/command"
)

func TestClassify(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		label    string
		wantCat  Category
		wantBelt command.Command
	}{
		{"Plastic Bottle", Recyclable, RecyclableBelt},
		{"plastic bottle", Recyclable, RecyclableBelt},
		{"ALUMINUM CAN", Recyclable, RecyclableBelt},
		{"zip plastic bag", Recyclable, RecyclableBelt},
		{"Tin", Recyclable, RecyclableBelt},
		{"Metal Scrap", NonRecyclable, NonRecyclableBelt},
		{"banana peel", NonRecyclable, NonRecyclableBelt},
		{"", NonRecyclable, NonRecyclableBelt},
	}

	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			cat, belt := p.Classify(tc.label)
			if cat != tc.wantCat {
				t.Errorf("category: got %v, want %v", cat, tc.wantCat)
			}
			if belt != tc.wantBelt {
				t.Errorf("belt: got %q, want %q", belt, tc.wantBelt)
			}
		})
	}
}

func TestNewPolicy_CustomBelts(t *testing.T) {
	p := NewPolicy([]string{"  Glass Jar "}, "BELT_A", "BELT_B")

	if cat, belt := p.Classify("glass jar"); cat != Recyclable || belt != "BELT_A" {
		t.Errorf("glass jar: got %v/%q", cat, belt)
	}
	if cat, belt := p.Classify("plastic bottle"); cat != NonRecyclable || belt != "BELT_B" {
		t.Errorf("plastic bottle is not in the custom set: got %v/%q", cat, belt)
	}
}

func TestNewPolicy_EmptyBeltsUseDefaults(t *testing.T) {
	p := NewPolicy(nil, "", "")
	if _, belt := p.Classify("anything"); belt != NonRecyclableBelt {
		t.Errorf("got %q, want %q", belt, NonRecyclableBelt)
	}
}

func TestCategoryString(t *testing.T) {
	if Recyclable.String() != "Recyclable" {
		t.Errorf("got %q", Recyclable.String())
	}
	if NonRecyclable.String() != "Non-Recyclable" {
		t.Errorf("got %q", NonRecyclable.String())
	}
}
