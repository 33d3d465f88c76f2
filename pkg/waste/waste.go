// Package waste maps detected class labels to a sorting category and the
// belt command that routes the item.
package waste

import (
	"strings"

	"github.com/teslashibe/go-wastesort/pkg/command"
)

// Category is the sorting bucket for a class label.
type Category int

const (
	NonRecyclable Category = iota
	Recyclable
)

// String returns the human-readable category name.
func (c Category) String() string {
	if c == Recyclable {
		return "Recyclable"
	}
	return "Non-Recyclable"
}

// MarshalText encodes c by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Default belt tokens understood by the actuator firmware.
const (
	RecyclableBelt    command.Command = "Recyclable Belt"
	NonRecyclableBelt command.Command = "Non-Recyclable Belt"
)

// DefaultRecyclable returns the labels treated as recyclable by default.
func DefaultRecyclable() []string {
	return []string{
		"recyclable",
		"aluminum can",
		"cardboard",
		"glass bottle",
		"paper",
		"plastic bottle",
		"plastic bag",
		"tin",
		"zip plastic bag",
	}
}

// Policy classifies labels. It is immutable after construction.
type Policy struct {
	recyclable     map[string]struct{}
	recyclableBelt command.Command
	otherBelt      command.Command
}

// NewPolicy builds a policy from a recyclable label set and the two belt
// commands. Labels are matched case-insensitively. Empty belts fall back to
// the defaults.
func NewPolicy(recyclable []string, recyclableBelt, otherBelt command.Command) *Policy {
	if recyclableBelt == "" {
		recyclableBelt = RecyclableBelt
	}
	if otherBelt == "" {
		otherBelt = NonRecyclableBelt
	}
	set := make(map[string]struct{}, len(recyclable))
	for _, l := range recyclable {
		set[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}
	return &Policy{recyclable: set, recyclableBelt: recyclableBelt, otherBelt: otherBelt}
}

// DefaultPolicy returns the policy with the default label set and belts.
func DefaultPolicy() *Policy {
	return NewPolicy(DefaultRecyclable(), RecyclableBelt, NonRecyclableBelt)
}

// Classify returns the category and belt command for label. Unknown labels
// are non-recyclable.
func (p *Policy) Classify(label string) (Category, command.Command) {
	if _, ok := p.recyclable[strings.ToLower(label)]; ok {
		return Recyclable, p.recyclableBelt
	}
	return NonRecyclable, p.otherBelt
}
