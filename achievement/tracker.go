package achievement

import (
	"errors"
	"fmt"
)

// Definition describes an achievement or a story event
// Story events use Message and carry no Reward
type Definition struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Message     string    `yaml:"message,omitempty"`
	Condition   Condition `yaml:"condition"`
	Reward      float64   `yaml:"reward,omitempty"`
}

// Entry is the persisted unlock flag of one definition
type Entry struct {
	ID       string
	Unlocked bool
}

// Tracker holds one-way unlock flags for an ordered list of definitions
type Tracker struct {
	defs     []Definition
	unlocked map[string]bool
}

// NewTracker creates a tracker with every definition locked
func NewTracker(defs []Definition) *Tracker {
	return &Tracker{
		defs:     append([]Definition(nil), defs...),
		unlocked: make(map[string]bool, len(defs)),
	}
}

// Evaluate walks definitions in order and unlocks those whose condition holds
// onUnlock runs before the next definition is checked, so rewards it grants
// are visible to later conditions within the same pass
func (t *Tracker) Evaluate(v View, onUnlock func(Definition)) []Definition {
	var newly []Definition
	for _, d := range t.defs {
		if t.unlocked[d.ID] {
			continue
		}
		if !d.Condition.Eval(v) {
			continue
		}
		t.unlocked[d.ID] = true
		newly = append(newly, d)
		if onUnlock != nil {
			onUnlock(d)
		}
	}
	return newly
}

// Unlocked reports whether id has been unlocked
func (t *Tracker) Unlocked(id string) bool {
	return t.unlocked[id]
}

// Definitions returns the tracked definitions in evaluation order
func (t *Tracker) Definitions() []Definition {
	return t.defs
}

// Progress returns unlocked and total counts
func (t *Tracker) Progress() (unlocked, total int) {
	for _, d := range t.defs {
		if t.unlocked[d.ID] {
			unlocked++
		}
	}
	return unlocked, len(t.defs)
}

// Entries returns the persisted shape in definition order
func (t *Tracker) Entries() []Entry {
	out := make([]Entry, len(t.defs))
	for i, d := range t.defs {
		out[i] = Entry{ID: d.ID, Unlocked: t.unlocked[d.ID]}
	}
	return out
}

// Restore marks entries unlocked; ids without a definition are ignored
// Restore never locks a definition that is already unlocked
func (t *Tracker) Restore(entries []Entry) {
	known := make(map[string]bool, len(t.defs))
	for _, d := range t.defs {
		known[d.ID] = true
	}
	for _, e := range entries {
		if e.Unlocked && known[e.ID] {
			t.unlocked[e.ID] = true
		}
	}
}

// Reset locks every definition again
func (t *Tracker) Reset() {
	clear(t.unlocked)
}

// ValidateDefinitions checks ids are unique and conditions well-formed
func ValidateDefinitions(defs []Definition) error {
	var errs []error
	seen := make(map[string]bool, len(defs))
	for i, d := range defs {
		if d.ID == "" {
			errs = append(errs, fmt.Errorf("definition %d: empty id", i))
			continue
		}
		if seen[d.ID] {
			errs = append(errs, fmt.Errorf("definition %q: duplicate id", d.ID))
		}
		seen[d.ID] = true
		if err := d.Condition.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("definition %q: %w", d.ID, err))
		}
		if d.Reward < 0 {
			errs = append(errs, fmt.Errorf("definition %q: negative reward", d.ID))
		}
	}
	return errors.Join(errs...)
}
