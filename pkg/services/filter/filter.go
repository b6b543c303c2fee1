package filter

import (
	"fmt"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
)

// Filter keeps a filtered view over the last loaded entity list and a single
// selection that is always a member of that view.
type Filter struct {
	mu       sync.RWMutex
	source   []domain.Entity
	filtered []domain.Entity
	keyword  string
	selected *domain.Entity
}

func New() *Filter {
	return &Filter{}
}

// Replace installs a freshly loaded list, resets the keyword and selects the first entity.
func (f *Filter) Replace(list []domain.Entity) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.source = append([]domain.Entity(nil), list...)
	f.keyword = ""
	f.apply()
}

// Search filters the full source list by a case-insensitive substring of the name.
// The keyword is matched as typed, surrounding spaces included.
func (f *Filter) Search(keyword string) []domain.Entity {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.keyword = keyword
	f.apply()
	return append([]domain.Entity(nil), f.filtered...)
}

func (f *Filter) apply() {
	if f.keyword == "" {
		f.filtered = append([]domain.Entity(nil), f.source...)
	} else {
		needle := strings.ToLower(f.keyword)
		f.filtered = f.filtered[:0:0]
		for _, e := range f.source {
			if strings.Contains(strings.ToLower(e.Name), needle) {
				f.filtered = append(f.filtered, e)
			}
		}
	}

	if len(f.filtered) == 0 {
		f.selected = nil
		return
	}
	first := f.filtered[0]
	f.selected = &first
}

// Select picks id from the filtered view.
func (f *Filter) Select(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.filtered {
		if e.ID == id {
			picked := e
			f.selected = &picked
			return nil
		}
	}
	return fmt.Errorf("%w: %d is not in the current list", domain.ErrNoSelection, id)
}

func (f *Filter) Selected() (domain.Entity, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.selected == nil {
		return domain.Entity{}, false
	}
	return *f.selected, true
}

func (f *Filter) Filtered() []domain.Entity {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]domain.Entity(nil), f.filtered...)
}

func (f *Filter) Keyword() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.keyword
}

// CanSubmit reports whether something is selected.
func (f *Filter) CanSubmit() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.selected != nil
}

// Suggest returns the source entity whose name is closest to keyword by edit distance.
func (f *Filter) Suggest(keyword string) (domain.Entity, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" || len(f.source) == 0 {
		return domain.Entity{}, false
	}

	best, bestDistance := -1, 0
	for i, e := range f.source {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(e.Name))
		if best < 0 || d < bestDistance {
			best, bestDistance = i, d
		}
	}
	return f.source[best], true
}
