package game

import (
	"cmp"
	"slices"

	"github.com/scythe504/tiktakpaf-backend/internal"
)

// ScoringPolicy awards points when the admin resolves a word entry.
//
// Ranking happens at validation time: the entry being validated is placed
// among the entries of the same round that are already validated, ordered
// by response time. Because an entry can only be resolved once, the bonus
// an entry gets depends on the order of validation calls as well as on
// speed.
type ScoringPolicy struct {
	Base    int
	Bonuses []int // by place, first place first
}

var DefaultScoring = ScoringPolicy{Base: 1, Bonuses: []int{5, 3, 2}}

// Award returns the points for resolving playerID's entry in entries.
// order is the room's player join order and breaks response time ties.
func (p ScoringPolicy) Award(entries map[string]internal.WordEntry, order []string, playerID string, validated bool) int {
	if !validated {
		return 0
	}

	ranked := make([]string, 0, len(entries))
	for id, e := range entries {
		if id == playerID || e.Accepted() {
			ranked = append(ranked, id)
		}
	}
	if !slices.Contains(ranked, playerID) {
		ranked = append(ranked, playerID)
	}

	joinIndex := func(id string) int {
		if i := slices.Index(order, id); i >= 0 {
			return i
		}
		return len(order)
	}
	slices.SortFunc(ranked, func(a, b string) int {
		return cmp.Or(
			cmp.Compare(entries[a].ResponseTime, entries[b].ResponseTime),
			cmp.Compare(joinIndex(a), joinIndex(b)),
			cmp.Compare(a, b),
		)
	})

	place := slices.Index(ranked, playerID)
	return p.Base + p.bonus(place)
}

func (p ScoringPolicy) bonus(place int) int {
	if place < 0 || place >= len(p.Bonuses) {
		return 0
	}
	return p.Bonuses[place]
}
