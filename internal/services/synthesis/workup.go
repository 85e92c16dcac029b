package synthesis

import (
	"sort"
	"strings"

	"asclepius/internal/domain/opinion"
	"asclepius/internal/domain/verdict"
)

// consolidateWorkup merges every specialist's recommended tests into one
// deduplicated, priority-sorted list. Deterministic and idempotent: the same
// opinions always yield the same list.
func consolidateWorkup(opinions []opinion.Opinion) []verdict.ConsolidatedWorkupItem {
	type entry struct {
		item verdict.ConsolidatedWorkupItem
		seen int
	}

	byTest := make(map[string]*entry)
	order := make([]string, 0)

	for _, op := range opinions {
		for _, w := range op.RecommendedWorkup {
			key := normalizeTest(w.Test)
			e, ok := byTest[key]
			if !ok {
				e = &entry{
					item: verdict.ConsolidatedWorkupItem{
						Test:      strings.TrimSpace(w.Test),
						Priority:  w.Priority,
						Rationale: w.Rationale,
					},
					seen: len(order),
				}
				byTest[key] = e
				order = append(order, key)
			}
			if w.Priority.Rank() > e.item.Priority.Rank() {
				e.item.Priority = w.Priority
			}
			if !containsSpecialty(e.item.OrderedBy, op.Specialty) {
				e.item.OrderedBy = append(e.item.OrderedBy, op.Specialty)
			}
		}
	}

	items := make([]verdict.ConsolidatedWorkupItem, 0, len(byTest))
	keys := make([]string, len(order))
	copy(keys, order)
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := byTest[keys[i]], byTest[keys[j]]
		if a.item.Priority.Rank() != b.item.Priority.Rank() {
			return a.item.Priority.Rank() > b.item.Priority.Rank()
		}
		return a.seen < b.seen
	})
	for _, k := range keys {
		items = append(items, byTest[k].item)
	}

	return items
}

// normalizeTest is the dedup key: lowercased, trimmed, inner whitespace
// collapsed
func normalizeTest(test string) string {
	return strings.Join(strings.Fields(strings.ToLower(test)), " ")
}

func containsSpecialty(list []opinion.Specialty, s opinion.Specialty) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
