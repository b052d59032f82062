package duplicates

import (
	"sort"

	"dupefinder/internal/models"
)

// Reconcile merges raw strategy outputs so each distinct set of files is reported once.
//
// Groups are bucketed by member-set equality and the highest-priority
// classification in each bucket is kept. Groups that only partially overlap
// are different sets and both survive. The result is sorted by priority, then
// wasted space (largest first), then key.
func Reconcile(lists ...[]*models.DuplicateGroup) []*models.DuplicateGroup {
	buckets := make(map[string]*models.DuplicateGroup)
	for _, list := range lists {
		for _, group := range list {
			if group == nil || group.DuplicateCount() < 2 {
				continue
			}
			key := group.MemberKey()
			current, seen := buckets[key]
			if !seen || group.Classification.Outranks(current.Classification) {
				buckets[key] = group
			}
		}
	}

	unique := make([]*models.DuplicateGroup, 0, len(buckets))
	for _, group := range buckets {
		unique = append(unique, group)
	}
	SortGroups(unique)
	return unique
}

// SortGroups orders groups by classification priority, wasted space and key
func SortGroups(groups []*models.DuplicateGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Classification != b.Classification {
			return a.Classification.Outranks(b.Classification)
		}
		if wa, wb := a.WastedSpace(), b.WastedSpace(); wa != wb {
			return wa > wb
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.MemberKey() < b.MemberKey()
	})
}
