package enrichment

import (
	"sort"
)

// pathwayUnion collects every pathway occurring in any of the results.
func pathwayUnion(results []*Result) map[string]struct{} {
	union := make(map[string]struct{})
	for _, r := range results {
		for _, rec := range r.Records {
			union[rec.Pathway] = struct{}{}
		}
	}
	return union
}

// SharedPathways returns the pathways present in every result group,
// sorted. Within a group a pathway counts if any of the group's results
// contains it.
func SharedPathways(groups ...[]*Result) []string {
	if len(groups) == 0 {
		return nil
	}
	shared := pathwayUnion(groups[0])
	for _, group := range groups[1:] {
		union := pathwayUnion(group)
		for pathway := range shared {
			if _, ok := union[pathway]; !ok {
				delete(shared, pathway)
			}
		}
	}
	return sortedKeys(shared)
}

// Distinct restricts each named result group to the pathways that occur
// in no other group. The returned pathway lists are sorted.
func Distinct(groups map[string][]*Result) map[string][]string {
	unions := make(map[string]map[string]struct{}, len(groups))
	for name, group := range groups {
		unions[name] = pathwayUnion(group)
	}

	distinct := make(map[string][]string, len(groups))
	for name, union := range unions {
		own := make(map[string]struct{}, len(union))
		for pathway := range union {
			own[pathway] = struct{}{}
		}
		for other, otherUnion := range unions {
			if other == name {
				continue
			}
			for pathway := range otherUnion {
				delete(own, pathway)
			}
		}
		distinct[name] = sortedKeys(own)
	}
	return distinct
}

// BestModules maps each pathway to the module whose enrichment gave it
// the lowest p-value.
func BestModules(results []ModuleResult) map[string]int {
	best := make(map[string]int)
	bestP := make(map[string]float64)
	for _, mr := range results {
		for _, rec := range mr.Result.Records {
			if p, seen := bestP[rec.Pathway]; !seen || rec.P < p {
				bestP[rec.Pathway] = rec.P
				best[rec.Pathway] = mr.Module
			}
		}
	}
	return best
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
