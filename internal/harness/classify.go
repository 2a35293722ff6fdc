package harness

import (
	"github.com/roach88/t262/internal/exceptions"
)

// Classify maps an expected/actual outcome and exceptions membership to a
// category and whether that cell is allowed.
//
// Success and failure agree with the test's declaration and must not be
// listed. False positives and false negatives are divergences and are
// tolerated only when listed.
func Classify(expectedError, actualError, listed bool) (Category, bool) {
	switch {
	case !expectedError && !actualError:
		return Success, !listed
	case !expectedError && actualError:
		return FalseNegative, listed
	case expectedError && !actualError:
		return FalsePositive, listed
	default:
		return Failure, !listed
	}
}

// Interpret classifies results against the exceptions set.
//
// Each result claims its identifier from the set; an identifier can be
// claimed once, so a repeated identifier is classified as unlisted. Entries
// left unclaimed become Summary.Unrecognized. The set is not modified.
func Interpret(results []ProbeResult, set *exceptions.Set) *Summary {
	summary := newSummary()
	claimed := make(map[string]struct{}, set.Len())
	passed := true

	for _, r := range results {
		listed := false
		if set.Has(r.ID) {
			if _, taken := claimed[r.ID]; !taken {
				claimed[r.ID] = struct{}{}
				listed = true
			}
		}

		category, allowed := Classify(r.ExpectedError, r.ActualError, listed)
		if allowed {
			summary.Allowed.add(category, r)
		} else {
			summary.Disallowed.add(category, r)
		}
		passed = passed && allowed
	}

	for _, id := range set.Entries() {
		if _, ok := claimed[id]; !ok {
			summary.Unrecognized = append(summary.Unrecognized, id)
		}
	}

	summary.Passed = passed && len(summary.Unrecognized) == 0
	return summary
}
