/**
 * @description
 * This file implements the advisory duplicate detection over a customer's
 * beneficiary set. Two beneficiaries are flagged as potential duplicates
 * when their normalized names are equal, one contains the other, or their
 * Levenshtein distance is at most 2.
 *
 * @notes
 * - This check is read-only reporting; it never blocks a write. The
 *   blocking duplicate check is the account-number lookup the lifecycle
 *   operations run against the store.
 * - Pairwise comparison is O(k^2) with an O(n*m) distance per pair, which
 *   is acceptable because k is one customer's beneficiary list.
 */

package app

import (
	"context"
	"strings"

	"github.com/alokkulkarni/beneficiaries/internal/domain"
)

const maxNameEditDistance = 2

// FindPotentialDuplicates reports name-similar beneficiary pairs across the
// customer's entire history, deleted rows included.
func (s *BeneficiaryService) FindPotentialDuplicates(ctx context.Context, customerID string) ([]domain.DuplicatePair, error) {
	beneficiaries, err := s.repo.FindAllByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	pairs := []domain.DuplicatePair{}
	for i := 0; i < len(beneficiaries); i++ {
		for j := i + 1; j < len(beneficiaries); j++ {
			b1, b2 := beneficiaries[i], beneficiaries[j]
			if !similarNames(b1.BeneficiaryName, b2.BeneficiaryName) {
				continue
			}
			pairs = append(pairs, domain.DuplicatePair{
				Beneficiary1ID:      b1.ID,
				Beneficiary1Name:    b1.BeneficiaryName,
				Beneficiary1Account: b1.BeneficiaryAccountNumber,
				Beneficiary2ID:      b2.ID,
				Beneficiary2Name:    b2.BeneficiaryName,
				Beneficiary2Account: b2.BeneficiaryAccountNumber,
				Similarity:          "HIGH",
			})
		}
	}
	return pairs, nil
}

// similarNames compares two display names after lower-casing and stripping
// all whitespace. Missing names never match.
func similarNames(name1, name2 string) bool {
	if name1 == "" || name2 == "" {
		return false
	}
	n1 := normalizeName(name1)
	n2 := normalizeName(name2)
	if n1 == "" || n2 == "" {
		return false
	}
	return n1 == n2 ||
		strings.Contains(n1, n2) ||
		strings.Contains(n2, n1) ||
		levenshtein(n1, n2) <= maxNameEditDistance
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "")
}

// levenshtein computes the minimum number of single-character edits (insert,
// delete, substitute) transforming s1 into s2, by classic dynamic
// programming over two rolling rows.
func levenshtein(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := 0; j <= len(r2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, minInt(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
