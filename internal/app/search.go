/**
 * @description
 * This file implements the search and analytics operations of the
 * BeneficiaryService: filtered/paginated search, per-customer aggregate
 * analytics, and the time-period usage report.
 *
 * @notes
 * - Search runs against the store with the criteria compiled to predicates;
 *   the total count is computed independently of paging so the page
 *   metadata stays accurate.
 * - Analytics and the usage report intentionally operate over the full
 *   record set including DELETED rows: they must reflect history, unlike
 *   the ACTIVE-only list endpoint.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alokkulkarni/beneficiaries/internal/domain"
)

// Search returns a page of the customer's beneficiaries matching the
// AND-combined optional criteria, plus paging metadata.
func (s *BeneficiaryService) Search(ctx context.Context, criteria domain.SearchCriteria) (*domain.PagedBeneficiaries, error) {
	criteria.Normalize()
	log.Printf("level=info component=beneficiary_service operation=search customer_id=%s page=%d size=%d",
		criteria.CustomerID, criteria.Page, criteria.Size)

	results, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return domain.NewPagedBeneficiaries(results, criteria.Page, criteria.Size, total), nil
}

// Analytics aggregates the customer's entire beneficiary history.
func (s *BeneficiaryService) Analytics(ctx context.Context, customerID string) (*domain.BeneficiaryAnalytics, error) {
	beneficiaries, err := s.repo.FindAllByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	analytics := &domain.BeneficiaryAnalytics{
		CustomerID:         customerID,
		TotalBeneficiaries: len(beneficiaries),
		ByType:             map[string]int64{},
		ByBank:             map[string]int64{},
	}

	var mostRecent *domain.Beneficiary
	for i := range beneficiaries {
		b := &beneficiaries[i]
		switch b.Status {
		case domain.StatusActive:
			analytics.ActiveBeneficiaries++
		case domain.StatusInactive:
			analytics.InactiveBeneficiaries++
		}

		analytics.ByType[defaultType(b.BeneficiaryType)]++
		if b.BeneficiaryBankName != "" {
			analytics.ByBank[b.BeneficiaryBankName]++
		}

		if mostRecent == nil || b.CreatedAt.After(mostRecent.CreatedAt) {
			mostRecent = b
		}
	}

	if mostRecent != nil {
		analytics.MostRecentName = mostRecent.BeneficiaryName
		addedAt := mostRecent.CreatedAt
		analytics.MostRecentAddedAt = &addedAt
	}
	return analytics, nil
}

// UsageReport summarizes how many beneficiaries the customer created within
// (start, end) and the single most active day in that period. The growth
// rate is the period count as a percentage of the all-time total, rounded
// to two decimals, and zero for an empty history.
func (s *BeneficiaryService) UsageReport(ctx context.Context, customerID string, start, end time.Time) (*domain.UsageReport, error) {
	beneficiaries, err := s.repo.FindAllByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	report := &domain.UsageReport{
		CustomerID:         customerID,
		PeriodStart:        start,
		PeriodEnd:          end,
		TotalBeneficiaries: len(beneficiaries),
	}

	byDay := map[string]int64{}
	for _, b := range beneficiaries {
		// Period is inclusive of start, exclusive of end.
		if b.CreatedAt.Before(start) || !b.CreatedAt.Before(end) {
			continue
		}
		report.AddedInPeriod++
		byDay[b.CreatedAt.Format("2006-01-02")]++
	}

	if report.TotalBeneficiaries > 0 {
		rate := decimal.NewFromInt(int64(report.AddedInPeriod)).
			Div(decimal.NewFromInt(int64(report.TotalBeneficiaries))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		report.GrowthRatePercent, _ = rate.Float64()
	}

	for day, count := range byDay {
		if count > report.AddedOnMostActive || (count == report.AddedOnMostActive && day < report.MostActiveDay) {
			report.MostActiveDay = day
			report.AddedOnMostActive = count
		}
	}
	return report, nil
}
