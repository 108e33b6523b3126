/**
 * @description
 * This file defines the search, pagination and reporting types used by the
 * beneficiary search and analytics endpoints. SearchCriteria is ephemeral
 * request state, never persisted.
 */

package domain

import "time"

// Search defaults.
const (
	DefaultPageSize      = 20
	DefaultSortBy        = "createdAt"
	DefaultSortDirection = "DESC"
)

// SearchCriteria carries the optional, AND-combined filters for a beneficiary
// search. CustomerID is the only required field; empty strings and nil time
// bounds mean "no filter".
type SearchCriteria struct {
	CustomerID          string     `json:"customer_id"`
	BeneficiaryName     string     `json:"beneficiary_name,omitempty"`
	BeneficiaryType     string     `json:"beneficiary_type,omitempty"`
	Status              string     `json:"status,omitempty"`
	BeneficiaryBankCode string     `json:"beneficiary_bank_code,omitempty"`
	CreatedAfter        *time.Time `json:"created_after,omitempty"`
	CreatedBefore       *time.Time `json:"created_before,omitempty"`
	Page                int        `json:"page"`
	Size                int        `json:"size"`
	SortBy              string     `json:"sort_by,omitempty"`
	SortDirection       string     `json:"sort_direction,omitempty"`
}

// Normalize applies the documented defaults for paging and sorting, so the
// store layer never sees a zero page size or an empty sort field.
func (c *SearchCriteria) Normalize() {
	if c.Page < 0 {
		c.Page = 0
	}
	if c.Size <= 0 {
		c.Size = DefaultPageSize
	}
	if c.SortBy == "" {
		c.SortBy = DefaultSortBy
	}
	if c.SortDirection == "" {
		c.SortDirection = DefaultSortDirection
	}
}

// PagedBeneficiaries is one page of search results plus page metadata. The
// total count is computed with the same predicates but without paging.
type PagedBeneficiaries struct {
	Content       []Beneficiary `json:"content"`
	Page          int           `json:"page"`
	Size          int           `json:"size"`
	TotalElements int64         `json:"total_elements"`
	TotalPages    int           `json:"total_pages"`
	First         bool          `json:"first"`
	Last          bool          `json:"last"`
}

// NewPagedBeneficiaries derives the page metadata from the raw totals.
func NewPagedBeneficiaries(content []Beneficiary, page, size int, total int64) *PagedBeneficiaries {
	if content == nil {
		content = []Beneficiary{}
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	return &PagedBeneficiaries{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}

// BeneficiaryAnalytics aggregates a customer's entire beneficiary history,
// deleted rows included. Active and inactive counts exclude DELETED rows, so
// they need not sum to Total.
type BeneficiaryAnalytics struct {
	CustomerID            string           `json:"customer_id"`
	TotalBeneficiaries    int              `json:"total_beneficiaries"`
	ActiveBeneficiaries   int              `json:"active_beneficiaries"`
	InactiveBeneficiaries int              `json:"inactive_beneficiaries"`
	ByType                map[string]int64 `json:"beneficiaries_by_type"`
	ByBank                map[string]int64 `json:"beneficiaries_by_bank"`
	MostRecentName        string           `json:"most_recent_beneficiary_name,omitempty"`
	MostRecentAddedAt     *time.Time       `json:"most_recent_added_at,omitempty"`
}

// UsageReport summarizes beneficiary creation activity within a time period.
type UsageReport struct {
	CustomerID         string    `json:"customer_id"`
	PeriodStart        time.Time `json:"report_period_start"`
	PeriodEnd          time.Time `json:"report_period_end"`
	TotalBeneficiaries int       `json:"total_beneficiaries"`
	AddedInPeriod      int       `json:"beneficiaries_added_in_period"`
	GrowthRatePercent  float64   `json:"growth_rate_percent"`
	MostActiveDay      string    `json:"most_active_day,omitempty"`
	AddedOnMostActive  int64     `json:"beneficiaries_added_on_most_active_day,omitempty"`
}

// DuplicatePair flags two beneficiaries whose names look alike. Advisory
// only; it never blocks a write.
type DuplicatePair struct {
	Beneficiary1ID      int64  `json:"beneficiary1_id"`
	Beneficiary1Name    string `json:"beneficiary1_name"`
	Beneficiary1Account string `json:"beneficiary1_account"`
	Beneficiary2ID      int64  `json:"beneficiary2_id"`
	Beneficiary2Name    string `json:"beneficiary2_name"`
	Beneficiary2Account string `json:"beneficiary2_account"`
	Similarity          string `json:"similarity"`
}
