package cvault

import (
	"sort"
	"strings"
	"time"

	"certivault/internal/academic"
	"certivault/internal/model"
)

// FilterRecords narrows records by a free-text query and facet filters.
//
// The text query matches case-insensitively against title, issuer,
// category, academic period and tags (union of substring matches).
//
// Facet filters are a single OR across everything selected: a record
// matches when any selected filter equals its period, its category, or one
// of its tags. Selecting a year and a category therefore returns records
// matching either, not records matching both. This mirrors the shipped
// behavior and is kept as-is pending product confirmation.
func FilterRecords(records []*model.Certificate, textQuery string, tagFilters []string, startMonth time.Month) []*model.Certificate {
	query := strings.ToLower(strings.TrimSpace(textQuery))

	var out []*model.Certificate
	for _, cert := range records {
		period := academic.Classify(cert.Date, startMonth)

		if query != "" && !matchesQuery(cert, period, query) {
			continue
		}
		if len(tagFilters) > 0 && !matchesAnyFacet(cert, period, tagFilters) {
			continue
		}
		out = append(out, cert)
	}
	return out
}

func matchesQuery(cert *model.Certificate, period, query string) bool {
	fields := []string{cert.Title, cert.Issuer, cert.Category, period}
	fields = append(fields, cert.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

func matchesAnyFacet(cert *model.Certificate, period string, filters []string) bool {
	for _, f := range filters {
		if f == period || f == cert.Category || cert.HasTag(f) {
			return true
		}
	}
	return false
}

// GroupByPeriodAndCategory arranges records into the two-level hierarchy
// the vault mirrors remotely: period -> category -> records.
func GroupByPeriodAndCategory(records []*model.Certificate, startMonth time.Month) map[string]map[string][]*model.Certificate {
	grouped := make(map[string]map[string][]*model.Certificate)
	for _, cert := range records {
		period := academic.Classify(cert.Date, startMonth)
		category := cert.Category
		if category == "" {
			category = "Other"
		}
		if grouped[period] == nil {
			grouped[period] = make(map[string][]*model.Certificate)
		}
		grouped[period][category] = append(grouped[period][category], cert)
	}
	return grouped
}

// SortedPeriods returns the group keys newest-first, with the unknown-date
// bucket last.
func SortedPeriods(grouped map[string]map[string][]*model.Certificate) []string {
	periods := make([]string, 0, len(grouped))
	for p := range grouped {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i] == academic.UnknownPeriod {
			return false
		}
		if periods[j] == academic.UnknownPeriod {
			return true
		}
		return periods[i] > periods[j]
	})
	return periods
}

// SortedCategories returns a period's category keys in lexical order.
func SortedCategories(byCategory map[string][]*model.Certificate) []string {
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}
