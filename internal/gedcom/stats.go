package gedcom

import "github.com/rootlinehq/rootline/internal/models"

// ExtractStatistics aggregates record counts and the min/max date range
// over all normalized birth and death dates. Comparing normalized strings
// is safe because they sort lexicographically at any granularity.
func ExtractStatistics(result *models.ParsingResult) models.Statistics {
	stats := models.Statistics{
		IndividualCount: len(result.Individuals),
		FamilyCount:     len(result.Families),
	}

	for i := range result.Individuals {
		ind := &result.Individuals[i]
		stats.DateErrorCount += len(ind.DateErrors)

		for _, ev := range []*models.EventDetail{ind.Birth, ind.Death} {
			if ev == nil || ev.Date == nil || !ev.Date.Valid {
				continue
			}

			n := ev.Date.Normalized
			if stats.EarliestDate == "" || n < stats.EarliestDate {
				stats.EarliestDate = n
			}

			if stats.LatestDate == "" || n > stats.LatestDate {
				stats.LatestDate = n
			}
		}
	}

	return stats
}
