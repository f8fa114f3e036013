package usecase

import (
	"strings"

	"news-rag/internal/domain"
)

var newsQueryMarkers = []string{
	"today",
	"latest",
	"breaking",
	"this week",
	"this month",
	"yesterday",
	"2025",
	"2024",
	"2023",
}

// ClassifyQuery routes a query as news or general knowledge. Time-related
// phrases are the signal; everything else falls back to general.
func ClassifyQuery(query string) domain.QueryType {
	lowered := strings.ToLower(query)
	for _, marker := range newsQueryMarkers {
		if strings.Contains(lowered, marker) {
			return domain.QueryNews
		}
	}
	return domain.QueryGeneral
}
