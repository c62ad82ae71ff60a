package analyze

import (
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/manishghoshal99/mastolytics/internal/model"
)

// DefaultTopN is the default ranking depth.
const DefaultTopN = 5

// Summarize distills the report's aggregates into top-N rankings and
// distribution statistics. The report's aggregate maps must be filled
// before calling this.
//
// Ties are broken by bucket key (ascending) so that the output is
// deterministic regardless of map iteration order and worker count.
func Summarize(report *model.AnalysisReport, topN int) *model.Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}

	summary := &model.Summary{
		Dataset:        report.Dataset,
		GeneratedAt:    time.Now(),
		TotalLines:     report.TotalLines,
		ProcessedLines: report.ProcessedLines,
		TopN:           topN,
		SentimentStats: SentimentStats(report.SentimentValues),
		Interactions:   report.Interactions,
	}

	summary.HappiestHours = topHours(report.HourSentiment, topN, false)
	summary.SaddestHours = topHours(report.HourSentiment, topN, true)
	summary.HappiestDays = topDays(report.DaySentiment, topN, false)
	summary.SaddestDays = topDays(report.DaySentiment, topN, true)
	summary.HappiestUsers = topUsersBySentiment(report.UserSentiment, topN, false)
	summary.SaddestUsers = topUsersBySentiment(report.UserSentiment, topN, true)
	summary.MostActiveUsers = topUsersByPosts(report.UserSentiment, topN)
	summary.MostPositiveUsers = topUsersByAverage(report.UserSentiment, topN, false)
	summary.MostNegativeUsers = topUsersByAverage(report.UserSentiment, topN, true)
	summary.BusiestHours = busiestHours(report.HourPostCounts, topN)
	summary.TopLanguages = topLanguages(report.LanguageCounts, topN)

	return summary
}

// topHours ranks hour buckets by sentiment sum.
func topHours(buckets map[string]float64, n int, ascending bool) []model.HourSentimentEntry {
	entries := make([]model.HourSentimentEntry, 0, len(buckets))
	for hour, score := range buckets {
		entries = append(entries, model.HourSentimentEntry{Hour: hour, Sentiment: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Sentiment != entries[j].Sentiment {
			if ascending {
				return entries[i].Sentiment < entries[j].Sentiment
			}
			return entries[i].Sentiment > entries[j].Sentiment
		}
		return entries[i].Hour < entries[j].Hour
	})
	return entries[:min(n, len(entries))]
}

// topDays ranks day buckets by sentiment sum.
func topDays(buckets map[string]float64, n int, ascending bool) []model.DaySentimentEntry {
	entries := make([]model.DaySentimentEntry, 0, len(buckets))
	for day, score := range buckets {
		entries = append(entries, model.DaySentimentEntry{Day: day, Sentiment: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Sentiment != entries[j].Sentiment {
			if ascending {
				return entries[i].Sentiment < entries[j].Sentiment
			}
			return entries[i].Sentiment > entries[j].Sentiment
		}
		return entries[i].Day < entries[j].Day
	})
	return entries[:min(n, len(entries))]
}

// topUsersBySentiment ranks users by sentiment sum.
func topUsersBySentiment(users map[string]*model.UserStat, n int, ascending bool) []model.UserSentimentEntry {
	entries := make([]model.UserSentimentEntry, 0, len(users))
	for id, stat := range users {
		entries = append(entries, model.UserSentimentEntry{
			ID:        id,
			Username:  stat.Username,
			Sentiment: stat.Sentiment,
			Posts:     stat.Posts,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Sentiment != entries[j].Sentiment {
			if ascending {
				return entries[i].Sentiment < entries[j].Sentiment
			}
			return entries[i].Sentiment > entries[j].Sentiment
		}
		return entries[i].ID < entries[j].ID
	})
	return entries[:min(n, len(entries))]
}

// topUsersByPosts ranks users by post count.
func topUsersByPosts(users map[string]*model.UserStat, n int) []model.UserSentimentEntry {
	entries := make([]model.UserSentimentEntry, 0, len(users))
	for id, stat := range users {
		entries = append(entries, model.UserSentimentEntry{
			ID:        id,
			Username:  stat.Username,
			Sentiment: stat.Sentiment,
			Posts:     stat.Posts,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Posts != entries[j].Posts {
			return entries[i].Posts > entries[j].Posts
		}
		return entries[i].ID < entries[j].ID
	})
	return entries[:min(n, len(entries))]
}

// topUsersByAverage ranks users by mean sentiment per post.
func topUsersByAverage(users map[string]*model.UserStat, n int, ascending bool) []model.UserAverageEntry {
	entries := make([]model.UserAverageEntry, 0, len(users))
	for id, stat := range users {
		if stat.Posts == 0 {
			continue
		}
		entries = append(entries, model.UserAverageEntry{
			ID:           id,
			Username:     stat.Username,
			AvgSentiment: stat.Sentiment / float64(stat.Posts),
			Posts:        stat.Posts,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AvgSentiment != entries[j].AvgSentiment {
			if ascending {
				return entries[i].AvgSentiment < entries[j].AvgSentiment
			}
			return entries[i].AvgSentiment > entries[j].AvgSentiment
		}
		return entries[i].ID < entries[j].ID
	})
	return entries[:min(n, len(entries))]
}

// busiestHours ranks hour buckets by post count.
func busiestHours(buckets map[string]int64, n int) []model.HourCountEntry {
	entries := make([]model.HourCountEntry, 0, len(buckets))
	for hour, count := range buckets {
		entries = append(entries, model.HourCountEntry{Hour: hour, Posts: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Posts != entries[j].Posts {
			return entries[i].Posts > entries[j].Posts
		}
		return entries[i].Hour < entries[j].Hour
	})
	return entries[:min(n, len(entries))]
}

// topLanguages ranks languages by post count and resolves display names.
func topLanguages(languages map[string]int64, n int) []model.LanguageEntry {
	entries := make([]model.LanguageEntry, 0, len(languages))
	for code, count := range languages {
		entries = append(entries, model.LanguageEntry{
			Code:  code,
			Name:  languageName(code),
			Posts: count,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Posts != entries[j].Posts {
			return entries[i].Posts > entries[j].Posts
		}
		return entries[i].Code < entries[j].Code
	})
	return entries[:min(n, len(entries))]
}

// languageName resolves a language code to its English display name.
// Unknown or malformed codes yield an empty name; the code itself is
// always preserved in the entry.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	return display.English.Languages().Name(tag)
}
