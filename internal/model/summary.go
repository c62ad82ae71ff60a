package model

import "time"

// Summary is the distilled analysis result: the top-N rankings and
// distribution statistics extracted from the full aggregates.
// This is what the report writers render and what gets stored alongside
// each run in the database.
type Summary struct {
	// Dataset is the path to the analyzed NDJSON file.
	Dataset string `json:"dataset"`

	// GeneratedAt is when the summary was computed.
	GeneratedAt time.Time `json:"generated_at"`

	// TotalLines is the number of lines in the dataset.
	TotalLines int64 `json:"total_lines"`

	// ProcessedLines is the number of lines that contributed to the result.
	ProcessedLines int64 `json:"processed_lines"`

	// TopN is the ranking depth used for all the lists below.
	TopN int `json:"top_n"`

	// HappiestHours are the hours with the highest sentiment sums.
	HappiestHours []HourSentimentEntry `json:"happiest_hours"`

	// SaddestHours are the hours with the lowest sentiment sums.
	SaddestHours []HourSentimentEntry `json:"saddest_hours"`

	// HappiestDays are the days with the highest sentiment sums.
	HappiestDays []DaySentimentEntry `json:"happiest_days"`

	// SaddestDays are the days with the lowest sentiment sums.
	SaddestDays []DaySentimentEntry `json:"saddest_days"`

	// HappiestUsers are the users with the highest sentiment sums.
	HappiestUsers []UserSentimentEntry `json:"happiest_users"`

	// SaddestUsers are the users with the lowest sentiment sums.
	SaddestUsers []UserSentimentEntry `json:"saddest_users"`

	// MostActiveUsers are the users with the most posts.
	MostActiveUsers []UserSentimentEntry `json:"most_active_users"`

	// MostPositiveUsers are the users with the highest average sentiment.
	MostPositiveUsers []UserAverageEntry `json:"most_positive_users"`

	// MostNegativeUsers are the users with the lowest average sentiment.
	MostNegativeUsers []UserAverageEntry `json:"most_negative_users"`

	// BusiestHours are the hours with the most posts.
	BusiestHours []HourCountEntry `json:"busiest_hours"`

	// TopLanguages are the most common post languages.
	TopLanguages []LanguageEntry `json:"top_languages"`

	// SentimentStats describes the sentiment score distribution.
	SentimentStats SentimentStats `json:"sentiment_stats"`

	// Interactions holds the interaction totals.
	Interactions Interactions `json:"interaction_stats"`
}

// HourSentimentEntry is one row of an hourly sentiment ranking.
type HourSentimentEntry struct {
	// Hour is the hour bucket key ("2006-01-02 15" layout).
	Hour string `json:"hour"`

	// Sentiment is the summed sentiment for the hour.
	Sentiment float64 `json:"sentiment"`
}

// DaySentimentEntry is one row of a daily sentiment ranking.
type DaySentimentEntry struct {
	// Day is the day bucket key ("2006-01-02" layout).
	Day string `json:"day"`

	// Sentiment is the summed sentiment for the day.
	Sentiment float64 `json:"sentiment"`
}

// UserSentimentEntry is one row of a per-user ranking.
type UserSentimentEntry struct {
	// ID is the account ID.
	ID string `json:"id"`

	// Username is the account's username.
	Username string `json:"username"`

	// Sentiment is the user's summed sentiment.
	Sentiment float64 `json:"sentiment"`

	// Posts is the user's post count.
	Posts int64 `json:"posts"`
}

// UserAverageEntry is one row of an average-sentiment ranking.
type UserAverageEntry struct {
	// ID is the account ID.
	ID string `json:"id"`

	// Username is the account's username.
	Username string `json:"username"`

	// AvgSentiment is the user's mean sentiment per post.
	AvgSentiment float64 `json:"avg_sentiment"`

	// Posts is the user's post count.
	Posts int64 `json:"posts"`
}

// HourCountEntry is one row of an hourly post-count ranking.
type HourCountEntry struct {
	// Hour is the hour bucket key.
	Hour string `json:"hour"`

	// Posts is the number of posts in the hour.
	Posts int64 `json:"posts"`
}

// LanguageEntry is one row of the language ranking.
type LanguageEntry struct {
	// Code is the language code as found in the data (e.g. "en").
	Code string `json:"code"`

	// Name is the English display name for the code, if resolvable.
	Name string `json:"name,omitempty"`

	// Posts is the number of posts in the language.
	Posts int64 `json:"posts"`
}

// SentimentStats describes the distribution of per-post sentiment scores.
type SentimentStats struct {
	// Mean is the arithmetic mean of the scores.
	Mean float64 `json:"mean"`

	// Median is the middle score (mean of the middle pair for even counts).
	Median float64 `json:"median"`

	// Std is the population standard deviation of the scores.
	Std float64 `json:"std"`

	// Min is the lowest score seen.
	Min float64 `json:"min"`

	// Max is the highest score seen.
	Max float64 `json:"max"`

	// TotalPosts is the number of scored posts.
	TotalPosts int64 `json:"total_posts"`
}
