package analyze

import (
	"bytes"

	"github.com/manishghoshal99/mastolytics/internal/model"
)

// Aggregator accumulates analysis state over a stream of NDJSON lines.
// It is not safe for concurrent use; parallel processing gives each
// shard worker its own Aggregator and merges them afterwards.
type Aggregator struct {
	// Processed counts lines that contributed to the aggregates.
	Processed int64

	// Skipped counts blank, malformed, and incomplete lines.
	Skipped int64

	// HourSentiment maps hour bucket keys to sentiment sums.
	HourSentiment map[string]float64

	// DaySentiment maps day bucket keys to sentiment sums.
	DaySentiment map[string]float64

	// Users maps account IDs to per-user accumulations.
	Users map[string]*model.UserStat

	// Languages maps language codes to post counts.
	Languages map[string]int64

	// HourPosts maps hour bucket keys to post counts.
	HourPosts map[string]int64

	// Interactions holds running interaction totals.
	Interactions model.Interactions

	// Sentiments is the stream of per-post sentiment scores.
	Sentiments []float64
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		HourSentiment: make(map[string]float64),
		DaySentiment:  make(map[string]float64),
		Users:         make(map[string]*model.UserStat),
		Languages:     make(map[string]int64),
		HourPosts:     make(map[string]int64),
	}
}

// Process consumes one NDJSON line.
// Blank lines, malformed JSON, and records missing the creation timestamp
// or account ID are counted as skipped; they never fail the run.
// A record whose timestamp is present but unparseable still contributes
// to the per-user and language aggregates, only the temporal buckets
// are skipped for it.
func (a *Aggregator) Process(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		a.Skipped++
		return
	}

	post, err := model.ParsePost(line)
	if err != nil || !post.Valid() {
		a.Skipped++
		return
	}

	if ts, err := post.Time(); err == nil {
		hour := model.HourKey(ts)
		a.HourSentiment[hour] += post.Sentiment
		a.DaySentiment[model.DayKey(ts)] += post.Sentiment
		a.HourPosts[hour]++
	}

	if stat, ok := a.Users[post.UserID]; ok {
		stat.Username = post.Username
		stat.Sentiment += post.Sentiment
		stat.Posts++
	} else {
		a.Users[post.UserID] = &model.UserStat{
			Username:  post.Username,
			Sentiment: post.Sentiment,
			Posts:     1,
		}
	}

	if post.Language != "" {
		a.Languages[post.Language]++
	}
	if post.Reply {
		a.Interactions.Replies++
	}
	if post.Reblog {
		a.Interactions.Reblogs++
	}
	a.Interactions.Favourites += post.Favourites

	a.Sentiments = append(a.Sentiments, post.Sentiment)
	a.Processed++
}

// Merge folds another aggregator's state into this one.
// Merging is associative and commutative except for usernames, where the
// other aggregator's (later shard's) username wins on conflict.
func (a *Aggregator) Merge(other *Aggregator) {
	a.Processed += other.Processed
	a.Skipped += other.Skipped

	for k, v := range other.HourSentiment {
		a.HourSentiment[k] += v
	}
	for k, v := range other.DaySentiment {
		a.DaySentiment[k] += v
	}
	for k, v := range other.HourPosts {
		a.HourPosts[k] += v
	}
	for k, v := range other.Languages {
		a.Languages[k] += v
	}

	for id, stat := range other.Users {
		if existing, ok := a.Users[id]; ok {
			existing.Username = stat.Username
			existing.Sentiment += stat.Sentiment
			existing.Posts += stat.Posts
		} else {
			a.Users[id] = &model.UserStat{
				Username:  stat.Username,
				Sentiment: stat.Sentiment,
				Posts:     stat.Posts,
			}
		}
	}

	a.Interactions.Replies += other.Interactions.Replies
	a.Interactions.Reblogs += other.Interactions.Reblogs
	a.Interactions.Favourites += other.Interactions.Favourites

	a.Sentiments = append(a.Sentiments, other.Sentiments...)
}

// Fill copies the aggregates into an analysis report.
func (a *Aggregator) Fill(report *model.AnalysisReport) {
	report.ProcessedLines = a.Processed
	report.SkippedLines = a.Skipped
	report.HourSentiment = a.HourSentiment
	report.DaySentiment = a.DaySentiment
	report.UserSentiment = a.Users
	report.LanguageCounts = a.Languages
	report.HourPostCounts = a.HourPosts
	report.Interactions = a.Interactions
	report.SentimentValues = a.Sentiments
}
