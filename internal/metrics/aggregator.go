package metrics

import (
	"sort"
	"time"

	"chat-insight-backend/internal/filter"
	"chat-insight-backend/internal/model"
	"chat-insight-backend/internal/util"

	"github.com/rs/zerolog/log"
)

type Aggregator interface {
	Aggregate(pairs []model.QAPair, feedback []model.ResolvedFeedback) model.Summary
}

type summaryAggregator struct {
	models *filter.ModelNormalizer
	loc    *time.Location
}

// NewAggregator buckets days in loc; nil means the process local zone.
func NewAggregator(models *filter.ModelNormalizer, loc *time.Location) Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &summaryAggregator{models: models, loc: loc}
}

type dayUserKey struct {
	day  string
	user string
}

// Aggregate recomputes the whole summary from scratch. Every ratio is zero
// when its denominator is zero.
func (a *summaryAggregator) Aggregate(pairs []model.QAPair, feedback []model.ResolvedFeedback) model.Summary {
	usage := usageRows(pairs, a.models)
	fbs := feedbackRows(feedback, a.models)

	summary := model.Summary{
		ModelStats:     make(map[string]model.GroupStats),
		UserStats:      make(map[string]model.GroupStats),
		DailyStats:     make(map[string]model.DailyStats),
		DailyUserStats: make([]model.DailyUserStats, 0),
	}
	chats := make(map[string]struct{})
	dailyUsers := make(map[dayUserKey]model.DailyUserStats)

	for _, u := range usage {
		chats[u.chatID] = struct{}{}
		summary.OverallStats.TotalUserTextLength += u.userLength
		summary.OverallStats.TotalAITextLength += u.aiLength

		summary.ModelStats[u.model] = addUsage(summary.ModelStats[u.model], u)
		summary.UserStats[u.user] = addUsage(summary.UserStats[u.user], u)

		day := util.Day(u.at, a.loc)
		d := summary.DailyStats[day]
		d.UsageCount++
		d.UserTextLength += u.userLength
		d.AITextLength += u.aiLength
		summary.DailyStats[day] = d

		k := dayUserKey{day: day, user: u.user}
		du := dailyUsers[k]
		du.UsageCount++
		du.UserTextLength += u.userLength
		du.AITextLength += u.aiLength
		dailyUsers[k] = du
	}

	for _, f := range fbs {
		ms := summary.ModelStats[f.model]
		ms.FeedbackCount++
		summary.ModelStats[f.model] = ms

		us := summary.UserStats[f.user]
		us.FeedbackCount++
		summary.UserStats[f.user] = us

		day := util.Day(f.at, a.loc)
		d := summary.DailyStats[day]
		d.FeedbackCount++
		d.Good, d.Bad, d.Improve = tallyRating(f.rating, d.Good, d.Bad, d.Improve)
		summary.DailyStats[day] = d

		k := dayUserKey{day: day, user: f.user}
		du := dailyUsers[k]
		du.FeedbackCount++
		du.Good, du.Bad, du.Improve = tallyRating(f.rating, du.Good, du.Bad, du.Improve)
		dailyUsers[k] = du
	}

	a.fillDayGaps(summary.DailyStats)
	for day, d := range summary.DailyStats {
		d.FeedbackRatio = ratio(d.FeedbackCount, d.UsageCount)
		d.ExcellentRate = ratio(d.Good, d.UsageCount)
		d.ErrorRate = ratio(d.Bad, d.UsageCount)
		d.ImproveRate = ratio(d.Improve, d.UsageCount)
		summary.DailyStats[day] = d
	}

	for k, du := range dailyUsers {
		du.CreatedAt = k.day
		du.UserName = k.user
		du.FeedbackRatio = ratio(du.FeedbackCount, du.UsageCount)
		du.ExcellentRate = ratio(du.Good, du.UsageCount)
		du.ErrorRate = ratio(du.Bad, du.UsageCount)
		du.ImproveRate = ratio(du.Improve, du.UsageCount)
		summary.DailyUserStats = append(summary.DailyUserStats, du)
	}
	sort.Slice(summary.DailyUserStats, func(i, j int) bool {
		x, y := summary.DailyUserStats[i], summary.DailyUserStats[j]
		if x.CreatedAt != y.CreatedAt {
			return x.CreatedAt < y.CreatedAt
		}
		return x.UserName < y.UserName
	})

	summary.OverallStats.TotalChats = len(chats)
	summary.OverallStats.TotalUserQueries = len(usage)
	summary.OverallStats.TotalFeedbacks = len(fbs)
	summary.OverallStats.FeedbackRatio = ratio(len(fbs), len(usage))

	log.Info().
		Int("queries", len(usage)).
		Int("dropped_queries", len(pairs)-len(usage)).
		Int("feedbacks", len(fbs)).
		Int("dropped_feedbacks", len(feedback)-len(fbs)).
		Int("days", len(summary.DailyStats)).
		Msg("Aggregated summary statistics")
	return summary
}

func addUsage(s model.GroupStats, u usageRow) model.GroupStats {
	s.UsageCount++
	s.UserTextLength += u.userLength
	s.AITextLength += u.aiLength
	return s
}

// fillDayGaps inserts zero rows for quiet days between the first and last
// active day, so daily series are continuous.
func (a *summaryAggregator) fillDayGaps(daily map[string]model.DailyStats) {
	if len(daily) < 2 {
		return
	}
	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)

	first, err := time.ParseInLocation(util.DayLayout, days[0], a.loc)
	if err != nil {
		return
	}
	last := days[len(days)-1]
	for t := first; ; t = t.AddDate(0, 0, 1) {
		day := t.Format(util.DayLayout)
		if day > last {
			return
		}
		if _, ok := daily[day]; !ok {
			daily[day] = model.DailyStats{}
		}
	}
}

func tallyRating(r model.Rating, good, bad, improve int) (int, int, int) {
	switch r {
	case model.RatingGood:
		good++
	case model.RatingBad:
		bad++
	case model.RatingImprove:
		improve++
	}
	return good, bad, improve
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
