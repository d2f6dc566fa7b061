package feedback

import "chat-insight-backend/internal/model"

const (
	statusStepOn  = "stepOn"
	statusLike    = "like"
	statusImprove = "improve"
)

type Classification struct {
	Rating  model.Rating
	Comment string
}

// Actionable reports whether the event carries a usable signal. Only actionable
// events reach any output.
func (c Classification) Actionable() bool {
	return c.Rating == model.RatingGood || c.Rating == model.RatingBad || c.Rating == model.RatingImprove
}

// Classify maps either schema onto one rating. A signed rating of -1/+1 or the
// latest status (stepOn, like, improve) decides; a negative signal in either
// field takes precedence over a positive one. An explicit comment field
// overrides the per-type free text.
func Classify(sig model.FeedbackSignal) Classification {
	status := ""
	if n := len(sig.Statuses); n > 0 {
		status = sig.Statuses[n-1]
	}

	var c Classification
	switch {
	case ratingIs(sig.Rating, -1) || status == statusStepOn:
		c = Classification{Rating: model.RatingBad, Comment: sig.RatingText}
	case ratingIs(sig.Rating, 1) || status == statusLike:
		c = Classification{Rating: model.RatingGood, Comment: sig.RatingText}
	case status == statusImprove:
		c = Classification{Rating: model.RatingImprove, Comment: sig.ImproveText}
	default:
		return Classification{Rating: model.RatingUnknown}
	}
	if sig.Comment != nil {
		c.Comment = *sig.Comment
	}
	return c
}

func ratingIs(r *float64, v float64) bool {
	return r != nil && *r == v
}
