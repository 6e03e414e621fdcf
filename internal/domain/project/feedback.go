package project

import "time"

// FeedbackType distinguishes design feedback from review feedback.
type FeedbackType string

const (
	FeedbackDesign FeedbackType = "design"
	FeedbackReview FeedbackType = "review"
)

// IsValid returns true if the type is one of the defined constants.
func (t FeedbackType) IsValid() bool {
	return t == FeedbackDesign || t == FeedbackReview
}

// FeedbackStatus is the resolution state of a feedback entry.
type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "pending"
	FeedbackResolved FeedbackStatus = "resolved"
)

// Rating classifies a single feedback item.
type Rating string

const (
	RatingPositive Rating = "positive"
	RatingNegative Rating = "negative"
	RatingNeutral  Rating = "neutral"
)

// IsValid returns true if the rating is one of the defined constants.
func (r Rating) IsValid() bool {
	return r == RatingPositive || r == RatingNegative || r == RatingNeutral
}

// FeedbackItem is one rated remark inside a feedback entry.
type FeedbackItem struct {
	Rating   Rating `json:"rating"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// FeedbackEntry records design/review commentary submitted pre-live, during
// the feedback and revisie phases. It is distinct from post-live change
// requests. A pending entry containing negative items blocks the project
// from leaving feedback/revisie unless a developer overrides.
type FeedbackEntry struct {
	ID         string         `json:"id"`
	Date       time.Time      `json:"date"`
	Type       FeedbackType   `json:"type"`
	Items      []FeedbackItem `json:"items"`
	Status     FeedbackStatus `json:"status"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
}

// HasNegativeItems returns true if any item in the entry is rated negative.
func (f *FeedbackEntry) HasNegativeItems() bool {
	for _, item := range f.Items {
		if item.Rating == RatingNegative {
			return true
		}
	}
	return false
}
