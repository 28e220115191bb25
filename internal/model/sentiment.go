package model

// SentimentDistribution counts reviews per sentiment bucket. Bucketing is by
// compound score: >0.1 positive, <-0.1 negative, else neutral.
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// BusinessSentiment is the aggregate sentiment for one business's reviews.
type BusinessSentiment struct {
	AvgSentiment   float64               `json:"avg_sentiment"`
	Distribution   SentimentDistribution `json:"sentiment_distribution"`
	TotalAnalyzed  int                   `json:"total_reviews_analyzed"`
	TopTopics      map[string]int        `json:"top_topics"`
	SentimentScore float64               `json:"sentiment_score"`
}
