package model

// QuestionRecord is a single prompt within a topic's question set. Records are
// immutable once loaded, except that the session machine may splice synthetic
// follow-up records (IsFollowUp=true) into its working copy of the list.
type QuestionRecord struct {
	ID         int      `json:"id" bson:"id"`
	Question   string   `json:"question" bson:"question"`
	Category   string   `json:"category" bson:"category"`
	Answer     string   `json:"answer,omitempty" bson:"answer,omitempty"` // reference answer, shown in learning mode only
	FollowUps  []string `json:"followUps,omitempty" bson:"followUps,omitempty"`
	IsFollowUp bool     `json:"isFollowUp,omitempty" bson:"isFollowUp,omitempty"`
}
