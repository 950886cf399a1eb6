package domain

// Review is the critique produced by the review stage.
type Review struct {
	Score                    FlexNumber `json:"score"`
	Strengths                StringList `json:"strengths"`
	Weaknesses               StringList `json:"weaknesses"`
	Suggestions              StringList `json:"suggestions"`
	PlatformSpecificFeedback FlexText   `json:"platform_specific_feedback"`
	ImprovedScript           FlexText   `json:"improved_script"`
	Platform                 Platform   `json:"platform"`
}
