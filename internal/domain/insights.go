package domain

// Insights is the analysis stage output that copywriting and review consume.
type Insights struct {
	PainPoints StringList `json:"pain_points"`
	Language   StringList `json:"language"`
	Topics     StringList `json:"topics"`
	Summary    FlexText   `json:"insights"`
}

// Complete reports whether every field carries content.
func (i Insights) Complete() bool {
	return len(i.PainPoints) > 0 && len(i.Language) > 0 && len(i.Topics) > 0 && i.Summary != ""
}
