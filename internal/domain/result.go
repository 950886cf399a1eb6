package domain

// PipelineResult is everything one pipeline run produced. It holds no
// timestamps or generated IDs, so equal inputs against a deterministic backend
// give equal results.
type PipelineResult struct {
	ProductInfo   ProductInfo   `json:"product_info"`
	Stages        Stages        `json:"stages"`
	FinalAdScript string        `json:"final_ad_script"`
	Platform      Platform      `json:"platform"`
	Configuration Configuration `json:"configuration"`
	Runbook       RunbookInfo   `json:"runbook"`
}

type Stages struct {
	Research       *ResearchStage       `json:"research,omitempty"`
	DataCollection *DataCollectionStage `json:"data_collection,omitempty"`
	Analysis       *AnalysisStage       `json:"analysis,omitempty"`
	Copywriting    *CopywritingStage    `json:"copywriting,omitempty"`
	Review         *Review              `json:"review,omitempty"`
}

type ResearchStage struct {
	Sources []string `json:"subreddits"`
	Queries []string `json:"queries"`
}

type DataCollectionStage struct {
	PostsCount int  `json:"posts_count"`
	Skipped    bool `json:"skipped"`
}

type AnalysisMode string

const (
	AnalysisFromData  AnalysisMode = "collected_data"
	AnalysisSynthesis AnalysisMode = "direct_synthesis"
)

type AnalysisStage struct {
	Insights
	Mode          AnalysisMode `json:"mode"`
	RelevantPosts int          `json:"relevant_posts"`
}

type CopywritingStage struct {
	OriginalScript string   `json:"original_script"`
	Platform       Platform `json:"platform"`
}

type Configuration struct {
	Provider          string   `json:"llm_provider"`
	Model             string   `json:"model_name"`
	SkipReddit        bool     `json:"skip_reddit"`
	Platform          Platform `json:"platform"`
	SaveIntermediates bool     `json:"save_intermediates"`
	GenerateRunbook   bool     `json:"generate_runbook"`
}

// RunbookInfo records what happened to the optional runbook stage.
type RunbookInfo struct {
	Generated bool   `json:"generated"`
	Path      string `json:"path,omitempty"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// MultiPlatformResult collects one result per platform for the "all" tag.
type MultiPlatformResult struct {
	Results map[Platform]*PipelineResult `json:"results"`
	Errors  map[Platform]string          `json:"errors,omitempty"`
}
