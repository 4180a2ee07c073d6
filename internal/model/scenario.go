package model

// ScenarioInfo describes a scenario for presentation.
type ScenarioInfo struct {
	ID                  Scenario `yaml:"id"`
	Name                string   `yaml:"name"`
	Subtitle            string   `yaml:"subtitle"`
	Description         string   `yaml:"description"`
	TenYearProductivity string   `yaml:"ten_year_productivity"`
	TenYearCPIImpact    string   `yaml:"ten_year_cpi_impact"`
	AlignedWith         string   `yaml:"aligned_with"`
	KeyAssumptions      []string `yaml:"key_assumptions"`
}

// Citation is a research source backing one or more modifiers.
type Citation struct {
	ID          string   `yaml:"id"`
	ShortName   string   `yaml:"short_name"`
	Authors     string   `yaml:"authors"`
	Title       string   `yaml:"title"`
	Source      string   `yaml:"source"`
	URL         string   `yaml:"url"`
	Summary     string   `yaml:"summary"`
	KeyFindings []string `yaml:"key_findings"`
	Year        int      `yaml:"year"`
}
