package sheets

// Tab names written by the report writer, in sheet order.
const (
	TabSummary    = "Summary"
	TabComponents = "Components"
	TabGroups     = "Major Groups"
	TabHeatmap    = "Heatmap"
)

// Tabs lists every tab of a report in sheet order.
func Tabs() []string {
	return []string{TabSummary, TabComponents, TabGroups, TabHeatmap}
}

// TabData holds the cell values of every tab of one report.
type TabData struct {
	Summary    [][]any
	Components [][]any
	Groups     [][]any
	Heatmap    [][]any
}

// Values returns the rows for the named tab.
func (d TabData) Values(tab string) [][]any {
	switch tab {
	case TabSummary:
		return d.Summary
	case TabComponents:
		return d.Components
	case TabGroups:
		return d.Groups
	case TabHeatmap:
		return d.Heatmap
	default:
		return nil
	}
}

// headerRows is how many leading rows of each tab are frozen and bolded.
var headerRows = map[string]int64{
	TabSummary:    1,
	TabComponents: 1,
	TabGroups:     1,
	TabHeatmap:    1,
}
