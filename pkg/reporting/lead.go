package reporting

import (
	"log/slog"
	"sort"

	"github.com/annoflow/annoflow/internal/model"
)

// UntaggedGroup collects summaries whose project carries no tags.
const UntaggedGroup = "untagged"

// UniqueTags lists every tag present across the summaries, sorted.
// Summaries without tags contribute the untagged group.
func UniqueTags(summaries []*model.ProjectSummary) []string {
	seen := make(map[string]struct{})
	for _, summary := range summaries {
		if len(summary.ProjectTags) == 0 {
			seen[UntaggedGroup] = struct{}{}
			continue
		}
		for _, tag := range summary.ProjectTags {
			seen[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// GroupByTag buckets summaries per tag. A summary with several tags
// appears in each of its groups; one with none lands in the untagged
// group. Group members keep their input order.
func GroupByTag(summaries []*model.ProjectSummary) map[string][]*model.ProjectSummary {
	groups := make(map[string][]*model.ProjectSummary)
	for _, summary := range summaries {
		tags := summary.ProjectTags
		if len(tags) == 0 {
			slog.Warn("project summary has no tags", "project", summary.ProjectName, "group", UntaggedGroup)
			tags = []string{UntaggedGroup}
		}
		for _, tag := range tags {
			groups[tag] = append(groups[tag], summary)
		}
	}
	return groups
}

// Rollup is the cross-project view over one group of summaries.
type Rollup struct {
	Tag              string
	Projects         []string
	DocCategories    map[string]int
	TokenCategories  map[string]int
	TypeTotals       map[string]int
	Progress         model.Progress
	SkippedRecords   int
	MissingEstimates int
}

// BuildRollup folds a group of project summaries into one view.
// Document and token categories add up directly. The combined percent
// weighs each project by its document count, so a ten-document pilot
// cannot drag down a thousand-document effort. Remaining-time
// estimates add only across projects that have one; projects without
// are counted in MissingEstimates and the roll-up estimate stays
// unavailable unless every member contributed.
func BuildRollup(tag string, summaries []*model.ProjectSummary) Rollup {
	rollup := Rollup{
		Tag:             tag,
		DocCategories:   make(map[string]int),
		TokenCategories: make(map[string]int),
		TypeTotals:      make(map[string]int),
	}

	var remainingSeconds float64
	estimated := 0
	for _, summary := range summaries {
		rollup.Projects = append(rollup.Projects, summary.ProjectName)
		for state, count := range summary.DocCategories {
			rollup.DocCategories[state] += count
		}
		for state, count := range summary.TokenCategories {
			rollup.TokenCategories[state] += count
		}
		for name, entry := range summary.TypeCounts {
			rollup.TypeTotals[name] += entry.Total
		}
		rollup.SkippedRecords += summary.SkippedRecords

		rollup.Progress.FinishedDocuments += summary.Progress.FinishedDocuments
		rollup.Progress.TotalDocuments += summary.Progress.TotalDocuments
		if summary.Progress.Available {
			remainingSeconds += summary.Progress.EstimatedRemainingSeconds
			estimated++
		}
	}
	sort.Strings(rollup.Projects)

	rollup.Progress.RemainingDocuments = rollup.Progress.TotalDocuments - rollup.Progress.FinishedDocuments
	if rollup.Progress.TotalDocuments > 0 {
		rollup.Progress.PercentComplete = float64(rollup.Progress.FinishedDocuments) /
			float64(rollup.Progress.TotalDocuments) * 100
	}
	rollup.MissingEstimates = len(summaries) - estimated
	if estimated > 0 && rollup.MissingEstimates == 0 {
		rollup.Progress.EstimatedRemainingSeconds = remainingSeconds
		rollup.Progress.Available = true
	}
	return rollup
}

// BuildRollups produces one roll-up per tag group, ordered by tag.
func BuildRollups(summaries []*model.ProjectSummary) []Rollup {
	groups := GroupByTag(summaries)
	rollups := make([]Rollup, 0, len(groups))
	for _, tag := range sortedKeys(groups) {
		rollups = append(rollups, BuildRollup(tag, groups[tag]))
	}
	return rollups
}
