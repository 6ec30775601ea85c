package reporting

import (
	"time"

	"github.com/annoflow/annoflow/internal/model"
)

// EstimateProgress computes completion percentage and a linear
// remaining-time projection. The projection needs at least two
// finished documents and some observed active time; below that the
// result reports Available=false ("insufficient data"), never an
// error and never a silent zero.
func EstimateProgress(statuses map[string]model.DocumentStatus, activeByDocument map[string]time.Duration, totalDocuments int) model.Progress {
	finished := 0
	var finishedActive time.Duration
	for document, status := range statuses {
		if status == model.StatusFinished {
			finished++
			finishedActive += activeByDocument[document]
		}
	}
	if totalDocuments < finished {
		totalDocuments = finished
	}

	progress := model.Progress{
		FinishedDocuments:  finished,
		TotalDocuments:     totalDocuments,
		RemainingDocuments: totalDocuments - finished,
	}
	if totalDocuments > 0 {
		progress.PercentComplete = float64(finished) / float64(totalDocuments) * 100
	}

	if finished < 2 || finishedActive <= 0 {
		return progress
	}

	perDocument := finishedActive / time.Duration(finished)
	progress.EstimatedRemainingSeconds = perDocument.Seconds() * float64(progress.RemainingDocuments)
	progress.Available = true
	return progress
}
