package main

import (
	"github.com/schollz/progressbar/v3"
)

// newAnalysisBar builds the progress bar shown while a query moves
// through the analysis pipeline. Progress values come straight from the
// agent's step markers (0-100).
func newAnalysisBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetDescription("analyzing"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
	)
}
