package core

const ToolName = "lintdetector"

// Version is replaced at build time by the CLI.
var Version = "dev"

// RunIDKey is the AnalysisResult.UserData key holding the unique id of a run.
const RunIDKey = "runId"

// RunID returns the run id stored in the result, if any.
func (r *AnalysisResult) RunID() string {
	id, _ := r.UserData[RunIDKey].(string)
	return id
}
