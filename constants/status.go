package constants

// JobStatus is the canonical status for rows in generation_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusRunning    JobStatus = "RUNNING"     // in progress
	JobStatusOK         JobStatus = "OK"          // completed with model output
	JobStatusEmptyInput JobStatus = "EMPTY_INPUT" // skipped, nothing to send
	JobStatusFailed     JobStatus = "FAILED"      // terminal failure
	JobStatusSkipped    JobStatus = "SKIPPED"     // prerequisite missing
)

// JobStage names the step a ledger row describes.
type JobStage string

const (
	StageExtract  JobStage = "EXTRACT"
	StageGenerate JobStage = "GENERATE"
)
