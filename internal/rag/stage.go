package rag

import "fmt"

// Stage names a step of the answer pipeline.
type Stage string

const (
	StageValidating Stage = "validating"
	StageEmbedding  Stage = "embedding"
	StageSearching  Stage = "searching"
	StageAssembling Stage = "assembling"
	StageGenerating Stage = "generating"
	StageDone       Stage = "done"
)

// StageError reports the stage at which a pipeline run failed. The cause stays reachable
// through errors.As and errors.Is.
type StageError struct {
	Stage Stage
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error { return e.Cause }
