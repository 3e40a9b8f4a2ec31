// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// JobStatus is the lifecycle state of a batch job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobSkipped    JobStatus = "skipped"
)

// Terminal reports whether no further transitions follow s.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobSkipped
}

// Overrides are caller-supplied values that take precedence over anything
// extracted. Only identifying fields can be overridden.
type Overrides struct {
	KitName       string `json:"kit_name,omitempty" yaml:"kit_name,omitempty" mapstructure:"kit_name"`
	CatalogNumber string `json:"catalog_number,omitempty" yaml:"catalog_number,omitempty" mapstructure:"catalog_number"`
	LotNumber     string `json:"lot_number,omitempty" yaml:"lot_number,omitempty" mapstructure:"lot_number"`
}

// Job is one unit of batch work: a source document plus its overrides.
type Job struct {
	// ID is unique within a run.
	ID string `json:"id" yaml:"id"`

	// Source is the opaque identity of the input, resolved by a Source reader.
	Source string `json:"source" yaml:"source"`

	Overrides Overrides `json:"overrides" yaml:"overrides"`
}

// JobEvent is a single progress transition published by a worker.
type JobEvent struct {
	JobID  string    `json:"job_id" yaml:"job_id"`
	Source string    `json:"source" yaml:"source"`
	Status JobStatus `json:"status" yaml:"status"`
	Output string    `json:"output,omitempty" yaml:"output,omitempty"`
	Error  string    `json:"error,omitempty" yaml:"error,omitempty"`
	Time   time.Time `json:"time" yaml:"time"`
}

// JobSuccess describes a job that produced an output document.
type JobSuccess struct {
	JobID    string    `json:"job_id" yaml:"job_id"`
	Source   string    `json:"source" yaml:"source"`
	Output   string    `json:"output" yaml:"output"`
	Warnings []Warning `json:"warnings" yaml:"warnings"`
}

// JobFailure describes a job that could not complete.
type JobFailure struct {
	JobID   string    `json:"job_id" yaml:"job_id"`
	Source  string    `json:"source" yaml:"source"`
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
	Err     error     `json:"-" yaml:"-"`
}

// Notice is an informational event of the batch run, such as a renamed
// output after a naming collision.
type Notice struct {
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	JobID   string    `json:"job_id" yaml:"job_id"`
	Message string    `json:"message" yaml:"message"`
}

// BatchReport summarises a batch run.
type BatchReport struct {
	RunID     string       `json:"run_id" yaml:"run_id"`
	Succeeded []JobSuccess `json:"succeeded" yaml:"succeeded"`
	Failed    []JobFailure `json:"failed" yaml:"failed"`
	Skipped   []string     `json:"skipped" yaml:"skipped"`
	Notices   []Notice     `json:"notices" yaml:"notices"`
}

// Total returns the number of jobs accounted for by the report.
func (r BatchReport) Total() int {
	return len(r.Succeeded) + len(r.Failed) + len(r.Skipped)
}

// HasFailures returns true if any job failed.
func (r BatchReport) HasFailures() bool {
	return len(r.Failed) > 0
}
