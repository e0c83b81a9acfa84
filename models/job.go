package models

import "time"

// JobStatus is a job's position in the lifecycle state machine.
type JobStatus string

const (
	JobStatusRequested  JobStatus = "REQUESTED"
	JobStatusAccepted   JobStatus = "ACCEPTED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusRejected   JobStatus = "REJECTED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

// IsTerminal reports whether no further transitions leave this status.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusRejected, JobStatusCancelled:
		return true
	}
	return false
}

// Valid reports whether s is one of the known lifecycle statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusRequested, JobStatusAccepted, JobStatusInProgress,
		JobStatusCompleted, JobStatusRejected, JobStatusCancelled:
		return true
	}
	return false
}

// Job is a customer's service request against a technician. Status is only
// ever mutated through the lifecycle manager's transition table.
type Job struct {
	ID             string    `json:"id" dynamodbav:"id"`
	CustomerID     string    `json:"customerId" dynamodbav:"customer_id"`
	TechnicianID   string    `json:"technicianId" dynamodbav:"technician_id"`
	Date           string    `json:"date" dynamodbav:"date"`
	Time           string    `json:"time" dynamodbav:"time"`
	Description    string    `json:"description" dynamodbav:"description"`
	Status         JobStatus `json:"status" dynamodbav:"status"`
	CustomerName   string    `json:"customerName,omitempty" dynamodbav:"customer_name,omitempty"`
	TechnicianName string    `json:"technicianName,omitempty" dynamodbav:"technician_name,omitempty"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}
