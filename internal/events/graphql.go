package events

import "time"

// GraphQLStart is emitted after a document passes validation, right before
// the executor runs it.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is emitted once the executor returns. Errors holds the
// located execution errors of the result; syntax and validation failures
// never reach the executor and produce no event pair.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}
