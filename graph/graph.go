package graph

import (
	"errors"
	"fmt"
	"time"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrDuplicateNode is returned when two nodes are registered under one name.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrAmbiguousEdge is returned when a node has more than one way out.
	ErrAmbiguousEdge = errors.New("node has more than one outgoing edge")

	// ErrInvalidRoute is returned when a conditional edge picks a target it did not declare.
	ErrInvalidRoute = errors.New("conditional edge returned an undeclared target")

	// ErrRecursionLimit is returned when a run executes more steps than allowed.
	ErrRecursionLimit = errors.New("recursion limit reached")

	// ErrContractViolation is returned when a node changes a field it did not declare.
	ErrContractViolation = errors.New("node write contract violated")
)

// DefaultRecursionLimit bounds the number of node executions in one run.
const DefaultRecursionLimit = 25

// MaxNodeRetries is the most times the executor re-runs a failing node.
const MaxNodeRetries = 1

// Edge represents a static edge in the graph.
type Edge struct {
	// From is the name of the node from which the edge originates.
	From string

	// To is the name of the node to which the edge points.
	To string
}

// NodeError wraps an error returned by (or recovered from) a node.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("error in node %s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// ContractViolation describes fields a node changed without declaring them.
type ContractViolation struct {
	Node   string
	Fields []string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("node %s wrote undeclared fields %v", e.Node, e.Fields)
}

func (e *ContractViolation) Unwrap() error {
	return ErrContractViolation
}

// BackoffStrategy defines the delay applied before a retry
type BackoffStrategy int

const (
	// FixedBackoff waits BaseDelay before every retry
	FixedBackoff BackoffStrategy = iota
	// ExponentialBackoff doubles the delay on each attempt
	ExponentialBackoff
	// LinearBackoff grows the delay by BaseDelay on each attempt
	LinearBackoff
)

// RetryPolicy defines how to handle node failures. A node is retried only
// when its error matches one of RetryableErrors under errors.Is, and never
// more than MaxNodeRetries times.
type RetryPolicy struct {
	MaxRetries      int
	BackoffStrategy BackoffStrategy
	BaseDelay       time.Duration
	RetryableErrors []error
}

func (p *RetryPolicy) attempts() int {
	if p == nil || p.MaxRetries <= 0 {
		return 1
	}
	return min(p.MaxRetries, MaxNodeRetries) + 1
}

func (p *RetryPolicy) retryable(err error) bool {
	if p == nil {
		return false
	}
	for _, target := range p.RetryableErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (p *RetryPolicy) delay(attempt int) time.Duration {
	if p == nil || p.BaseDelay <= 0 {
		return 0
	}
	switch p.BackoffStrategy {
	case ExponentialBackoff:
		return p.BaseDelay * time.Duration(1<<attempt)
	case LinearBackoff:
		return p.BaseDelay * time.Duration(attempt+1)
	default:
		return p.BaseDelay
	}
}
