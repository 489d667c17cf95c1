package graph

import (
	"context"
	"sync"
	"time"

	"github.com/mahmoud-mohsen97/Chat-Agents/log"
)

// NodeEvent is the kind of notification a listener receives.
type NodeEvent string

const (
	// NodeEventStart is emitted before a node runs
	NodeEventStart NodeEvent = "node_start"
	// NodeEventComplete is emitted after a node returns successfully
	NodeEventComplete NodeEvent = "node_complete"
	// NodeEventRetry is emitted before a failed node is re-run
	NodeEventRetry NodeEvent = "node_retry"
	// NodeEventError is emitted when a node fails for good
	NodeEventError NodeEvent = "node_error"
)

// NodeListener observes node executions.
type NodeListener[S any] interface {
	OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, err error)
}

// NodeListenerFunc is a function adapter for NodeListener
type NodeListenerFunc[S any] func(ctx context.Context, event NodeEvent, nodeName string, state S, err error)

// OnNodeEvent implements the NodeListener interface
func (f NodeListenerFunc[S]) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, err error) {
	f(ctx, event, nodeName, state, err)
}

// LoggingListener writes node events and durations to a Logger.
type LoggingListener[S any] struct {
	logger log.Logger
	prefix string

	mu     sync.Mutex
	starts map[string]time.Time
}

// NewLoggingListener creates a listener logging through logger; a nil logger
// uses the package default.
func NewLoggingListener[S any](logger log.Logger, prefix string) *LoggingListener[S] {
	return &LoggingListener[S]{
		logger: log.OrDefault(logger),
		prefix: prefix,
		starts: make(map[string]time.Time),
	}
}

func (l *LoggingListener[S]) OnNodeEvent(_ context.Context, event NodeEvent, nodeName string, _ S, err error) {
	switch event {
	case NodeEventStart:
		l.mu.Lock()
		l.starts[nodeName] = time.Now()
		l.mu.Unlock()
		l.logger.Debug("%s---%s---", l.prefix, nodeName)
	case NodeEventComplete:
		l.logger.Debug("%snode %s completed in %v", l.prefix, nodeName, l.elapsed(nodeName))
	case NodeEventRetry:
		l.logger.Warn("%snode %s failed, retrying: %v", l.prefix, nodeName, err)
	case NodeEventError:
		l.logger.Error("%snode %s failed after %v: %v", l.prefix, nodeName, l.elapsed(nodeName), err)
	}
}

func (l *LoggingListener[S]) elapsed(nodeName string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	start, ok := l.starts[nodeName]
	if !ok {
		return 0
	}
	delete(l.starts, nodeName)
	return time.Since(start).Round(time.Millisecond)
}

// PathRecorder collects the names of completed nodes in execution order.
type PathRecorder[S any] struct {
	mu   sync.Mutex
	path []string
}

func (p *PathRecorder[S]) OnNodeEvent(_ context.Context, event NodeEvent, nodeName string, _ S, _ error) {
	if event != NodeEventComplete {
		return
	}
	p.mu.Lock()
	p.path = append(p.path, nodeName)
	p.mu.Unlock()
}

// Path returns a copy of the recorded node names.
func (p *PathRecorder[S]) Path() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.path...)
}
