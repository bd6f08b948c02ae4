package domain

import (
	"context"
	"time"
)

// EventType defines the category of a build event.
type EventType string

const (
	EventBuildStart        EventType = "build_start"
	EventBuildFinish       EventType = "build_finish"
	EventNodeBuilt         EventType = "node_built"
	EventConnectionDropped EventType = "connection_dropped"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Graph     string    `json:"graph"`
}

// BuildEvent marks the start or the end of a build.
type BuildEvent struct {
	EventBase
	Nodes       int           `json:"nodes"`
	Connections int           `json:"connections"`
	Warnings    int           `json:"warnings,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Err         error         `json:"-"`
}

// NodeEvent reports a serialized node mapped to a runtime node.
type NodeEvent struct {
	EventBase
	NodeID   string   `json:"node_id"`
	Category Category `json:"category"`
	TypeID   string   `json:"type_id,omitempty"`
}

// ConnectionEvent reports a connection left out of the runtime graph.
type ConnectionEvent struct {
	EventBase
	Connection Connection `json:"connection"`
	Reason     string     `json:"reason"`
}

// LifecycleHooks defines callbacks for build observability.
type LifecycleHooks struct {
	OnBuildStart        func(context.Context, *BuildEvent)
	OnBuildFinish       func(context.Context, *BuildEvent)
	OnNodeBuilt         func(context.Context, *NodeEvent)
	OnConnectionDropped func(context.Context, *ConnectionEvent)
}
