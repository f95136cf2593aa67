package types

import "time"

// RawMemberEntry is one queue member as delivered by the status feed.
// MemberName follows the PBX provisioning convention "login:Display Name";
// entries without the separator are not genuine panel agents and are
// dropped by the reducer.
type RawMemberEntry struct {
	MemberName string `json:"membername"`
	Interface  string `json:"interface"` // e.g. "SIP/1001"
	Paused     string `json:"paused"`    // "0" | "1"
	Queue      string `json:"queue"`
	EventTime  string `json:"dataevento"` // RFC3339
}

// StatusBucket is one keyed record of the queue-status feed: all members
// of one queue currently in one raw status. The feed key is opaque;
// several buckets can map into the same queue after reduction.
type StatusBucket struct {
	Queue   string           `json:"queue"`
	Status  string           `json:"status"`
	Members []RawMemberEntry `json:"members"`
}

// QueueTotals is one record of the per-queue traffic feed.
type QueueTotals struct {
	Queue         string  `json:"queue"`
	AvgHandleTime float64 `json:"avgHandleTime"` // seconds (TMA)
	AvgWaitTime   float64 `json:"avgWaitTime"`   // seconds (TME)
	Abandoned     int     `json:"abandoned"`
	Answered      int     `json:"answered"`
	Waiting       int     `json:"waiting"` // callers currently in queue
}

// DirectoryEntry is one signed-in agent from the panel presence feed.
// Being present here is distinct from being a member of a PBX queue.
type DirectoryEntry struct {
	Login      string    `json:"login"`
	InternalID string    `json:"internalId,omitempty"`
	Ramal      string    `json:"ramal"`
	Reason     string    `json:"reason,omitempty"`
	Status     string    `json:"status,omitempty"`
	LastSeen   time.Time `json:"lastSeen"`
}

// QueueMeta is the authoritative queue registration: id and display name.
type QueueMeta struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StatusGroup is a reduced per-queue status bucket ready for display.
type StatusGroup struct {
	Status  string           `json:"status"`
	Label   string           `json:"label"`
	Members []RawMemberEntry `json:"members"`
}

// TransformedQueue is the per-queue rollup shown on the dashboard.
// TotalAgents always equals Available+Busy+Paused+Unavailable; members in
// unrecognized statuses are counted nowhere.
type TransformedQueue struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	TotalAgents int           `json:"totalAgents"`
	Available   int           `json:"availableAgents"`
	Busy        int           `json:"busyAgents"`
	Paused      int           `json:"pausedAgents"`
	Unavailable int           `json:"unavailableAgents"`
	QueueSize   int           `json:"queueSize"`
	Groups      []StatusGroup `json:"memberStatus"`
	Totals      QueueTotals   `json:"totals"`
}

// QueueRef is one queue membership carried on an agent view record.
type QueueRef struct {
	ID   string `json:"queueId"`
	Name string `json:"queueName"`
}

// AlertSeverity classifies an agent alert.
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// AgentAlert is an active alert condition on an agent view record.
type AgentAlert struct {
	Rule     string        `json:"rule"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// AgentView is the final display entity: one record per distinct
// login+ramal identity, with queue memberships accumulated across all
// queues the agent belongs to.
type AgentView struct {
	Key         string       `json:"key"` // login + "__" + ramal
	Login       string       `json:"login"`
	Name        string       `json:"name"`
	Initials    string       `json:"initials"`
	Ramal       string       `json:"ramal"`
	StatusCode  string       `json:"statusCode"`
	StatusLabel string       `json:"statusLabel"`
	StatusColor string       `json:"statusColor"`
	EventTime   time.Time    `json:"eventTime"` // last status transition
	Elapsed     string       `json:"elapsed"`   // hh:mm:ss since EventTime
	Queues      []QueueRef   `json:"queues"`
	LoggedIn    bool         `json:"isLoggedInPanel"`
	RealRamal   string       `json:"realRamal,omitempty"`
	Reason      string       `json:"reason,omitempty"`
	Alerts      []AgentAlert `json:"alerts,omitempty"`
}

// Stats holds the scalar dashboard KPIs derived from the final agent list.
type Stats struct {
	TotalAgents    int `json:"totalAgents"`
	Available      int `json:"availableAgents"`
	Busy           int `json:"busyAgents"`
	Ringing        int `json:"ringingAgents"`
	Waiting        int `json:"waitingAgents"`
	Paused         int `json:"pausedAgents"`
	Unavailable    int `json:"unavailableAgents"`
	TotalQueueSize int `json:"totalQueueSize"`
}

// Snapshot is the single payload broadcast to dashboard clients every tick.
type Snapshot struct {
	Type      string             `json:"type"` // always "snapshot"
	Timestamp time.Time          `json:"timestamp"`
	Queues    []TransformedQueue `json:"queues"`
	Agents    []AgentView        `json:"agents"`
	Stats     Stats              `json:"stats"`
}

// StatusTransition is one persisted agent status change, detected by the
// aggregator between consecutive snapshots.
type StatusTransition struct {
	DateKey      string    `json:"dateKey" dynamodbav:"DateKey"` // YYYY-MM-DD
	TransitionID string    `json:"transitionId" dynamodbav:"TransitionID"`
	Key          string    `json:"key" dynamodbav:"AgentKey"`
	Login        string    `json:"login" dynamodbav:"Login"`
	Ramal        string    `json:"ramal" dynamodbav:"Ramal"`
	FromStatus   string    `json:"fromStatus" dynamodbav:"FromStatus"`
	ToStatus     string    `json:"toStatus" dynamodbav:"ToStatus"`
	FromLabel    string    `json:"fromLabel" dynamodbav:"FromLabel"`
	ToLabel      string    `json:"toLabel" dynamodbav:"ToLabel"`
	Queues       []string  `json:"queues" dynamodbav:"Queues"`
	Timestamp    time.Time `json:"timestamp" dynamodbav:"Timestamp"`
}
