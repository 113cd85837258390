package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Extractions counts AI task-extraction runs by input source and outcome.
var Extractions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "acadease",
	Name:      "extractions_total",
	Help:      "AI task extraction runs by source (image|audio) and status (ok|error).",
}, []string{"source", "status"})

// ChatRequests counts contextual chat calls by outcome.
var ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "acadease",
	Name:      "chat_requests_total",
	Help:      "Contextual AI chat requests by status (ok|error).",
}, []string{"status"})

// GatewayRequests counts calls to the hosted data store by operation and outcome.
var GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "acadease",
	Name:      "gateway_requests_total",
	Help:      "Remote data gateway calls by operation and status (ok|error).",
}, []string{"operation", "status"})

// ImportedTasks counts tasks created through the classroom import flow.
var ImportedTasks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "acadease",
	Name:      "imported_tasks_total",
	Help:      "Tasks imported from classroom assignments.",
})

// TranscriptionPolls counts speech-to-text status polls.
var TranscriptionPolls = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "acadease",
	Name:      "transcription_polls_total",
	Help:      "Polls issued against the speech-to-text provider.",
})
