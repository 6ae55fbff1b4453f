package observe

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	onlineParticipants = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_online_participants",
		Help: "Number of joined participants",
	})

	activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_active_sessions",
		Help: "Number of open client connections",
	})

	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total broadcast chat messages by origin",
		},
		[]string{"origin"}, // local|remote
	)

	deliveriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_deliveries_total",
		Help: "Total lines enqueued to recipients",
	})

	droppedMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_dropped_messages_total",
			Help: "Total deliveries skipped by reason",
		},
		[]string{"reason"}, // full|closed
	)

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_commands_total",
			Help: "Total commands executed by name",
		},
		[]string{"name"},
	)

	commandErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_command_errors_total",
			Help: "Total command errors by reason",
		},
		[]string{"reason"}, // name_taken|not_registered
	)

	framesRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_frames_rejected_total",
		Help: "Total inbound frames rejected as malformed",
	})
)

func init() {
	prometheus.MustRegister(
		onlineParticipants,
		activeSessions,
		messagesTotal,
		deliveriesTotal,
		droppedMessagesTotal,
		commandsTotal,
		commandErrorsTotal,
		framesRejectedTotal,
	)
}

func AddOnline(delta float64)       { onlineParticipants.Add(delta) }
func AddSession(delta float64)      { activeSessions.Add(delta) }
func IncMessage(origin string)      { messagesTotal.WithLabelValues(origin).Inc() }
func AddDelivered(n int)            { deliveriesTotal.Add(float64(n)) }
func IncDropped(reason string)      { droppedMessagesTotal.WithLabelValues(reason).Inc() }
func IncCommand(name string)        { commandsTotal.WithLabelValues(name).Inc() }
func IncCommandError(reason string) { commandErrorsTotal.WithLabelValues(reason).Inc() }
func IncRejectedFrame()             { framesRejectedTotal.Inc() }
