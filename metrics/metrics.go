package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OTPSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_otp_sent_total",
		Help: "OTP deliveries by channel, provider and result.",
	}, []string{"channel", "provider", "result"})

	NotificationStages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_notification_stage_total",
		Help: "Notification dispatcher stage outcomes.",
	}, []string{"stage", "result"})

	AppointmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_appointments_created_total",
		Help: "Appointments successfully booked.",
	})

	AppointmentStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_appointment_status_changes_total",
		Help: "Appointment status transitions by target status.",
	}, []string{"status"})

	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "booking_realtime_connections",
		Help: "Open websocket connections.",
	})
)
