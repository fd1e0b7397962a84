package domain

import "time"

const (
	// DefaultEmergencyMessage is shown while no emergency is active.
	DefaultEmergencyMessage = "Situasi sudah aman."

	// DefaultAlarmMessage is pushed when an alarm is raised without a message.
	DefaultAlarmMessage = "Segera evakuasi!"

	// DefaultAlarmTitle is the push title for raised alarms.
	DefaultAlarmTitle = "PERINGATAN DARURAT"

	// ClearTitle is the push title for cleared alarms.
	ClearTitle = "Situasi Aman"

	// EmergencyAlarmType and EmergencyStopType are the "type" data values
	// the mobile client switches on.
	EmergencyAlarmType = "EMERGENCY_ALARM"
	EmergencyStopType  = "EMERGENCY_STOP"

	// EmergencySound is the device sound requested for emergency pushes.
	EmergencySound = "default"
)

// EmergencyState is the manually raised evacuation alarm.
type EmergencyState struct {
	Active    bool      `json:"active"`
	Level     string    `json:"level,omitempty"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultEmergencyState returns the inactive state used before any alarm was raised.
func DefaultEmergencyState() EmergencyState {
	return EmergencyState{
		Message:   DefaultEmergencyMessage,
		UpdatedAt: Now(),
	}
}

// Normalize fills fields missing from an older or partial record.
func (s EmergencyState) Normalize() EmergencyState {
	if s.Message == "" {
		s.Message = DefaultEmergencyMessage
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = Now()
	}
	return s
}

// NewAlarmNotification builds the push message for a raised alarm.
func NewAlarmNotification(topic, title string, s EmergencyState) NotificationPayload {
	if title == "" {
		title = DefaultAlarmTitle
	}
	return NotificationPayload{
		Topic: topic,
		Title: title,
		Body:  s.Message,
		Sound: EmergencySound,
		Data: map[string]string{
			"type":    EmergencyAlarmType,
			"active":  "1",
			"ts_utc":  s.UpdatedAt.Format(time.RFC3339),
			"level":   s.Level,
			"message": s.Message,
			"title":   title,
		},
	}
}

// NewClearNotification builds the push message for a cleared alarm.
func NewClearNotification(topic string, s EmergencyState) NotificationPayload {
	return NotificationPayload{
		Topic: topic,
		Title: ClearTitle,
		Body:  s.Message,
		Sound: EmergencySound,
		Data: map[string]string{
			"type":    EmergencyStopType,
			"active":  "0",
			"ts_utc":  s.UpdatedAt.Format(time.RFC3339),
			"message": s.Message,
			"title":   ClearTitle,
		},
	}
}
