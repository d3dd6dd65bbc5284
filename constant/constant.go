package constant

type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusLive      SessionStatus = "live"
	SessionStatusEnded     SessionStatus = "ended"
)

func (s SessionStatus) String() string {
	return string(s)
}

type WindowKind string

const (
	WindowThirtyMinute WindowKind = "thirty_minute"
	WindowFiveMinute   WindowKind = "five_minute"
)

func (w WindowKind) String() string {
	return string(w)
}

// Minutes returns the nominal lead time of the window.
func (w WindowKind) Minutes() int {
	if w == WindowFiveMinute {
		return 5
	}
	return 30
}

type NotificationKind string

const (
	NotificationClassReminder  NotificationKind = "class_reminder"
	NotificationClassScheduled NotificationKind = "class_scheduled"
	NotificationRecordingReady NotificationKind = "recording_ready"
)

type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
