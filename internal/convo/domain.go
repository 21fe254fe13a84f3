package convo

import "weatherbot-api/internal/common"

// CommandKind identifies one variant of the fixed command grammar
type CommandKind string

const (
	CommandHelp         CommandKind = "help"
	CommandWeatherNow   CommandKind = "weather_now"
	CommandSetLocation  CommandKind = "set_location"
	CommandSchedule     CommandKind = "schedule"
	CommandMetar        CommandKind = "metar"
	CommandUnrecognized CommandKind = "unrecognized"
)

// ScheduleSpec is the extracted (time-of-day, recurrence) of a schedule command
type ScheduleSpec struct {
	Hour       int
	Minute     int
	Recurrence common.RecurrenceKind
}

// Command is the classified form of one inbound message. Exactly one variant
// applies. A schedule phrase whose time or recurrence failed to parse carries
// Kind CommandSchedule with Malformed set; the reply is a format hint rather
// than the generic help fallback.
type Command struct {
	Kind      CommandKind
	Place     string        // CommandSetLocation
	Station   string        // CommandMetar
	Spec      *ScheduleSpec // CommandSchedule, when well formed
	Malformed error         // CommandSchedule, when the phrase matched but parsing failed
}
