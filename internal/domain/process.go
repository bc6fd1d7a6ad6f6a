package domain

// ProcessState is the readiness state of a supervised server process.
type ProcessState string

const (
	ProcessStarting ProcessState = "starting"
	ProcessReady    ProcessState = "ready"
	ProcessFailed   ProcessState = "failed"
	ProcessStopped  ProcessState = "stopped"
)

// ProcessStatus is a point-in-time view of a supervised process.
type ProcessStatus struct {
	Entrypoint string       `json:"entrypoint"`
	ProjectDir string       `json:"projectDir"`
	Port       int          `json:"port"`
	PID        int          `json:"pid"`
	State      ProcessState `json:"state"`
}
