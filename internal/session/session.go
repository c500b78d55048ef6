package session

import "encoding/json"

// SessionState of a single transcription run.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateTranscribing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateTranscribing:
		return "transcribing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// states serialize as their names over the wire
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "idle":
		*s = StateIdle
	case "loading":
		*s = StateLoading
	case "transcribing":
		*s = StateTranscribing
	case "done":
		*s = StateDone
	case "failed":
		*s = StateFailed
	default:
		*s = StateIdle
	}
	return nil
}

// failure stages, reported alongside the error
const (
	StageInput  = "input"
	StageModel  = "model"
	StageOutput = "output"
)

// Event is published on every state change or progress update.
type Event struct {
	State      State   `json:"state"`
	InputPath  string  `json:"input_path,omitempty"`
	OutputPath string  `json:"output_path,omitempty"`
	Message    string  `json:"message,omitempty"`
	Progress   float64 `json:"progress"`
	Stage      string  `json:"stage,omitempty"`
	Error      string  `json:"error,omitempty"`
}
