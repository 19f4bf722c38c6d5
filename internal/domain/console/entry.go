package console

type Kind string

const (
	KindInfo    Kind = "info"
	KindCommand Kind = "command"
	KindNormal  Kind = "normal"
	KindError   Kind = "error"
)

type Entry struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

// SessionSnapshot is the persisted part of a script session.
type SessionSnapshot struct {
	ID          string  `json:"id"`
	ProgramText string  `json:"program_text"`
	OutputLog   []Entry `json:"output_log"`
}

func CloneEntries(in []Entry) []Entry {
	if in == nil {
		return nil
	}
	out := make([]Entry, len(in))
	copy(out, in)
	return out
}
