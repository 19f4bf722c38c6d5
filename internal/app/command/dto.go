package command

type Name string

const (
	Move     Name = "move"
	Plow     Name = "plow"
	Plant    Name = "plant"
	Harvest  Name = "harvest"
	Scan     Name = "scan"
	Position Name = "position"
	Expand   Name = "expand"
	Buy      Name = "buy"
	Sell     Name = "sell"
)

type Request struct {
	Name Name   `json:"name"`
	X    int    `json:"x,omitempty"`
	Y    int    `json:"y,omitempty"`
	Crop string `json:"crop,omitempty"`
	Item string `json:"item,omitempty"`
	Qty  int    `json:"qty,omitempty"`
}

// Result is the outcome of one command. Message is the text that was sent
// to the sink; Value is what a script sees as the call's return value.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
	Err     error  `json:"-"`
}

// Sink receives the human-readable outcome of each command.
type Sink interface {
	Print(text string)
}

// Collector is a Sink that keeps every line, for callers without a console.
type Collector struct {
	Lines []string
}

func (c *Collector) Print(text string) {
	c.Lines = append(c.Lines, text)
}
