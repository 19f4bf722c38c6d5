package console

var helpLines = []string{
	"Welcome to the farm console!",
	"Basic Commands:",
	"  move(x, y)           - Move to coordinates (x,y)",
	"  scan()               - Get info about current tile",
	"  position()           - Get current coordinates",
	"Farming Commands:",
	"  plow()               - Plow the current tile",
	"  plant(\"crop\")        - Plant a crop (wheat unlocked, others in Tech Tree)",
	"  harvest()            - Harvest ready crop at current tile",
	"Farm Management:",
	"  expand()             - Expand farm size",
	"  sell(\"type\", amount) - Sell harvested crops",
	"  buy(\"type\", amount)  - Buy seeds for planting",
	"Tips:",
	"  Use scan() to check tile status",
	"  Crops must be planted on plowed land",
	"  Buy seeds before planting",
	"Usage:",
	"  Submit your program to run it once against the farm",
	"  print(...) writes to this log",
}

// HelpText is the informational preamble a new console starts with.
func HelpText() []Entry {
	out := make([]Entry, 0, len(helpLines))
	for _, line := range helpLines {
		out = append(out, Entry{Text: line, Kind: KindInfo})
	}
	return out
}
