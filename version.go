package storyline

// Version is the release of the storyline module and CLI.
var Version = "0.1.0"
