package ui

// UICommand is a request from the user to the watch loop.
type UICommand string

const (
	CommandRebuild UICommand = "rebuild"
)

// Rebuilder runs the watch handler on demand.
type Rebuilder interface {
	Rebuild()
}
