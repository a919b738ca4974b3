package security

import "fmt"

// Request is a single privileged action submitted for a permission
// check. Requests are ephemeral; one is constructed per check.
type Request interface {
	fmt.Stringer

	// sealed limits implementations to this package.
	sealed()
}

// FileRead asks to read a filesystem path.
type FileRead struct {
	Path string
}

// FileWrite asks to write a filesystem path.
type FileWrite struct {
	Path string
}

// FileExecute asks to execute a file at a path.
type FileExecute struct {
	Path string
}

// Command asks to run a shell command.
type Command struct {
	Command string
}

// NetworkAccess asks to reach a URL.
type NetworkAccess struct {
	URL string
}

// ResourceIncrease asks to raise a resource budget.
type ResourceIncrease struct {
	Resource string
	Amount   float64
}

func (FileRead) sealed()         {}
func (FileWrite) sealed()        {}
func (FileExecute) sealed()      {}
func (Command) sealed()          {}
func (NetworkAccess) sealed()    {}
func (ResourceIncrease) sealed() {}

func (r FileRead) String() string    { return fmt.Sprintf("file_read %s", r.Path) }
func (r FileWrite) String() string   { return fmt.Sprintf("file_write %s", r.Path) }
func (r FileExecute) String() string { return fmt.Sprintf("file_execute %s", r.Path) }
func (r Command) String() string     { return fmt.Sprintf("command %q", r.Command) }
func (r NetworkAccess) String() string {
	return fmt.Sprintf("network_access %s", r.URL)
}
func (r ResourceIncrease) String() string {
	return fmt.Sprintf("resource_increase %s=%.1f", r.Resource, r.Amount)
}
