package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external binary subburn shells out to.
type Requirement struct {
	Name     string
	Command  string
	Optional bool
}

// Status reports whether a requirement resolved. Command holds the absolute
// path when it did.
type Status struct {
	Name      string
	Command   string
	Optional  bool
	Available bool
	Detail    string
}

// Resolve looks the requirement up on PATH.
func Resolve(req Requirement) Status {
	status := Status{
		Name:     req.Name,
		Command:  strings.TrimSpace(req.Command),
		Optional: req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}

// CheckBinaries resolves each requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, Resolve(req))
	}
	return results
}
