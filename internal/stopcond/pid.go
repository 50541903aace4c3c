package stopcond

import "fmt"

// pidExited stops once a process id is gone.
type pidExited struct {
	pid   int
	alive func(int) bool
}

// PIDExited fires once the process with the given pid has exited.
// A pid <= 0 fires immediately.
func PIDExited(pid int) Condition {
	return &pidExited{pid: pid, alive: processAlive}
}

func (p *pidExited) ShouldStop() bool {
	if p.pid <= 0 {
		return true
	}
	return !p.alive(p.pid)
}

func (p *pidExited) String() string {
	return fmt.Sprintf("pid %d exited", p.pid)
}
