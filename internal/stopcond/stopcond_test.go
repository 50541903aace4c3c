package stopcond

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"testing"
)

type countingCondition struct {
	stop  bool
	polls int
}

func (c *countingCondition) ShouldStop() bool {
	c.polls++
	return c.stop
}

func TestAny(t *testing.T) {
	tests := []struct {
		name  string
		conds []bool
		want  bool
	}{
		{"none", nil, false},
		{"single false", []bool{false}, false},
		{"single true", []bool{true}, true},
		{"one of many", []bool{false, true, false}, true},
		{"all false", []bool{false, false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var conds []Condition
			for _, stop := range tt.conds {
				conds = append(conds, &countingCondition{stop: stop})
			}
			if got := Any(conds...).ShouldStop(); got != tt.want {
				t.Errorf("Any().ShouldStop() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAny_ShortCircuitsAndFlattens(t *testing.T) {
	first := &countingCondition{stop: true}
	second := &countingCondition{}

	c := Any(nil, Any(first), second)
	if !c.ShouldStop() {
		t.Fatal("ShouldStop() = false, want true")
	}
	if second.polls != 0 {
		t.Errorf("second condition polled %d times, want 0", second.polls)
	}
	if got := Describe(c); !strings.HasPrefix(got, "any(") {
		t.Errorf("Describe() = %q, want any(...)", got)
	}
}

func TestAfterCycles(t *testing.T) {
	c := AfterCycles(3)
	var got []bool
	for i := 0; i < 4; i++ {
		got = append(got, c.ShouldStop())
	}
	want := []bool{false, false, true, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("poll %d = %v, want %v", i+1, got[i], want[i])
		}
	}

	if AfterCycles(0).ShouldStop() {
		t.Error("AfterCycles(0) should never fire")
	}
	if Never.ShouldStop() {
		t.Error("Never should never fire")
	}
}

func TestFunc(t *testing.T) {
	calls := 0
	c := Func(func() bool {
		calls++
		return calls > 1
	})
	if c.ShouldStop() || !c.ShouldStop() || calls != 2 {
		t.Errorf("Func adapter misbehaved after %d calls", calls)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		cond Condition
		want string
	}{
		{nil, "none"},
		{AfterCycles(1), "after 1 cycle(s)"},
		{PIDExited(42), "pid 42 exited"},
		{ProcessExited("UnrealEditor"), `process "UnrealEditor" exited`},
	}
	for _, tt := range tests {
		if got := Describe(tt.cond); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}

func exitStatus(t *testing.T, code int) error {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	err := exec.Command("sh", "-c", fmt.Sprintf("exit %d", code)).Run()
	if err == nil {
		t.Fatalf("expected exit status %d", code)
	}
	return err
}

func TestProcessExited_Unix(t *testing.T) {
	tests := []struct {
		name   string
		output string
		err    error
		want   bool
	}{
		{"running", "1234\n", nil, false},
		{"not running", "", exitStatus(t, 1), true},
		{"lookup failed", "", exitStatus(t, 3), false},
		{"pgrep missing", "", fmt.Errorf("exec: \"pgrep\": executable file not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotArgs []string
			run := func(name string, args ...string) ([]byte, error) {
				gotArgs = append([]string{name}, args...)
				return []byte(tt.output), tt.err
			}

			c := ProcessExited("blender", WithOS("darwin"), WithRunner(run))
			if got := c.ShouldStop(); got != tt.want {
				t.Errorf("ShouldStop() = %v, want %v", got, tt.want)
			}
			if strings.Join(gotArgs, " ") != "pgrep -x blender" {
				t.Errorf("command = %v, want pgrep -x blender", gotArgs)
			}
		})
	}
}

func TestProcessExited_LinuxTruncatesName(t *testing.T) {
	var gotArgs []string
	run := func(name string, args ...string) ([]byte, error) {
		gotArgs = args
		return []byte("99\n"), nil
	}

	c := ProcessExited("UnrealEditor-Linux-Debug", WithOS("linux"), WithRunner(run))
	if c.ShouldStop() {
		t.Error("ShouldStop() = true, want false")
	}
	if gotArgs[1] != "UnrealEditor-Li" {
		t.Errorf("pgrep name = %q, want 15-character prefix", gotArgs[1])
	}
}

func TestProcessExited_LinuxTruncatesBytes(t *testing.T) {
	var gotArgs []string
	run := func(name string, args ...string) ([]byte, error) {
		gotArgs = args
		return []byte("99\n"), nil
	}

	// 14 ASCII bytes followed by a two-byte rune: the kernel keeps only its
	// first byte in comm.
	c := ProcessExited("Photoshop-2024é", WithOS("linux"), WithRunner(run))
	c.ShouldStop()

	want := "Photoshop-2024\xc3"
	if gotArgs[1] != want {
		t.Errorf("pgrep name = %q, want %q", gotArgs[1], want)
	}
	if len(gotArgs[1]) != linuxCommLen {
		t.Errorf("len = %d, want %d bytes", len(gotArgs[1]), linuxCommLen)
	}
}

func TestProcessExited_Windows(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{"running", `"Photoshop.exe","4242","Console","1","512,000 K"` + "\r\n", false},
		{"running case-insensitive", `"PHOTOSHOP.EXE","4242","Console","1","512,000 K"`, false},
		{"not running", "INFO: No tasks are running which match the specified criteria.\r\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := func(name string, args ...string) ([]byte, error) {
				if name != "tasklist" {
					t.Errorf("command = %q, want tasklist", name)
				}
				return []byte(tt.output), nil
			}
			c := ProcessExited("Photoshop.exe", WithOS("windows"), WithRunner(run))
			if got := c.ShouldStop(); got != tt.want {
				t.Errorf("ShouldStop() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPIDExited(t *testing.T) {
	if !PIDExited(0).ShouldStop() {
		t.Error("PIDExited(0) should fire immediately")
	}
	if PIDExited(os.Getpid()).ShouldStop() {
		t.Error("PIDExited(self) should not fire")
	}
}

func TestPIDExited_RealProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep")
	}
	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start sleep process: %v", err)
	}

	c := PIDExited(cmd.Process.Pid)
	if c.ShouldStop() {
		t.Fatal("ShouldStop() = true while process runs")
	}

	_ = cmd.Process.Kill()
	_ = cmd.Wait()

	if !c.ShouldStop() {
		t.Error("ShouldStop() = false after process exited")
	}
}
