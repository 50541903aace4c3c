package notify

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/lfslocker/internal/logging"
)

type startCall struct {
	name string
	args []string
}

func recordingStarter(calls *[]startCall, err error) Starter {
	return func(name string, args ...string) error {
		*calls = append(*calls, startCall{name: name, args: args})
		return err
	}
}

func TestDesktop_Commands(t *testing.T) {
	tests := []struct {
		goos     string
		level    Level
		wantName string
		contains []string
	}{
		{"linux", LevelInfo, "notify-send", []string{"--urgency=low", DefaultTitle, "Locked 2 file(s)"}},
		{"linux", LevelWarning, "notify-send", []string{"--urgency=normal"}},
		{"freebsd", LevelError, "notify-send", []string{"--urgency=critical"}},
		{"darwin", LevelInfo, "osascript", []string{`display notification "Locked 2 file(s)" with title "Git LFS Auto-Locker"`}},
		{"darwin", LevelWarning, "osascript", []string{`sound name "Basso"`}},
		{"windows", LevelWarning, "powershell", []string{"ToolTipIcon]::Warning", "'Locked 2 file(s)'"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.level.String(), func(t *testing.T) {
			var calls []startCall
			d := NewDesktop(WithOS(tt.goos), WithStarter(recordingStarter(&calls, nil)))

			switch tt.level {
			case LevelInfo:
				d.Info("Locked 2 file(s)")
			case LevelWarning:
				d.Warning("Locked 2 file(s)")
			case LevelError:
				d.Error("Locked 2 file(s)")
			}

			if len(calls) != 1 {
				t.Fatalf("expected 1 command, got %d", len(calls))
			}
			if calls[0].name != tt.wantName {
				t.Errorf("command = %q, want %q", calls[0].name, tt.wantName)
			}
			joined := strings.Join(calls[0].args, " ")
			for _, want := range tt.contains {
				if !strings.Contains(joined, want) {
					t.Errorf("args = %q, want to contain %q", joined, want)
				}
			}
		})
	}
}

func TestDesktop_EscapesMessages(t *testing.T) {
	var calls []startCall

	NewDesktop(WithOS("darwin"), WithStarter(recordingStarter(&calls, nil))).Info(`say "hi" \ bye`)
	if got := calls[0].args[1]; !strings.Contains(got, `"say \"hi\" \\ bye"`) {
		t.Errorf("osascript = %q, want escaped quotes and backslashes", got)
	}

	NewDesktop(WithOS("windows"), WithStarter(recordingStarter(&calls, nil))).Info("it's")
	if got := calls[1].args[len(calls[1].args)-1]; !strings.Contains(got, "'it''s'") {
		t.Errorf("powershell = %q, want doubled single quote", got)
	}
}

func TestDesktop_UnsupportedAndFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, "DEBUG")

	var calls []startCall
	NewDesktop(WithOS("plan9"), WithStarter(recordingStarter(&calls, nil)), WithDesktopLogger(logger)).Warning("x")
	if len(calls) != 0 {
		t.Errorf("unsupported OS should not launch anything, got %v", calls)
	}
	if !strings.Contains(buf.String(), "unsupported") {
		t.Errorf("log = %q, want unsupported notice", buf.String())
	}

	buf.Reset()
	NewDesktop(WithOS("linux"), WithStarter(recordingStarter(&calls, fmt.Errorf("not found"))), WithDesktopLogger(logger)).Info("x")
	if !strings.Contains(buf.String(), "desktop notification failed") {
		t.Errorf("log = %q, want failure logged", buf.String())
	}
}

func TestWithTitle(t *testing.T) {
	var calls []startCall
	NewDesktop(WithOS("linux"), WithTitle("Game Repo"), WithStarter(recordingStarter(&calls, nil))).Info("x")
	if calls[0].args[2] != "Game Repo" {
		t.Errorf("title arg = %q, want %q", calls[0].args[2], "Game Repo")
	}
}

func TestRecorderAndMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, Nop{}, b}

	m.Info("one")
	m.Warning("two")
	m.Error("three")

	want := []Message{{LevelInfo, "one"}, {LevelWarning, "two"}, {LevelError, "three"}}
	for _, r := range []*Recorder{a, b} {
		got := r.Messages()
		if len(got) != len(want) {
			t.Fatalf("Messages() len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Messages()[%d] = %+v, want %+v", i, got[i], want[i])
			}
		}
	}

	a.Reset()
	if len(a.Messages()) != 0 {
		t.Error("Reset() should clear messages")
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(logging.NewWriterLogger(&buf, "INFO"))

	s.Warning("You are modifying 1 file(s) that were locked by other people!")
	out := buf.String()
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, "locked by other people") {
		t.Errorf("log = %q, want WARN record with message", out)
	}
}

func TestLevel_String(t *testing.T) {
	if LevelError.String() != "error" || Level(9).String() != "unknown" {
		t.Error("Level.String() mismatch")
	}
}

func TestStartReaped_WaitsForChild(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	cmd := exec.Command("sh", "-c", "exit 3")
	done, err := startReaped(cmd)
	if err != nil {
		t.Fatalf("startReaped() error = %v", err)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("wait result = nil, want exit status 3")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("child was not waited for")
	}
	if cmd.ProcessState == nil || cmd.ProcessState.ExitCode() != 3 {
		t.Errorf("ProcessState = %v, want exit code 3", cmd.ProcessState)
	}
}

func TestStartReaped_StartFailure(t *testing.T) {
	done, err := startReaped(exec.Command("lfslocker-no-such-notifier"))
	if err == nil {
		t.Fatal("startReaped() error = nil, want start failure")
	}
	if done != nil {
		t.Error("done channel should be nil when the command never started")
	}
}
