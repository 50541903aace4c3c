package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/lfslocker/internal/daemon"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the next sync cycle would do",
	Long: `Status asks the lock server for the current lock list and compares it
with your modified files. Nothing is locked, unlocked or notified.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the result as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	s, err := openSession(cfg, logger)
	if err != nil {
		return err
	}

	in, err := daemon.Inspect(s.repo, s.identity, cfg.Sync.LockUntracked)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statusJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(in)
	}
	renderInspection(out, s.repo.Root(), in, newPalette(isTerminal(out)))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// palette holds the status styles.
type palette struct {
	title   lipgloss.Style
	heading lipgloss.Style
	warn    lipgloss.Style
	add     lipgloss.Style
	remove  lipgloss.Style
	muted   lipgloss.Style
}

func newPalette(color bool) palette {
	if !color {
		plain := lipgloss.NewStyle()
		return palette{plain, plain, plain, plain, plain, plain}
	}
	return palette{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA")),
		heading: lipgloss.NewStyle().Bold(true),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		add:     lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		remove:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
	}
}

func renderInspection(w io.Writer, root string, in daemon.Inspection, p palette) {
	fmt.Fprintln(w, p.title.Render("LFS lock status"))
	fmt.Fprintln(w, p.muted.Render(fmt.Sprintf("%s as %s, checked %s", root, in.Identity, in.CheckedAt.Format(time.RFC3339))))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s %d modified, %d locked by you, %d locked by others\n",
		p.heading.Render("Summary:"), len(in.Modified), len(in.OwnLocks), len(in.OtherLocks))

	if in.InSync() {
		fmt.Fprintln(w, p.add.Render("In sync: the next cycle has nothing to do."))
		return
	}

	owners := make(map[string]string, len(in.OtherLocks))
	for _, h := range in.OtherLocks {
		owners[h.Path] = h.Owner
	}

	section(w, p, "Locked by others (you are modifying these)", in.Blocking, func(path string) string {
		return p.warn.Render(fmt.Sprintf("  ! %s (%s)", path, owners[path]))
	})
	section(w, p, "Will lock", in.Missing, func(path string) string {
		return p.add.Render("  + " + path)
	})
	section(w, p, "Will unlock", in.Unnecessary, func(path string) string {
		return p.remove.Render("  - " + path)
	})
}

func section(w io.Writer, p palette, title string, paths []string, line func(string) string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.heading.Render(fmt.Sprintf("%s (%d):", title, len(paths))))
	for _, path := range paths {
		fmt.Fprintln(w, line(path))
	}
}
