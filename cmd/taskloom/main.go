package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/joshharrison/taskloom/internal/board"
	"github.com/joshharrison/taskloom/internal/config"
	"github.com/joshharrison/taskloom/internal/editor"
	"github.com/joshharrison/taskloom/internal/graph"
	"github.com/joshharrison/taskloom/internal/index"
	"github.com/joshharrison/taskloom/internal/layout"
	"github.com/joshharrison/taskloom/internal/reporter"
	"github.com/joshharrison/taskloom/internal/ui"
	"github.com/joshharrison/taskloom/internal/vault"
	"github.com/joshharrison/taskloom/internal/viewer"
)

var (
	flagConfig   string
	flagVault    string
	flagSettings string
	flagBoard    string
	flagPort     int
	flagJSON     bool
	flagLogLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskloom",
		Short: "Turn a markdown vault into connectable task boards",
		Long: `Taskloom scans a markdown vault for checklist items, lets you wire them
into dependency graphs on named boards, and keeps checkbox state in the
markdown files and board state in a settings blob in sync.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if lvl, err := log.ParseLevel(flagLogLevel); err == nil {
				log.SetLevel(lvl)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default taskloom.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagVault, "vault", "", "Vault root directory")
	rootCmd.PersistentFlags().StringVar(&flagSettings, "settings", "", "Board settings blob path")
	rootCmd.PersistentFlags().StringVar(&flagBoard, "board", "", "Board ID (default: active board)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(boardsCmd())
	rootCmd.AddCommand(boardCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(layoutCmd())
	rootCmd.AddCommand(toggleCmd())
	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(linkCmd())
	rootCmd.AddCommand(unlinkCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(moveCmd())
	rootCmd.AddCommand(noteCmd())
	rootCmd.AddCommand(anchorCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env bundles the open vault, index and settings store for one invocation.
type env struct {
	cfg   config.Config
	vault *vault.Vault
	index *index.Index
	store *board.Store
}

// openEnv is shared setup for every one-shot command: resolve config,
// open the vault, load settings, and scan the vault into the index.
func openEnv() (*env, error) {
	e, err := newEnv()
	if err != nil {
		return nil, err
	}
	if err := e.index.RebuildAll(e.vault); err != nil {
		return nil, fmt.Errorf("scan vault: %w", err)
	}
	return e, nil
}

// newEnv wires everything up without scanning. Long-running commands
// scan in the background; index queries return empty until the scan
// lands.
func newEnv() (*env, error) {
	path := flagConfig
	explicit := path != ""
	if path == "" {
		path = "taskloom.yaml"
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, err
	}
	if flagVault != "" {
		cfg.Vault = flagVault
	}
	if flagSettings != "" {
		cfg.Settings = flagSettings
	}
	if flagPort != 0 {
		cfg.Port = flagPort
	}
	if flagLogLevel == "" {
		if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
			log.SetLevel(lvl)
		}
	}

	v, err := vault.Open(cfg.Vault)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	st, err := board.Load(cfg.SettingsPath())
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return &env{cfg: cfg, vault: v, index: index.New(), store: st}, nil
}

// targetBoard resolves --board, falling back to the active board.
func (e *env) targetBoard() (board.Board, error) {
	if flagBoard != "" {
		return e.store.Board(flagBoard)
	}
	return e.store.Active(), nil
}

// resolveTask accepts a full task ID or a unique text fragment.
func (e *env) resolveTask(arg string) (index.Task, error) {
	if t, ok := e.index.Find(arg); ok {
		return t, nil
	}

	needle := strings.ToLower(arg)
	var matches []index.Task
	for _, t := range e.index.AllTasks() {
		if strings.Contains(strings.ToLower(t.Text), needle) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return index.Task{}, fmt.Errorf("no task matches %q", arg)
	default:
		lines := make([]string, 0, len(matches))
		for i, m := range matches {
			if i == 5 {
				lines = append(lines, fmt.Sprintf("  ... and %d more", len(matches)-5))
				break
			}
			lines = append(lines, "  "+m.ID)
		}
		return index.Task{}, fmt.Errorf("%q is ambiguous:\n%s", arg, strings.Join(lines, "\n"))
	}
}

// ensureAnchored gives a task a durable anchor-based identity before any
// board overlay is keyed on it, migrating existing overlay entries from
// the old identity.
func (e *env) ensureAnchored(boardID string, t index.Task) (string, error) {
	newID, err := editor.EnsureAnchor(e.vault, t)
	if err != nil {
		return "", err
	}
	if newID != t.ID {
		if err := e.store.RewriteNodeID(boardID, t.ID, newID); err != nil {
			return "", err
		}
		e.refresh(t.Path)
	}
	return newID, nil
}

// refresh rescans one file into the index after a write-back.
func (e *env) refresh(path string) {
	content, err := e.vault.Read(path)
	if err != nil {
		e.index.RemovePath(path)
		return
	}
	e.index.RebuildFile(path, content)
}

func boardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "List boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(e.store.Boards())
			}
			reporter.New(e.store, e.index).PrintBoards(os.Stdout)
			return nil
		},
	}
}

func boardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Create, rename, delete, switch and configure boards",
	}
	cmd.AddCommand(boardCreateCmd())
	cmd.AddCommand(boardRenameCmd())
	cmd.AddCommand(boardDeleteCmd())
	cmd.AddCommand(boardUseCmd())
	cmd.AddCommand(boardFiltersCmd())
	cmd.AddCommand(boardResetCmd())
	return cmd
}

func boardCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new board and make it active",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			b, err := e.store.Create(name)
			if err != nil {
				return err
			}
			if err := e.store.SetActive(b.ID); err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(b)
			}
			fmt.Printf("✨ Created board %s %s\n", ui.BoardPrefix(b.ID, b.Name), ui.Dim(b.ID))
			return nil
		},
	}
}

func boardRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <board-id> <name>",
		Short: "Rename a board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			if err := e.store.Rename(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("✏️  Renamed board %s to %s\n", ui.Dim(args[0]), ui.Bold(args[1]))
			return nil
		},
	}
}

func boardDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board-id>",
		Short: "Delete a board (the last board cannot be deleted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			if err := e.store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("🗑️  Deleted board %s\n", ui.Dim(args[0]))
			return nil
		},
	}
}

func boardUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <board-id>",
		Short: "Switch the active board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			if err := e.store.SetActive(args[0]); err != nil {
				return err
			}
			b, _ := e.store.Board(args[0])
			fmt.Printf("🎯 Active board is now %s\n", ui.BoardPrefix(b.ID, b.Name))
			return nil
		},
	}
}

func boardFiltersCmd() *cobra.Command {
	var (
		flagTags    []string
		flagExclude []string
		flagFolders []string
		flagStatus  []string
	)

	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Replace the board's filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}
			for _, s := range flagStatus {
				if s != index.MarkerTodo && s != index.MarkerInProgress && s != index.MarkerDone {
					return fmt.Errorf("unknown status marker %q (use ' ', '/' or 'x')", s)
				}
			}
			f := board.Filters{
				Tags:        flagTags,
				ExcludeTags: flagExclude,
				Folders:     flagFolders,
				Status:      flagStatus,
			}
			if err := e.store.SetFilters(b.ID, f); err != nil {
				return err
			}
			fmt.Printf("🔍 Updated filters on %s\n", ui.BoardPrefix(b.ID, b.Name))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&flagTags, "tags", nil, "Include tasks containing any of these tags")
	cmd.Flags().StringSliceVar(&flagExclude, "exclude-tags", nil, "Exclude tasks containing any of these tags")
	cmd.Flags().StringSliceVar(&flagFolders, "folders", nil, "Restrict to these vault folders")
	cmd.Flags().StringSliceVar(&flagStatus, "status", nil, "Checkbox markers to show (' ', '/', 'x')")

	return cmd
}

func boardResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear saved positions (filters and edges survive)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}
			if err := e.store.ClearLayout(b.ID); err != nil {
				return err
			}
			fmt.Printf("🧹 Cleared layout on %s\n", ui.BoardPrefix(b.ID, b.Name))
			return nil
		},
	}
}

func tasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "Show the board's visible tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}
			rpt := reporter.New(e.store, e.index)
			if flagJSON {
				data, err := rpt.BoardJSON(&b)
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			rpt.PrintTasks(os.Stdout, &b)
			return nil
		},
	}
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "Show tag usage across the vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(e.index.TagCounts())
			}
			reporter.New(e.store, e.index).PrintTags(os.Stdout)
			return nil
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "One-shot vault and board summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}
			g := graph.Build(board.Visible(&b, e.index), &b)
			fmt.Println(reporter.New(e.store, e.index).Summary(g))
			return nil
		},
	}
}

func layoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Auto-arrange the board and persist the positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}

			// Pin identities first so the persisted positions survive
			// future text edits.
			if err := editor.AnchorTasks(e.vault, e.store, e.index, b.ID, board.Visible(&b, e.index)); err != nil {
				return err
			}
			b, err = e.store.Board(b.ID)
			if err != nil {
				return err
			}

			g := graph.Build(board.Visible(&b, e.index), &b)
			points := layout.Compute(g.LayoutNodes(), g.LayoutEdges())

			merged := make(map[string]board.Position, len(b.Data.Layout)+len(points))
			for id, pos := range b.Data.Layout {
				merged[id] = pos
			}
			for id, p := range points {
				merged[id] = board.Position{X: p.X, Y: p.Y}
			}
			if err := e.store.SetLayout(b.ID, merged); err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(points)
			}
			fmt.Printf("📐 Arranged %s nodes on %s\n", ui.Bold(strconv.Itoa(len(points))), ui.BoardPrefix(b.ID, b.Name))
			return nil
		},
	}
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task>",
		Short: "Toggle a task between todo and done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			t, err := e.resolveTask(args[0])
			if err != nil {
				return err
			}
			if err := editor.ToggleDone(e.vault, t.Path, t.Line, time.Now()); err != nil {
				return err
			}
			e.refresh(t.Path)
			icon := ui.Green("✓ done")
			if t.Marker == index.MarkerDone {
				icon = ui.Yellow("◌ reopened")
			}
			fmt.Printf("%s %s\n", icon, t.Text)
			return nil
		},
	}
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <task>",
		Short: "Mark a task in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			t, err := e.resolveTask(args[0])
			if err != nil {
				return err
			}
			if err := editor.SetMarker(e.vault, t.Path, t.Line, index.MarkerInProgress); err != nil {
				return err
			}
			e.refresh(t.Path)
			fmt.Printf("%s %s\n", ui.Cyan("◐ started"), t.Text)
			return nil
		},
	}
}

func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <task> <text>",
		Short: "Replace a task's text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			t, err := e.resolveTask(args[0])
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}
			// Anchor first: a hash identity would not survive the text
			// change and the board overlays would orphan.
			id, err := e.ensureAnchored(b.ID, t)
			if err != nil {
				return err
			}
			if err := editor.EditText(e.vault, t.Path, t.Line, args[1]); err != nil {
				return err
			}
			e.refresh(t.Path)
			fmt.Printf("✏️  %s %s\n", ui.Dim(id), args[1])
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file> <text>",
		Short: "Append a new task to a markdown file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			id, err := editor.AppendTask(e.vault, args[0], args[1])
			if err != nil {
				return err
			}
			e.refresh(args[0])
			fmt.Printf("➕ %s %s\n", ui.Dim(id), args[1])
			return nil
		},
	}
}

func linkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <from> <to>",
		Short: "Connect two tasks (from must finish before to)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}
			from, err := e.resolveTask(args[0])
			if err != nil {
				return err
			}
			to, err := e.resolveTask(args[1])
			if err != nil {
				return err
			}
			fromID, err := e.ensureAnchored(b.ID, from)
			if err != nil {
				return err
			}
			toID, err := e.ensureAnchored(b.ID, to)
			if err != nil {
				return err
			}
			if fromID == toID {
				return fmt.Errorf("cannot link a task to itself")
			}
			edge, err := e.store.AddEdge(b.ID, fromID, toID)
			if err != nil {
				return err
			}
			fmt.Printf("🔗 %s %s %s\n", from.Text, ui.Cyan("→"), to.Text)
			log.Debug("edge added", "id", edge.ID)
			return nil
		},
	}
}

func unlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <from> <to>",
		Short: "Remove a connection between two tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}
			from, err := e.resolveTask(args[0])
			if err != nil {
				return err
			}
			to, err := e.resolveTask(args[1])
			if err != nil {
				return err
			}
			if err := e.store.RemoveEdge(b.ID, board.EdgeID(from.ID, to.ID)); err != nil {
				return err
			}
			fmt.Printf("✂️  %s %s %s\n", from.Text, ui.Dim("×"), to.Text)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <task> <status>",
		Short: "Set a task's display status on the board",
		Long: `Sets the decorative display status of a node on the board. Valid values:
backlog, pending, in_progress, blocked, finished, default. "default"
removes the override. Display status never touches the markdown checkbox.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}
			if !board.ValidStatus(args[1]) {
				return fmt.Errorf("unknown status %q", args[1])
			}
			t, err := e.resolveTask(args[0])
			if err != nil {
				return err
			}
			id, err := e.ensureAnchored(b.ID, t)
			if err != nil {
				return err
			}
			if err := e.store.SetNodeStatus(b.ID, id, args[1]); err != nil {
				return err
			}
			fmt.Printf("🏷️  %s %s\n", t.Text, ui.StatusLabel(args[1]))
			return nil
		},
	}
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <task> <x> <y>",
		Short: "Pin a task's position on the board",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("parse x: %w", err)
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("parse y: %w", err)
			}
			t, err := e.resolveTask(args[0])
			if err != nil {
				return err
			}
			id, err := e.ensureAnchored(b.ID, t)
			if err != nil {
				return err
			}
			if err := e.store.SetNodePosition(b.ID, id, board.Position{X: x, Y: y}); err != nil {
				return err
			}
			fmt.Printf("📍 %s at (%.0f, %.0f)\n", t.Text, x, y)
			return nil
		},
	}
}

func noteCmd() *cobra.Command {
	var (
		flagX float64
		flagY float64
	)

	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage free-floating text notes on the board",
	}

	addNote := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a text note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}
			tn := board.NewTextNode(args[0], flagX, flagY)
			if err := e.store.AddTextNode(b.ID, tn); err != nil {
				return err
			}
			fmt.Printf("📝 %s %s\n", ui.Dim(tn.ID), args[0])
			return nil
		},
	}
	addNote.Flags().Float64Var(&flagX, "x", 0, "X position")
	addNote.Flags().Float64Var(&flagY, "y", 0, "Y position")

	rmNote := &cobra.Command{
		Use:   "rm <note-id>",
		Short: "Remove a text note and everything keyed on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}
			if err := e.store.RemoveTextNode(b.ID, args[0]); err != nil {
				return err
			}
			fmt.Printf("🗑️  Removed note %s\n", ui.Dim(args[0]))
			return nil
		},
	}

	cmd.AddCommand(addNote)
	cmd.AddCommand(rmNote)
	return cmd
}

func anchorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "anchor <task>",
		Short: "Give a task a durable block anchor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			b, err := e.targetBoard()
			if err != nil {
				return err
			}
			t, err := e.resolveTask(args[0])
			if err != nil {
				return err
			}
			id, err := e.ensureAnchored(b.ID, t)
			if err != nil {
				return err
			}
			fmt.Printf("⚓ %s\n", ui.Bold(id))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Watch the vault and serve board graphs over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			events, err := e.vault.Watch()
			if err != nil {
				return fmt.Errorf("watch vault: %w", err)
			}
			defer e.vault.Close()

			// Scan in the background; the server answers with an
			// empty graph until the index is ready.
			go func() {
				if err := e.index.RebuildAll(e.vault); err != nil {
					log.Warn("vault scan failed", "err", err)
				}
			}()

			addr, err := viewer.Start(e.cfg.Port, e.vault, e.store, e.index)
			if err != nil {
				return err
			}

			if !flagJSON {
				ui.PrintLogo()
			}
			fmt.Printf("🚀 %s watching %s, serving %s\n",
				ui.BoldCyan("Taskloom:"), ui.Bold(e.vault.Root()), ui.Bold(addr))

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					switch ev.Op {
					case vault.OpChange:
						e.refresh(ev.Path)
						log.Debug("rescanned", "path", ev.Path)
					case vault.OpRemove:
						e.index.RemovePath(ev.Path)
						log.Debug("dropped", "path", ev.Path)
					}
				case <-sigCh:
					fmt.Fprintf(os.Stderr, "\n🛑 %s\n", ui.Yellow("Shutting down..."))
					return nil
				}
			}
		},
	}

	cmd.Flags().IntVar(&flagPort, "port", 0, "HTTP port (default from config, then 7171)")

	return cmd
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
