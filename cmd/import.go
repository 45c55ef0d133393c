package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/armsboard/internal/board"
	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/config"
	"github.com/twiced-technology-gmbh/armsboard/internal/logging"
	"github.com/twiced-technology-gmbh/armsboard/internal/mailmsg"
	"github.com/twiced-technology-gmbh/armsboard/internal/output"
	"github.com/twiced-technology-gmbh/armsboard/internal/sheet"
	"github.com/twiced-technology-gmbh/armsboard/internal/task"
	"github.com/twiced-technology-gmbh/armsboard/internal/watcher"
)

var importCmd = &cobra.Command{
	Use:   "import [PATH...]",
	Short: "Import tasks from spreadsheets and message files",
	Long: `Creates tasks from spreadsheet rows (.xlsx, .xlsm, .csv) and from message
files (.eml). Directories are scanned one level deep. Without a path the
workspace inbox is imported.

Each file is consumed once: importing it again reports the earlier batch and
creates nothing. Rows without a title are skipped with a warning.

With --watch the inbox (or the given directories) is watched and new files
are imported as they arrive. Press Ctrl+C to stop.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("sheet", "", "sheet to import from workbooks (default: first sheet)")
	importCmd.Flags().String("status", "", "status for rows without one (default from config)")
	importCmd.Flags().String("assign", "", "analyst for rows without a recognised one")
	importCmd.Flags().BoolP("watch", "w", false, "keep importing files dropped into the watched directories")
	rootCmd.AddCommand(importCmd)
}

// importer carries the settings for one import run.
type importer struct {
	cfg   *config.Config
	sheet string
	opts  task.ImportOptions
	log   *logging.Logger
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	imp := &importer{cfg: cfg, log: logging.Component("import")}
	imp.sheet, _ = cmd.Flags().GetString("sheet")
	imp.opts.DefaultStatus = cfg.ImportStatus()
	if v, _ := cmd.Flags().GetString("status"); v != "" {
		st, err := task.ValidateStatus(v)
		if err != nil {
			return err
		}
		imp.opts.DefaultStatus = st
	}
	imp.opts.DefaultAssignee, _ = cmd.Flags().GetString("assign")

	paths := args
	if len(paths) == 0 {
		paths = []string{cfg.InboxPath()}
	}

	files, err := expandImportPaths(paths)
	if err != nil {
		return err
	}

	results, err := imp.importFiles(files)
	if err != nil {
		return err
	}
	if err := printImportResults(results); err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return imp.watch(watchDirs(paths))
	}
	return nil
}

// expandImportPaths lists the importable files named by paths. Named files
// must be supported; unsupported files inside directories are skipped.
func expandImportPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			if !importable(p) {
				return nil, clierr.Newf(clierr.UnsupportedFile, "cannot import %s", filepath.Base(p)).
					WithDetails(map[string]any{
						"file":      p,
						"supported": append(append([]string(nil), sheet.Extensions...), mailmsg.Extensions...),
					})
			}
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", p, err)
		}
		for _, e := range entries {
			full := filepath.Join(p, e.Name())
			if e.IsDir() || !importable(full) {
				continue
			}
			files = append(files, full)
		}
	}
	sort.Strings(files)
	return files, nil
}

// importable reports whether path is a file type the importer reads.
// Hidden files and office lock files ("~$book.xlsx") are ignored.
func importable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	return sheet.Supported(path) || mailmsg.Supported(path)
}

// importFiles imports every file in one locked session.
func (imp *importer) importFiles(files []string) ([]task.ImportResult, error) {
	if len(files) == 0 {
		return nil, nil
	}

	var results []task.ImportResult
	err := newSession(imp.cfg).update(func(st *task.Store) error {
		for _, f := range files {
			res, err := imp.importFile(st, f)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.Duplicate {
			continue
		}
		logActivity(imp.cfg, board.ActionImport, 0, "",
			fmt.Sprintf("%s: %d tasks (batch %s)", r.Source, r.Created, r.BatchID))
	}
	return results, nil
}

func (imp *importer) importFile(st *task.Store, path string) (task.ImportResult, error) {
	if mailmsg.Supported(path) {
		msg, err := mailmsg.ParseFile(path)
		if err != nil {
			return task.ImportResult{}, err
		}
		t, created, err := st.ImportMessage(msg)
		if err != nil {
			return task.ImportResult{}, err
		}
		res := task.ImportResult{
			Source:    msg.SourceName,
			Created:   boolToInt(created),
			Duplicate: !created,
		}
		if t != nil {
			res.TaskIDs = []int{t.ID}
		}
		return res, nil
	}

	wb, err := sheet.Read(path)
	if err != nil {
		return task.ImportResult{}, err
	}
	ds, err := wb.Sheet(imp.sheet)
	if err != nil {
		return task.ImportResult{}, err
	}

	records := ds.Records()
	rows := make([]task.Row, len(records))
	for i, r := range records {
		rows[i] = task.Row(r)
	}

	source := wb.Name
	if imp.sheet != "" {
		source += "#" + ds.Name
	}
	imp.log.Debug().Str("file", path).Str("sheet", ds.Name).Int("rows", len(rows)).Msg("importing sheet")
	return st.ImportRows(source, rows, imp.opts)
}

// watch imports files as they appear in dirs until interrupted.
func (imp *importer) watch(dirs []string) error {
	if len(dirs) == 0 {
		return clierr.New(clierr.ValidationFailed, "--watch needs a directory to watch")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(dirs, func(paths []string) {
		if len(paths) == 0 {
			return
		}
		results, err := imp.importFiles(paths)
		if err != nil {
			imp.log.Err(err).Msg("import failed")
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		if err := printImportResults(results); err != nil {
			imp.log.Err(err).Msg("writing results")
		}
	}, watcher.WithFilter(importable))
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if outputFormat() != output.FormatJSON {
		output.Messagef(os.Stderr, "Watching %s for new files (Ctrl+C to stop)", strings.Join(dirs, ", "))
	}
	w.Run(ctx, func(err error) {
		imp.log.Err(err).Msg("watch error")
	})
	return nil
}

// watchDirs returns the directories among paths.
func watchDirs(paths []string) []string {
	var dirs []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dirs = append(dirs, p)
		}
	}
	return dirs
}

func printImportResults(results []task.ImportResult) error {
	if outputFormat() == output.FormatJSON {
		if results == nil {
			results = []task.ImportResult{}
		}
		return output.JSON(os.Stdout, results)
	}
	if len(results) == 0 {
		output.Messagef(os.Stdout, "Nothing to import")
		return nil
	}
	output.ImportSummary(os.Stdout, results)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
