package controllers

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
	"translit/internal/models"
	"translit/internal/providers"
	"translit/internal/services"
	"translit/internal/structures"
)

const (
	titleText        = "Translation History"
	subtitleText     = "Your recent translations"
	loadingText      = "Loading..."
	loadFailedText   = "Failed to load history. Please try again later."
	emptyTitleText   = "No translation history yet"
	emptyBodyText    = "Your translation history will appear here once you start translating."
	dialogTitleText  = "Delete Translation"
	dialogBodyText   = "Are you sure you want to delete this translation from your history?"
	deleteLabel      = "Delete"
	deletingLabel    = "Deleting..."
	cancelLabel      = "Cancel"
	unknownDateText  = "Unknown date"
	copiedToastText  = "Copied to clipboard!"
	deletedToastText = "Translation deleted successfully!"
)

const helpText = `Commands:
  list            show the history again
  refresh         reload the history from the server
  copy <row>      copy the translation in <row>
  delete <row>    ask to delete the translation in <row>
  yes | no        confirm or cancel the pending delete
  close           dismiss the notification
  quit            leave`

var errQuit = errors.New("quit")

// HistoryController renders history snapshots to a terminal and turns
// typed commands into HistoryService calls.
type HistoryController struct {
	history services.HistoryServiceInterface
	logger  providers.Logger
	printer printer
	now     func() time.Time

	mu        sync.Mutex
	out       io.Writer
	lastFrame string
	rows      []models.Conversion
}

func toastText(kind models.ToastKind) string {
	switch kind {
	case models.ToastCopied:
		return copiedToastText
	case models.ToastDeleted:
		return deletedToastText
	default:
		return string(kind)
	}
}

func (hc *HistoryController) formatDate(createdAt string) string {
	c := models.Conversion{CreatedAt: createdAt}
	t, err := c.CreatedTime()
	if err != nil {
		return unknownDateText
	}
	return formatRelative(hc.now(), t)
}

// Render writes one frame for snap.
func (hc *HistoryController) Render(w io.Writer, snap models.HistorySnapshot) {
	p := hc.printer
	fmt.Fprintln(w, p.colorize(colorBold, titleText))
	fmt.Fprintln(w, p.colorize(colorDim, subtitleText))
	fmt.Fprintln(w)

	switch snap.View {
	case models.ViewLoading:
		fmt.Fprintln(w, "  "+loadingText)
	case models.ViewError:
		p.failure(w, loadFailedText)
	case models.ViewEmpty:
		fmt.Fprintln(w, "  "+emptyTitleText)
		fmt.Fprintln(w, "  "+p.colorize(colorDim, emptyBodyText))
	case models.ViewPopulated:
		for i, c := range snap.Records {
			fmt.Fprintf(w, "  %s %s  %s\n",
				p.colorize(colorBold, fmt.Sprintf("%2d.", i+1)),
				c.OriginalText,
				p.colorize(colorDim, hc.formatDate(c.CreatedAt)))
			fmt.Fprintf(w, "      %s\n", p.colorize(colorCyan, c.TransliteratedText))
		}
	}

	if snap.UI.DialogOpen() {
		action, cancel := "[yes] "+deleteLabel, "[no] "+cancelLabel
		if snap.DeletePending {
			action = deletingLabel
			cancel = p.colorize(colorDim, cancel)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.colorize(colorBold, dialogTitleText))
		fmt.Fprintln(w, dialogBodyText)
		fmt.Fprintf(w, "  %s   %s\n", cancel, p.colorize(colorRed, action))
	}

	if snap.UI.Toast != nil {
		fmt.Fprintln(w)
		p.success(w, "%s", toastText(snap.UI.Toast.Kind))
	}
}

// show renders snap unless it would repeat the previous frame.
func (hc *HistoryController) show(snap models.HistorySnapshot) {
	var buf bytes.Buffer
	hc.Render(&buf, snap)

	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.rows = snap.Records
	if hc.out == nil || buf.String() == hc.lastFrame {
		return
	}
	hc.lastFrame = buf.String()
	fmt.Fprintln(hc.out)
	_, _ = hc.out.Write(buf.Bytes())
}

func (hc *HistoryController) row(arg string) (models.Conversion, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return models.Conversion{}, fmt.Errorf("row must be a number: %q", arg)
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	if n < 1 || n > len(hc.rows) {
		return models.Conversion{}, fmt.Errorf("no row %d", n)
	}
	return hc.rows[n-1], nil
}

func (hc *HistoryController) execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	hc.logger.Debugf(providers.TypeUI, "command %q", line)

	switch cmd {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		hc.write(helpText)
	case "list", "ls":
		hc.mu.Lock()
		hc.lastFrame = ""
		hc.mu.Unlock()
		hc.show(hc.history.Snapshot())
	case "refresh", "r":
		// the error view already reports failures
		_ = hc.history.Refresh(ctx)
	case "copy", "c":
		if len(args) != 1 {
			return errors.New("usage: copy <row>")
		}
		record, err := hc.row(args[0])
		if err != nil {
			return err
		}
		// clipboard failures are logged by the service
		_ = hc.history.Copy(ctx, record.TransliteratedText)
	case "delete", "d":
		if len(args) != 1 {
			return errors.New("usage: delete <row>")
		}
		record, err := hc.row(args[0])
		if err != nil {
			return err
		}
		return hc.history.RequestDelete(record.ID)
	case "yes", "y":
		err := hc.history.ConfirmDelete(ctx)
		if errors.Is(err, services.ErrNoPendingDelete) || errors.Is(err, services.ErrDeleteInProgress) {
			return err
		}
	case "no", "n":
		hc.history.CancelDelete()
	case "close":
		hc.history.DismissToast()
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
	return nil
}

func (hc *HistoryController) write(text string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	if hc.out != nil {
		fmt.Fprintln(hc.out, text)
	}
}

// Run starts an interactive session reading commands from in until quit,
// end of input or ctx cancellation.
func (hc *HistoryController) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	hc.mu.Lock()
	hc.out = out
	hc.lastFrame = ""
	hc.mu.Unlock()
	defer func() {
		hc.mu.Lock()
		hc.out = nil
		hc.mu.Unlock()
	}()

	unsubscribe := hc.history.Subscribe(hc.show)
	defer unsubscribe()

	hc.show(hc.history.Snapshot())
	_ = hc.history.Load(ctx)
	hc.write(hc.printer.colorize(colorDim, "type help for commands"))

	lines := make(chan string)
	scanErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			return err
		case line := <-lines:
			err := hc.execute(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				var buf bytes.Buffer
				hc.printer.warning(&buf, "%s", err)
				hc.write(strings.TrimRight(buf.String(), "\n"))
			}
		}
	}
}

// List fetches the history once and renders it to out.
func (hc *HistoryController) List(ctx context.Context, out io.Writer) error {
	err := hc.history.Refresh(ctx)
	hc.Render(out, hc.history.Snapshot())
	return err
}

// Delete removes every id without a confirmation dialog and reports each
// outcome. It fails when any delete failed.
func (hc *HistoryController) Delete(ctx context.Context, out io.Writer, ids []int64) error {
	failed := 0
	for _, r := range hc.history.DeleteMany(ctx, ids) {
		if r.Err != nil {
			failed++
			hc.printer.failure(out, "delete %d: %s", r.ID, r.Err)
			continue
		}
		hc.printer.success(out, "deleted %d", r.ID)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d deletes failed", failed, len(ids))
	}
	return nil
}

// Copy copies the translation of record id to the clipboard.
func (hc *HistoryController) Copy(ctx context.Context, out io.Writer, id int64) error {
	if err := hc.history.Load(ctx); err != nil {
		return err
	}
	if err := hc.history.CopyRecord(ctx, id); err != nil {
		return err
	}
	hc.printer.success(out, copiedToastText)
	return nil
}

func NewHistoryController(conf *structures.Config, history services.HistoryServiceInterface, logger providers.Logger) *HistoryController {
	return &HistoryController{
		history: history,
		logger:  logger,
		printer: printer{noColor: conf.NoColor},
		now:     time.Now,
	}
}
