// Package journal orchestrates a fetch run: resolve the note for a date,
// fetch the day's observation, and merge the selected properties into the
// note's front matter, creating the note from a template when absent.
package journal

import (
	"fmt"
	"path"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/dgallagher/wxjournal/internal/logger"
	"github.com/dgallagher/wxjournal/internal/note"
	"github.com/dgallagher/wxjournal/internal/template"
	"github.com/dgallagher/wxjournal/internal/wxerrors"
)

// Writer creates or updates journal notes on an injected filesystem. The
// filesystem serializes access; a read-modify-write here is a single
// logical operation with no locking of its own.
type Writer struct {
	fs  afero.Fs
	log *logger.Logger
	now func() time.Time
}

// NewWriter creates a Writer over fs.
func NewWriter(fs afero.Fs, log *logger.Logger) *Writer {
	return &Writer{
		fs:  fs,
		log: log.Named("writer"),
		now: time.Now,
	}
}

// CreateOrUpdate merges props into the note for date, creating it first
// when it does not exist. markerKey guards repeat application: a note that
// already carries a non-empty value under it is left untouched.
func (w *Writer) CreateOrUpdate(date time.Time, naming note.Naming, markerKey string, props map[string]interface{}) error {
	notePath, _ := note.ResolvePath(date, naming)
	merger := note.NewMerger(markerKey)

	exists, err := afero.Exists(w.fs, notePath)
	if err != nil {
		return &wxerrors.WriteError{Path: notePath, Err: err}
	}

	var doc *note.Document
	if exists {
		content, err := afero.ReadFile(w.fs, notePath)
		if err != nil {
			return &wxerrors.WriteError{Path: notePath, Err: err}
		}
		doc, err = note.Parse(notePath, content)
		if err != nil {
			return err
		}
		if !merger.Apply(doc, props) {
			w.log.Info("note already has weather data, skipping",
				zap.String("path", notePath))
			return nil
		}
	} else {
		doc, err = w.freshDocument(date, notePath, naming)
		if err != nil {
			return err
		}
		merger.Apply(doc, props)
	}

	out, err := doc.Serialize()
	if err != nil {
		return &wxerrors.WriteError{Path: notePath, Err: err}
	}

	if dir := path.Dir(notePath); dir != "." {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			return &wxerrors.WriteError{Path: dir, Err: err}
		}
	}
	if err := afero.WriteFile(w.fs, notePath, out, 0o644); err != nil {
		return &wxerrors.WriteError{Path: notePath, Err: err}
	}

	if exists {
		w.log.Info("weather data added to existing note", zap.String("path", notePath))
	} else {
		w.log.Info("created new note with weather data", zap.String("path", notePath))
	}
	return nil
}

// freshDocument builds the content for a note that does not exist yet:
// rendered from the configured template, or a minimal dated title line.
func (w *Writer) freshDocument(date time.Time, notePath string, naming note.Naming) (*note.Document, error) {
	if naming.TemplatePath == "" {
		return note.NewDocument(notePath, defaultContent(date)), nil
	}

	exists, err := afero.Exists(w.fs, naming.TemplatePath)
	if err != nil {
		return nil, &wxerrors.WriteError{Path: naming.TemplatePath, Err: err}
	}
	if !exists {
		return nil, &wxerrors.NotFoundError{Path: naming.TemplatePath}
	}
	raw, err := afero.ReadFile(w.fs, naming.TemplatePath)
	if err != nil {
		return nil, &wxerrors.WriteError{Path: naming.TemplatePath, Err: err}
	}

	rendered := template.Render(string(raw), date, w.now())
	return note.Parse(notePath, []byte(rendered))
}

// defaultContent is the fallback body when no template is configured.
func defaultContent(date time.Time) string {
	return fmt.Sprintf("# %s, %s %d, %d",
		date.Weekday(), date.Month(), date.Day(), date.Year())
}
