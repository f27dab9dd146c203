// Package export delivers the final place set of a run, either to a file
// in one of several formats or to a caller-supplied callback.
package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/placesweep/internal/discovery"
)

// Format is an output file format.
type Format string

// Supported formats.
const (
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatGeoJSON Format = "geojson"
	FormatYAML    Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatCSV, FormatXLSX, FormatGeoJSON, FormatYAML}

// ParseFormat validates a format name. The empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatJSON, nil
	}
	if f == "yml" {
		return FormatYAML, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", eris.Errorf("export: unknown format %q", s)
}

// DefaultPath is the file written when no path is given.
func (f Format) DefaultPath() string {
	return "places_output." + string(f)
}

// Callback receives the final place set.
type Callback func(ctx context.Context, places []discovery.Place) error

type kind int

const (
	kindNone kind = iota
	kindFile
	kindCallback
)

// Disposition says where a run's results go: a file or a callback. Build
// it with ToFile or ToCallback. It implements discovery.Sink.
type Disposition struct {
	kind     kind
	format   Format
	path     string
	callback Callback
}

// ToFile writes results to path in format. An empty path uses the
// format's default file name in the working directory.
func ToFile(format Format, path string) Disposition {
	if path == "" {
		path = format.DefaultPath()
	}
	return Disposition{kind: kindFile, format: format, path: path}
}

// ToCallback hands results to fn.
func ToCallback(fn Callback) Disposition {
	return Disposition{kind: kindCallback, callback: fn}
}

// Path returns the output file, or "" for a callback.
func (d Disposition) Path() string { return d.path }

// Format returns the output format, or "" for a callback.
func (d Disposition) Format() Format { return d.format }

// Deliver sends places to the file or callback.
func (d Disposition) Deliver(ctx context.Context, places []discovery.Place) error {
	switch d.kind {
	case kindFile:
		return WriteFile(d.format, d.path, places)
	case kindCallback:
		if d.callback == nil {
			return eris.New("export: nil callback")
		}
		return d.callback(ctx, places)
	default:
		return eris.New("export: disposition not set")
	}
}

// WriteFile writes places to path, creating parent directories.
func WriteFile(format Format, path string, places []discovery.Place) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "export: create directory %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := Write(f, format, places); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "export: close %s", path)
	}

	zap.L().Info("results written",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("places", len(places)),
	)
	return nil
}

func details(p discovery.Place) discovery.Details {
	if d, ok := p.(discovery.Describer); ok {
		return d.Details()
	}
	return discovery.Details{}
}

func payload(p discovery.Place) any {
	if pl, ok := p.(discovery.Payloader); ok {
		return pl.Payload()
	}
	return p
}
