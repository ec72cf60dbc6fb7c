package input

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"dbu-cost/internal/errors"
	"dbu-cost/internal/logging"
)

// FormatFor picks the document format from a file extension
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return FormatHCL, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	default:
		return "", false
	}
}

// Load reads, decodes and resolves the scenario file at path
func Load(path string) (*Request, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, errors.Newf(errors.TypeInput, "unsupported scenario file %s (use .hcl, .yaml, .yml or .json)", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeNotFound, err, "scenario file %s could not be read", path)
	}
	doc, err := Parse(path, format, src)
	if err != nil {
		return nil, err
	}
	logging.Named("input").Debug("scenario decoded",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.String("preset", doc.Preset))
	return Resolve(doc, Source{Path: path, Format: format, Digest: Digest(src)})
}

// Parse decodes src in the given format. filename is used in diagnostics.
func Parse(filename string, format Format, src []byte) (*Document, error) {
	switch format {
	case FormatHCL:
		return parseHCL(filename, src)
	case FormatYAML, FormatJSON:
		return parseYAML(filename, src)
	default:
		return nil, errors.Newf(errors.TypeInput, "unsupported scenario format %q", format)
	}
}

func parseHCL(filename string, src []byte) (*Document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(filename, diags)
	}

	doc := &Document{}
	if diags := gohcl.DecodeBody(file.Body, nil, doc); diags.HasErrors() {
		return nil, diagError(filename, diags)
	}
	return doc, nil
}

// diagError flattens HCL diagnostics into a parsing error with one issue per error
func diagError(filename string, diags hcl.Diagnostics) error {
	err := errors.New(errors.TypeParsing, "scenario "+filename+" could not be decoded")
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		line := 0
		if diag.Subject != nil {
			line = diag.Subject.Start.Line
		}
		err.WithIssues(fmt.Sprintf("%s:%d: %s: %s", filename, line, diag.Summary, diag.Detail))
	}
	return err
}

// parseYAML decodes YAML or JSON and rejects unknown keys
func parseYAML(filename string, src []byte) (*Document, error) {
	doc := &Document{}
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil && err != io.EOF {
		return nil, errors.Parsing("scenario "+filename+" could not be decoded", err).WithIssues(err.Error())
	}
	return doc, nil
}
