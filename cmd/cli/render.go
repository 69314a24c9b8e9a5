package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
	"github.com/Takita08/Marko-Docu-Ai/internal/viewstate"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func checkOutput(output string) error {
	switch output {
	case outputText, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q: must be text or json", output)
	}
}

// document is a local file ready for submission.
type document struct {
	Name     string
	MIMEType string
	File     *os.File
}

func (d *document) Close() error { return d.File.Close() }

// openDocument opens path and settles its mime type. An explicit type wins;
// otherwise the content is sniffed, never the extension.
func openDocument(path, mimeType string) (*document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}

	if mimeType == "" {
		detected, err := mimetype.DetectReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("detecting document type: %w", err)
		}
		mimeType = strings.SplitN(detected.String(), ";", 2)[0]
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, fmt.Errorf("rewinding document: %w", err)
		}
	}

	return &document{Name: filepath.Base(path), MIMEType: mimeType, File: f}, nil
}

// printState writes the final view and returns errFailed for the Failed
// phase so the process exits non-zero.
func printState(w io.Writer, s viewstate.State, output string) error {
	v := s.View()

	if output == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
	} else {
		renderText(w, v)
	}

	if v.Phase == viewstate.PhaseFailed {
		return errFailed
	}
	return nil
}

func renderText(w io.Writer, v viewstate.View) {
	switch {
	case v.Error != nil:
		fmt.Fprintf(w, "Error: %s\n", *v.Error)
	case v.Result != nil:
		renderAnalysis(w, v.FileName, v.Result)
	case v.StockResult != nil:
		renderPrediction(w, v.StockResult)
	default:
		fmt.Fprintf(w, "No result (%s)\n", v.Phase)
	}
}

func renderAnalysis(w io.Writer, fileName *string, a *model.DocumentAnalysis) {
	if fileName != nil {
		fmt.Fprintf(w, "%s\n\n", *fileName)
	}
	fmt.Fprintf(w, "Summary (%s)\n  %s\n", a.Sentiment, a.Summary)
	writeList(w, "Key insights", a.KeyInsights)
	if a.DataInterpretation != "" {
		fmt.Fprintf(w, "\nData interpretation\n  %s\n", a.DataInterpretation)
	}
	if len(a.WatchOuts) > 0 {
		fmt.Fprintln(w, "\nWatch-outs")
		for _, wo := range a.WatchOuts {
			fmt.Fprintf(w, "  [%s] %s: %s\n", wo.Severity, wo.Title, wo.Description)
		}
	}
}

func renderPrediction(w io.Writer, p *model.StockPrediction) {
	fmt.Fprintf(w, "%s  %s  target %s\n", p.Symbol, strings.ToUpper(string(p.CurrentTrend)), p.PriceTarget)
	if p.Rationale != "" {
		fmt.Fprintf(w, "\n  %s\n", p.Rationale)
	}
	writeList(w, "Catalysts", p.Catalysts)
	writeList(w, "Risks", p.Risks)
	if len(p.Sources) > 0 {
		fmt.Fprintln(w, "\nSources")
		for _, src := range p.Sources {
			fmt.Fprintf(w, "  %s <%s>\n", src.Title, src.URI)
		}
	}
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
