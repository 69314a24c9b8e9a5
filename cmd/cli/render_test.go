package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
	"github.com/Takita08/Marko-Docu-Ai/internal/viewstate"
)

func displayingStock() viewstate.State {
	s := viewstate.Reduce(viewstate.Initial(viewstate.ModeStock), viewstate.SubmitTicker{Symbol: "NVDA"})
	return viewstate.Reduce(s, viewstate.Resolved{Result: viewstate.StockResult{Prediction: &model.StockPrediction{
		Symbol:       "NVDA",
		CurrentTrend: model.TrendBullish,
		PriceTarget:  "$150",
		Rationale:    "Data center demand.",
		Catalysts:    []string{"AI demand"},
		Risks:        []string{"Regulation"},
		Sources:      []model.GroundingSource{{Title: "Reuters", URI: "https://reuters.com"}},
	}}})
}

func TestPrintState_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := printState(&buf, displayingStock(), outputText); err != nil {
		t.Fatalf("printState: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"NVDA", "BULLISH", "$150", "AI demand", "Regulation", "https://reuters.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintState_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printState(&buf, displayingStock(), outputJSON); err != nil {
		t.Fatalf("printState: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["result"] != nil || got["error"] != nil {
		t.Errorf("expected null result and error, got %v / %v", got["result"], got["error"])
	}
	if got["activeMode"] != "stock" {
		t.Errorf("activeMode = %v, want stock", got["activeMode"])
	}
}

func TestPrintState_FailedReturnsErrFailed(t *testing.T) {
	s := viewstate.Reduce(viewstate.Initial(viewstate.ModeStock), viewstate.SubmitTicker{Symbol: "AAPL"})
	s = viewstate.Reduce(s, viewstate.Failed{Message: "the AI service did not respond in time"})

	var buf bytes.Buffer
	err := printState(&buf, s, outputText)
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
	if !strings.Contains(buf.String(), "did not respond in time") {
		t.Errorf("error message not printed: %q", buf.String())
	}
}

func TestCheckOutput(t *testing.T) {
	if err := checkOutput("yaml"); err == nil {
		t.Error("expected an error for yaml")
	}
	if err := checkOutput(outputJSON); err != nil {
		t.Errorf("json rejected: %v", err)
	}
}

func TestOpenDocument_Sniffs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes")
	if err := os.WriteFile(path, []byte("%PDF-1.4\n1 0 obj\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := openDocument(path, "")
	if err != nil {
		t.Fatalf("openDocument: %v", err)
	}
	defer doc.Close()

	if doc.MIMEType != "application/pdf" {
		t.Errorf("MIMEType = %q, want application/pdf", doc.MIMEType)
	}
	if doc.Name != "notes" {
		t.Errorf("Name = %q, want notes", doc.Name)
	}

	// The reader must be rewound after sniffing.
	head := make([]byte, 4)
	if _, err := doc.File.Read(head); err != nil || string(head) != "%PDF" {
		t.Errorf("file not rewound: %q, %v", head, err)
	}
}

func TestOpenDocument_ExplicitType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := openDocument(path, "text/markdown")
	if err != nil {
		t.Fatalf("openDocument: %v", err)
	}
	defer doc.Close()
	if doc.MIMEType != "text/markdown" {
		t.Errorf("MIMEType = %q, want text/markdown", doc.MIMEType)
	}
}
