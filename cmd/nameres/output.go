package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"nameres/internal/app"
	"nameres/internal/core/config"
	"nameres/internal/engine/diag"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type printer struct {
	w        io.Writer
	json     bool
	suppress *config.Suppress
}

func newPrinter(w io.Writer, jsonOut bool, suppress *config.Suppress) *printer {
	return &printer{w: w, json: jsonOut, suppress: suppress}
}

func (p *printer) print(out *app.Outcome) error {
	diags := out.Diagnostics(p.suppress)
	if p.json {
		return p.printJSON(out, diags)
	}
	return p.printText(out, diags)
}

type jsonReport struct {
	Unit        string             `json:"unit"`
	Modules     int                `json:"modules"`
	Resolved    int                `json:"resolved"`
	Diagnostics []*diag.Diagnostic `json:"diagnostics"`
}

func (p *printer) printJSON(out *app.Outcome, diags []*diag.Diagnostic) error {
	report := jsonReport{
		Unit:        out.Unit.Name,
		Modules:     out.Tree.Len(),
		Resolved:    len(out.Resolved),
		Diagnostics: diags,
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (p *printer) printText(out *app.Outcome, diags []*diag.Diagnostic) error {
	if _, err := fmt.Fprintln(p.w, headerStyle.Render(fmt.Sprintf("unit %s", out.Unit.Name))); err != nil {
		return err
	}

	for _, d := range diags {
		if _, err := fmt.Fprintln(p.w, diag.Render(d)); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d modules, %d references resolved", out.Tree.Len(), len(out.Resolved))
	if len(diags) == 0 {
		if _, err := fmt.Fprintln(p.w, okStyle.Render("ok"), summaryStyle.Render(summary)); err != nil {
			return err
		}
		return nil
	}
	_, err := fmt.Fprintln(p.w, summaryStyle.Render(fmt.Sprintf("%s, %d diagnostics", summary, len(diags))))
	return err
}
