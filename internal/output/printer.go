// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"fmt"
	"io"
	"strings"
)

const bannerWidth = 60

// Printer writes human-readable progress for long running commands.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Banner prints a title framed by horizontal rules.
func (p *Printer) Banner(title string) {
	rule := strings.Repeat("=", bannerWidth)
	fmt.Fprintln(p.w, rule)
	fmt.Fprintf(p.w, "  %s\n", title)
	fmt.Fprintln(p.w, rule)
}

// Step prints a numbered step header, e.g. "[2/4] Connecting...".
func (p *Printer) Step(index, total int, format string, a ...any) {
	fmt.Fprintf(p.w, "%s %s\n", WithHighLightFormat("[%d/%d]", index, total), fmt.Sprintf(format, a...))
}

// Success prints an indented check-marked line.
func (p *Printer) Success(format string, a ...any) {
	fmt.Fprintf(p.w, "  %s %s\n", WithSuccessFormat("✓"), fmt.Sprintf(format, a...))
}

// Warning prints an indented warning line.
func (p *Printer) Warning(format string, a ...any) {
	fmt.Fprintf(p.w, "  %s %s\n", WithWarningFormat("!"), fmt.Sprintf(format, a...))
}

// Detail prints an indented informational line.
func (p *Printer) Detail(format string, a ...any) {
	fmt.Fprintf(p.w, "    %s\n", fmt.Sprintf(format, a...))
}

// Line prints a plain line.
func (p *Printer) Line(format string, a ...any) {
	fmt.Fprintf(p.w, format+"\n", a...)
}

// Blank prints an empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}
