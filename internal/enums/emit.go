package enums

import (
	"fmt"
	"io"
	"strings"
)

// EmitOptions controls the emitted enum syntax.
type EmitOptions struct {
	// ConstEnum emits "export const enum" instead of "export enum".
	ConstEnum bool

	// Header is written once, before the first block.
	Header string
}

// Emitter writes groupings as enum blocks.
type Emitter struct {
	opts        EmitOptions
	wroteHeader bool
}

// NewEmitter returns an emitter with the given options.
func NewEmitter(opts EmitOptions) *Emitter {
	return &Emitter{opts: opts}
}

// Emit writes one block per grouping, in the order given.
func (e *Emitter) Emit(w io.Writer, groupings []*Grouping) error {
	var b strings.Builder
	if !e.wroteHeader && e.opts.Header != "" {
		b.WriteString(e.opts.Header)
		if !strings.HasSuffix(e.opts.Header, "\n") {
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	e.wroteHeader = true

	for _, g := range groupings {
		e.writeGrouping(&b, g)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write enums: %w", err)
	}
	return nil
}

func (e *Emitter) writeGrouping(b *strings.Builder, g *Grouping) {
	keyword := "export enum"
	if e.opts.ConstEnum {
		keyword = "export const enum"
	}
	fmt.Fprintf(b, "%s %s {\n", keyword, g.Name)

	// A first member of value 0 needs no initializer.
	prev := int64(-1)
	for _, m := range g.Members {
		if m.Value == prev+1 {
			fmt.Fprintf(b, "\t%s,\n", m.Name)
		} else {
			fmt.Fprintf(b, "\t%s = %d,\n", m.Name, m.Value)
		}
		prev = m.Value
	}
	b.WriteString("};\n\n")
}

// Format returns the block for a single grouping.
func Format(g *Grouping, opts EmitOptions) string {
	var b strings.Builder
	(&Emitter{opts: opts}).writeGrouping(&b, g)
	return b.String()
}
