// Package printer is a non-interactive presenter.View that writes the final
// state of a pipeline run to an io.Writer.
package printer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/pders01/roster/internal/presenter"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatTOML     Format = "toml"
	FormatYAML     Format = "yaml"
)

// ParseFormat accepts "markdown" (or "md"), "json", "toml" and "yaml" (or "yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want markdown, json, toml or yaml)", s)
	}
}

type Option func(*Printer)

// WithStyle selects the glamour style for markdown output ("auto", "dark",
// "light", "notty", "ascii").
func WithStyle(style string) Option {
	return func(p *Printer) { p.style = style }
}

func WithWordWrap(width int) Option {
	return func(p *Printer) { p.wrap = width }
}

// Printer records the latest view state; Flush writes it out once.
type Printer struct {
	w      io.Writer
	format Format
	style  string
	wrap   int

	loading     bool
	cards       []presenter.Card
	noResults   bool
	errVisible  bool
	errMessage  string
	count       int
	lastUpdated time.Time
}

func New(w io.Writer, format Format, opts ...Option) *Printer {
	p := &Printer{
		w:      w,
		format: format,
		style:  "auto",
		wrap:   80,
		cards:  []presenter.Card{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Printer) SetLoading(active bool)             { p.loading = active }
func (p *Printer) RenderCards(cards []presenter.Card) { p.cards = cards }
func (p *Printer) ShowNoResults(visible bool)         { p.noResults = visible }
func (p *Printer) SetCount(n int)                     { p.count = n }
func (p *Printer) SetLastUpdated(t time.Time)         { p.lastUpdated = t }

func (p *Printer) ShowError(message string) {
	p.errVisible = true
	p.errMessage = message
}

func (p *Printer) HideError() {
	p.errVisible = false
	p.errMessage = ""
}

// Flush writes the recorded state. A visible error banner is returned as an
// error and nothing is written; the caller reports it.
func (p *Printer) Flush() error {
	if p.errVisible {
		return errors.New(p.errMessage)
	}

	switch p.format {
	case FormatJSON:
		return p.writeJSON()
	case FormatTOML:
		return p.writeTOML()
	case FormatYAML:
		return p.writeYAML()
	default:
		return p.writeMarkdown()
	}
}

type document struct {
	Count       int              `json:"count" toml:"count" yaml:"count"`
	LastUpdated time.Time        `json:"last_updated" toml:"last_updated" yaml:"last_updated"`
	Users       []presenter.Card `json:"users" toml:"users" yaml:"users"`
}

func (p *Printer) document() document {
	return document{Count: p.count, LastUpdated: p.lastUpdated, Users: p.cards}
}

func (p *Printer) writeJSON() error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p.document()); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func (p *Printer) writeTOML() error {
	data, err := toml.Marshal(p.document())
	if err != nil {
		return fmt.Errorf("encoding toml: %w", err)
	}
	_, err = p.w.Write(data)
	return err
}

func (p *Printer) writeYAML() error {
	data, err := yaml.MarshalWithOptions(p.document(),
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	_, err = p.w.Write(data)
	return err
}

func (p *Printer) writeMarkdown() error {
	var opts []glamour.TermRendererOption
	if p.style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(p.style))
	}
	opts = append(opts, glamour.WithWordWrap(p.wrap))

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	rendered, err := r.Render(p.Markdown())
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(p.w, rendered)
	return err
}

// Markdown is the unrendered markdown document for the recorded state.
func (p *Printer) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Users (%d)\n\n", p.count)
	if !p.lastUpdated.IsZero() {
		fmt.Fprintf(&b, "*Last updated: %s*\n\n", p.lastUpdated.Format("15:04:05"))
	}

	if p.noResults || len(p.cards) == 0 {
		b.WriteString("No users found matching your search.\n")
		return b.String()
	}

	for _, c := range p.cards {
		b.WriteString(CardMarkdown(c))
		b.WriteString("\n")
	}
	return b.String()
}

// CardMarkdown renders a single card as a markdown section.
func CardMarkdown(c presenter.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## [%s] %s\n\n", c.Initial, c.Name)
	fmt.Fprintf(&b, "%s\n\n", c.Handle)
	fmt.Fprintf(&b, "- **Email:** [%s](%s)\n", c.Email, c.EmailLink)
	fmt.Fprintf(&b, "- **Phone:** [%s](%s)\n", c.Phone, c.PhoneLink)
	fmt.Fprintf(&b, "- **Address:** %s\n", c.Address)
	fmt.Fprintf(&b, "- **Website:** [%s](%s)\n", c.Website, c.WebsiteLink)
	fmt.Fprintf(&b, "- **Company:** %s\n", c.Company)
	return b.String()
}
