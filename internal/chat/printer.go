package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/slack-go/slack"
)

// Printer writes the blocks it would publish to w as indented JSON.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Publish(_ context.Context, blocks []slack.Block) error {
	raw, err := json.MarshalIndent(slack.Blocks{BlockSet: blocks}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode blocks: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(raw))
	return err
}
