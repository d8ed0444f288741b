package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/oskolki/internal/client/orchestrator"
)

// bell is the terminal's audible cue.
const bell = "\a"

// TerminalNotifier prints polling events with a bell.
type TerminalNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{w: w}
}

func (n *TerminalNotifier) Notify(_ context.Context, e orchestrator.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "\n%s%s (%d)\n", bell, e.Message(), e.Total)
}
