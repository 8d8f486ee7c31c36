package cardsync

import "sync"

// PanelDoneHook is called when one panel's unit of work has finished
type PanelDoneHook func(result PanelResult)

// hooks manages event callbacks for panel progress
type hooks struct {
	mu          sync.RWMutex
	onPanelDone []PanelDoneHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnPanelDone registers a callback for finished panels
func (h *hooks) OnPanelDone(fn PanelDoneHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onPanelDone = append(h.onPanelDone, fn)
}

// triggerPanelDone runs every registered callback for result
func (h *hooks) triggerPanelDone(result PanelResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onPanelDone {
		hook(result)
	}
}
