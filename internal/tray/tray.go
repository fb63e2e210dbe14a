// Package tray provides the system tray surface for local recognition mode.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray shows the last confirmed sign and the running sentence, and offers
// pause, reset and quit.
type Tray struct {
	mu       sync.RWMutex
	onToggle func(enabled bool)
	onReset  func()
	onQuit   func()
	enabled  bool
	lastSign string
	sentence string

	// Menu items stored for later updates
	menuToggle   *systray.MenuItem
	menuLastSign *systray.MenuItem
	menuSentence *systray.MenuItem
}

// New creates a new Tray instance with recognition enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback invoked when recognition is paused or resumed.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnReset sets the callback invoked when the user clears the sentence.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit stops the tray loop started by Run.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("SignSync")
	systray.SetTooltip("SignSync sign language recognition")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume recognition")
	systray.AddSeparator()

	t.menuLastSign = systray.AddMenuItem(lastSignTitle(t.lastSign), "Last confirmed sign")
	t.menuLastSign.Disable()
	t.menuSentence = systray.AddMenuItem(sentenceTitle(t.sentence), "Current sentence")
	t.menuSentence.Disable()
	t.mu.Unlock()

	systray.AddSeparator()
	menuReset := systray.AddMenuItem("Clear sentence", "Reset the sentence and history")
	menuQuit := systray.AddMenuItem("Quit", "Quit SignSync")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuReset.ClickedCh:
				t.handleReset()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleReset() {
	t.mu.RLock()
	callback := t.onReset
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	t.SetState("", "")
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetState updates the last sign and sentence shown in the menu. An empty
// lastSign keeps the previous one unless sentence is empty too.
func (t *Tray) SetState(lastSign, sentence string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if lastSign != "" || sentence == "" {
		t.lastSign = lastSign
	}
	t.sentence = sentence

	if t.menuLastSign != nil {
		t.menuLastSign.SetTitle(lastSignTitle(t.lastSign))
	}
	if t.menuSentence != nil {
		t.menuSentence.SetTitle(sentenceTitle(t.sentence))
	}
}

// State returns the displayed last sign and sentence.
func (t *Tray) State() (lastSign, sentence string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastSign, t.sentence
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Recognizing"
	}
	return "○ Paused"
}

func lastSignTitle(sign string) string {
	if sign == "" {
		return "Last: none"
	}
	return "Last: " + sign
}

// sentenceTitle keeps the menu item readable for long sentences.
func sentenceTitle(sentence string) string {
	if sentence == "" {
		return "Sentence: (empty)"
	}
	r := []rune(sentence)
	if len(r) > 48 {
		return "Sentence: …" + string(r[len(r)-47:])
	}
	return "Sentence: " + sentence
}
