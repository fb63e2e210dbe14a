// Package locale maps canonical gesture labels to display text.
package locale

import (
	"strings"

	"github.com/ayusman/signsync/internal/gesture"
)

// Locale selects a display-text table.
type Locale string

// Supported locales.
const (
	English Locale = "en"
	Tamil   Locale = "ta"
)

var tamil = map[gesture.Label]string{
	gesture.Hello:    "வணக்கம்",
	gesture.ThankYou: "நன்றி",
	gesture.Yes:      "ஆம்",
	gesture.No:       "இல்லை",
	gesture.ILoveYou: "நான் உன்னை காதலிக்கிறேன்",
	gesture.Help:     "உதவி",
	gesture.Stop:     "நில்",
	gesture.One:      "ஒன்று",
	gesture.Wait:     "காத்திரு",
	gesture.Good:     "நல்லது",
	gesture.Sorry:    "மன்னிக்கவும்",
	gesture.Please:   "தயவுசெய்து",
	gesture.Little:   "கொஞ்சம்",
	gesture.Perfect:  "மிகவும் நல்லது",
	gesture.Water:    "தண்ணீர்",
}

// Parse returns the locale for a tag, defaulting to English.
func Parse(tag string) Locale {
	switch Locale(strings.ToLower(strings.TrimSpace(tag))) {
	case Tamil:
		return Tamil
	default:
		return English
	}
}

// Display returns the text shown for label. Labels without a mapping,
// including the Unknown and No Hand sentinels, are shown as-is.
func (l Locale) Display(label gesture.Label) string {
	if l == Tamil {
		if text, ok := tamil[label]; ok {
			return text
		}
	}
	return string(label)
}

// Supported lists the available locales.
func Supported() []Locale {
	return []Locale{English, Tamil}
}
