package wm

import (
	"fmt"
	"strings"
)

// Kind identifies a fixed window kind.
type Kind string

const (
	KindTasks    Kind = "tasks"
	KindNotes    Kind = "notes"
	KindTimer    Kind = "timer"
	KindCalendar Kind = "calendar"
	KindSettings Kind = "settings"
	KindPlaylist Kind = "playlist"
	KindLinks    Kind = "customLinks"
	KindWidgets  Kind = "widgets"

	// KindWidget marks the dynamic widget family. Widget windows are
	// addressed by WindowType.WidgetID, not by a registry entry per kind.
	KindWidget Kind = "widget"
)

// FixedKinds lists the closed set of built-in window kinds.
var FixedKinds = []Kind{
	KindTasks, KindNotes, KindTimer, KindCalendar,
	KindSettings, KindPlaylist, KindLinks, KindWidgets,
}

// Valid reports whether k is a known fixed kind.
func (k Kind) Valid() bool {
	for _, fk := range FixedKinds {
		if k == fk {
			return true
		}
	}
	return false
}

const widgetPrefix = "widget-"

// WindowType addresses a single window: either one of the fixed kinds or a
// dynamically-named widget window.
type WindowType struct {
	Kind     Kind   `json:"kind"`
	WidgetID string `json:"widget_id,omitempty"`
}

// Fixed returns the WindowType for a built-in kind.
func Fixed(k Kind) WindowType {
	return WindowType{Kind: k}
}

// Widget returns the WindowType for a user-added widget window.
func Widget(id string) WindowType {
	return WindowType{Kind: KindWidget, WidgetID: id}
}

// IsWidget reports whether t belongs to the dynamic widget family.
func (t WindowType) IsWidget() bool {
	return t.Kind == KindWidget
}

// String renders the wire form: the kind name, or "widget-<id>".
func (t WindowType) String() string {
	if t.IsWidget() {
		return widgetPrefix + t.WidgetID
	}
	return string(t.Kind)
}

// ParseType parses the wire form produced by String. Widget types need no
// prior registration; any caller holding a "widget-<id>" string can address
// that window.
func ParseType(s string) (WindowType, error) {
	if strings.HasPrefix(s, widgetPrefix) {
		id := strings.TrimPrefix(s, widgetPrefix)
		if id == "" {
			return WindowType{}, fmt.Errorf("empty widget id in window type %q", s)
		}
		return Widget(id), nil
	}
	k := Kind(s)
	if !k.Valid() {
		return WindowType{}, fmt.Errorf("unknown window type %q", s)
	}
	return Fixed(k), nil
}

// State holds the lifecycle state of one window.
type State struct {
	Open      bool `json:"open"`
	Maximized bool `json:"maximized"`
	Z         int  `json:"z"`
}
