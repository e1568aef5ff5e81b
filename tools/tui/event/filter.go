// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package event

import (
	"fmt"
)

var _ = fmt.Print

// Filter selects one topic out of the event stream. Filters are plain values
// with no state, safe to share between goroutines.
//
// Every filter for a query reply also accepts PrimaryDeviceAttributes. The DA1
// query is sent after the feature query, so a single bounded wait tells apart
// a terminal that does not support the feature (DA1 reply without the feature
// reply) from one that does not answer at all (nothing before the timeout).
type Filter uint8

const (
	CursorPositionFilter Filter = iota
	KeyboardEnhancementFlagsFilter
	PrimaryDeviceAttributesFilter
	ThemeModeFilter
	SynchronizedOutputModeFilter
	TerminalFeaturesFilter
	// EventFilter matches all user input and no query replies
	EventFilter
	// InternalEventFilter matches everything
	InternalEventFilter
)

var filter_names = [...]string{
	"CursorPositionFilter", "KeyboardEnhancementFlagsFilter", "PrimaryDeviceAttributesFilter",
	"ThemeModeFilter", "SynchronizedOutputModeFilter", "TerminalFeaturesFilter", "EventFilter",
	"InternalEventFilter",
}

func (self Filter) String() string {
	if int(self) < len(filter_names) {
		return filter_names[self]
	}
	return fmt.Sprintf("Filter(%d)", uint8(self))
}

func is_theme_mode_changed(ev InternalEvent) bool {
	if ue, ok := ev.(UserEvent); ok {
		_, ok = ue.Event.(ThemeModeChanged)
		return ok
	}
	return false
}

// Eval reports whether ev belongs to the topic of the filter
func (self Filter) Eval(ev InternalEvent) bool {
	if ev == nil {
		return false
	}
	switch self {
	case CursorPositionFilter:
		_, ok := ev.(CursorPosition)
		return ok
	case PrimaryDeviceAttributesFilter:
		_, ok := ev.(PrimaryDeviceAttributes)
		return ok
	case EventFilter:
		_, ok := ev.(UserEvent)
		return ok
	case InternalEventFilter:
		return true
	}
	if _, is_da1 := ev.(PrimaryDeviceAttributes); is_da1 {
		switch self {
		case KeyboardEnhancementFlagsFilter, ThemeModeFilter, SynchronizedOutputModeFilter, TerminalFeaturesFilter:
			return true
		}
		return false
	}
	switch self {
	case KeyboardEnhancementFlagsFilter:
		_, ok := ev.(KeyboardEnhancementFlagsReply)
		return ok
	case ThemeModeFilter:
		return is_theme_mode_changed(ev)
	case SynchronizedOutputModeFilter:
		_, ok := ev.(SynchronizedOutputModeReply)
		return ok
	case TerminalFeaturesFilter:
		switch ev.(type) {
		case KeyboardEnhancementFlagsReply, SynchronizedOutputModeReply:
			return true
		}
		return is_theme_mode_changed(ev)
	}
	return false
}
