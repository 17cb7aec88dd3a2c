package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Action is something a keyboard shortcut asks the sketch to do.
type Action int

const (
	ActionNone Action = iota
	ActionUndo
	ActionRedo
	ActionClear
)

func (a Action) String() string {
	switch a {
	case ActionUndo:
		return "undo"
	case ActionRedo:
		return "redo"
	case ActionClear:
		return "clear"
	}
	return "none"
}

// Binding maps one key chord to an action.
type Binding struct {
	Key      fyne.KeyName
	Modifier fyne.KeyModifier
	Action   Action
}

// primaries are Ctrl and Cmd; both are bound on every platform.
var primaries = []fyne.KeyModifier{fyne.KeyModifierControl, fyne.KeyModifierSuper}

// Bindings lists every key chord the sketch answers to.
func Bindings() []Binding {
	var out []Binding
	for _, mod := range primaries {
		out = append(out,
			Binding{fyne.KeyZ, mod, ActionUndo},
			Binding{fyne.KeyY, mod, ActionRedo},
			Binding{fyne.KeyZ, mod | fyne.KeyModifierShift, ActionRedo},
			Binding{fyne.KeyBackspace, mod, ActionClear},
		)
	}
	return out
}

// Lookup returns the action bound to key with exactly the modifiers mods.
func Lookup(key fyne.KeyName, mods fyne.KeyModifier) Action {
	for _, b := range Bindings() {
		if b.Key == key && b.Modifier == mods {
			return b.Action
		}
	}
	return ActionNone
}

// AddShortcuts registers every binding on c and routes them to do.
func AddShortcuts(c fyne.Canvas, do func(Action)) {
	for _, b := range Bindings() {
		action := b.Action
		c.AddShortcut(&desktop.CustomShortcut{KeyName: b.Key, Modifier: b.Modifier}, func(fyne.Shortcut) {
			do(action)
		})
	}
}

// Editor is the part of surface.Controller that shortcuts drive.
type Editor interface {
	Undo()
	Redo()
	Clear()
}

// Apply performs action on e.
func Apply(e Editor, action Action) {
	switch action {
	case ActionUndo:
		e.Undo()
	case ActionRedo:
		e.Redo()
	case ActionClear:
		e.Clear()
	}
}
