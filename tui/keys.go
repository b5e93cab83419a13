package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"mtasks/internal/infrastructure/config"
)

type keyMap struct {
	Up               key.Binding
	Down             key.Binding
	Toggle           key.Binding
	Delete           key.Binding
	Search           key.Binding
	FilterCategory   key.Binding
	FilterPriority   key.Binding
	FilterCompletion key.Binding
	Quit             key.Binding
}

var keys = defaultKeyMap()

func defaultKeyMap() keyMap {
	return keyMap{
		Up:               binding([]string{"up", "k"}, "up"),
		Down:             binding([]string{"down", "j"}, "down"),
		Toggle:           binding([]string{" ", "x"}, "toggle"),
		Delete:           binding([]string{"d"}, "delete"),
		Search:           binding([]string{"/"}, "search"),
		FilterCategory:   binding([]string{"c"}, "category"),
		FilterPriority:   binding([]string{"p"}, "priority"),
		FilterCompletion: binding([]string{"f"}, "show"),
		Quit:             binding([]string{"q", "ctrl+c"}, "quit"),
	}
}

// InitKeybindings replaces the default bindings with the configured ones.
// Actions without configured keys keep their defaults.
func InitKeybindings(cfg *config.Config) {
	keys = defaultKeyMap()
	kb := cfg.Keybindings

	override := func(b *key.Binding, configured []string) {
		if len(configured) > 0 {
			*b = binding(configured, b.Help().Desc)
		}
	}
	override(&keys.Up, kb.Up)
	override(&keys.Down, kb.Down)
	override(&keys.Toggle, kb.Toggle)
	override(&keys.Delete, kb.Delete)
	override(&keys.Search, kb.Search)
	override(&keys.FilterCategory, kb.FilterCategory)
	override(&keys.FilterPriority, kb.FilterPriority)
	override(&keys.FilterCompletion, kb.FilterCompletion)
	override(&keys.Quit, kb.Quit)
}

func binding(k []string, desc string) key.Binding {
	return key.NewBinding(
		key.WithKeys(k...),
		key.WithHelp(helpKeys(k), desc),
	)
}

func helpKeys(k []string) string {
	names := make([]string, len(k))
	for i, s := range k {
		if s == " " {
			s = "space"
		}
		names[i] = s
	}
	return strings.Join(names, "/")
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Delete, k.Search, k.FilterCategory, k.FilterPriority, k.FilterCompletion, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Delete},
		{k.Search, k.FilterCategory, k.FilterPriority, k.FilterCompletion, k.Quit},
	}
}
