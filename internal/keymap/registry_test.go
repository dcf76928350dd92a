package keymap

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type markerMsg struct{ id string }

func command(id string) Command {
	return Command{
		ID:   id,
		Name: id,
		Handler: func() tea.Cmd {
			return func() tea.Msg { return markerMsg{id: id} }
		},
	}
}

func resolve(t *testing.T, cmd tea.Cmd) string {
	t.Helper()
	if cmd == nil {
		return ""
	}
	msg, ok := cmd().(markerMsg)
	if !ok {
		t.Fatalf("command produced %T, want markerMsg", cmd())
	}
	return msg.id
}

func key(s string) tea.KeyMsg {
	if s == "tab" {
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestHandle_GlobalBinding(t *testing.T) {
	r := NewRegistry()
	r.RegisterCommand(command("quit"))
	r.RegisterBinding(Binding{Key: "q", Command: "quit", Context: "global"})

	if got := resolve(t, r.Handle(key("q"), "global")); got != "quit" {
		t.Fatalf("resolved %q, want quit", got)
	}
}

func TestHandle_ContextTakesPrecedenceOverGlobal(t *testing.T) {
	r := NewRegistry()
	r.RegisterCommand(command("global-d"))
	r.RegisterCommand(command("chat-d"))
	r.RegisterBinding(Binding{Key: "d", Command: "global-d", Context: "global"})
	r.RegisterBinding(Binding{Key: "d", Command: "chat-d", Context: "chat"})

	if got := resolve(t, r.Handle(key("d"), "chat")); got != "chat-d" {
		t.Fatalf("resolved %q, want chat-d", got)
	}
	if got := resolve(t, r.Handle(key("d"), "other")); got != "global-d" {
		t.Fatalf("resolved %q, want global-d", got)
	}
}

func TestHandle_UserOverrideWinsOverEverything(t *testing.T) {
	r := NewRegistry()
	r.RegisterCommand(command("original"))
	r.RegisterCommand(command("custom"))
	r.RegisterBinding(Binding{Key: "x", Command: "original", Context: "chat"})
	r.SetUserOverride("x", "custom")

	if got := resolve(t, r.Handle(key("x"), "chat")); got != "custom" {
		t.Fatalf("resolved %q, want custom", got)
	}
}

func TestHandle_UnboundKeyReturnsNil(t *testing.T) {
	r := NewRegistry()
	if cmd := r.Handle(key("z"), "global"); cmd != nil {
		t.Fatal("unbound key should resolve to nil")
	}
}

func TestRegisterPluginBinding(t *testing.T) {
	r := NewRegistry()
	r.RegisterCommand(command("toggle"))
	r.RegisterPluginBinding("tab", "toggle", "panel")

	if got := resolve(t, r.Handle(key("tab"), "panel")); got != "toggle" {
		t.Fatalf("resolved %q, want toggle", got)
	}
	bindings := r.BindingsForContext("panel")
	if len(bindings) != 1 || bindings[0].Key != "tab" {
		t.Fatalf("bindings = %+v, want one tab binding", bindings)
	}
}
