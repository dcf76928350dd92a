package plugin

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type fakePlugin struct {
	id        string
	initErr   error
	initPanic bool
	started   bool
	stopOrder *[]string
}

func (p *fakePlugin) ID() string   { return p.id }
func (p *fakePlugin) Name() string { return p.id }

func (p *fakePlugin) Init(ctx *Context) error {
	if p.initPanic {
		panic("boom")
	}
	return p.initErr
}

func (p *fakePlugin) Start() tea.Cmd {
	p.started = true
	return func() tea.Msg { return nil }
}

func (p *fakePlugin) Stop() {
	if p.stopOrder != nil {
		*p.stopOrder = append(*p.stopOrder, p.id)
	}
}

func (p *fakePlugin) Update(msg tea.Msg) (Plugin, tea.Cmd) { return p, nil }
func (p *fakePlugin) View(width, height int) string        { return "" }
func (p *fakePlugin) IsFocused() bool                      { return false }
func (p *fakePlugin) SetFocused(bool)                      {}

func TestRegister_DropsFailedInit(t *testing.T) {
	r := NewRegistry(&Context{})
	r.Register(&fakePlugin{id: "bad", initErr: errors.New("nope")})
	r.Register(&fakePlugin{id: "good"})

	plugins := r.Plugins()
	if len(plugins) != 1 || plugins[0].ID() != "good" {
		t.Fatalf("active plugins = %v, want only good", plugins)
	}
}

func TestRegister_RecoversInitPanic(t *testing.T) {
	r := NewRegistry(&Context{})
	r.Register(&fakePlugin{id: "panics", initPanic: true})

	if got := len(r.Plugins()); got != 0 {
		t.Fatalf("active plugins = %d, want 0", got)
	}
}

func TestStart_CollectsCommands(t *testing.T) {
	r := NewRegistry(&Context{})
	a := &fakePlugin{id: "a"}
	b := &fakePlugin{id: "b"}
	r.Register(a)
	r.Register(b)

	cmds := r.Start()
	if len(cmds) != 2 {
		t.Fatalf("Start returned %d cmds, want 2", len(cmds))
	}
	if !a.started || !b.started {
		t.Fatal("not every plugin was started")
	}
}

func TestStop_ReverseOrder(t *testing.T) {
	r := NewRegistry(&Context{})
	var order []string
	r.Register(&fakePlugin{id: "first", stopOrder: &order})
	r.Register(&fakePlugin{id: "second", stopOrder: &order})

	r.Stop()
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("stop order = %v, want [second first]", order)
	}
}
