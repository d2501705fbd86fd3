package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/router"
	"github.com/abhisek/edugenie/internal/screen"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/screens/home"
	"github.com/abhisek/edugenie/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	svc    *screens.Services
	router *router.Router
	xp     int
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(svc *screens.Services) AppModel {
	if svc.Logger == nil {
		svc.Logger = zap.NewNop()
	}
	return AppModel{
		svc:    svc,
		router: router.New(home.New(svc)),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screens.XPUpdatedMsg:
		m.xp = msg.XP
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.Header{
		Title:   title,
		User:    m.svc.User,
		XP:      m.xp,
		Offline: m.svc.Gateway != nil && m.svc.Gateway.Offline(),
	}.Render(m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	}
	if footerHints == nil {
		if m.router.Depth() > 1 {
			footerHints = []layout.KeyHint{{Key: "Esc", Description: "Back"}}
		} else {
			footerHints = []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Enter", Description: "Select"},
			}
		}
	}
	footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})

	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program.
func Run(svc *screens.Services) error {
	p := tea.NewProgram(newAppModel(svc))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
