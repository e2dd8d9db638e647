package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tellor-io/telliot-kadena/internal/keystore"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
	listStyle = lipgloss.NewStyle().Margin(1, 2)
)

type keysetItem struct {
	keyset *keystore.Keyset
}

func (i keysetItem) Title() string { return i.keyset.Name }

func (i keysetItem) Description() string {
	chains := make([]string, 0, len(i.keyset.Chains()))
	for _, chain := range i.keyset.Chains() {
		chains = append(chains, fmt.Sprintf("%d", chain))
	}
	return fmt.Sprintf("pred: %s, chains: %s, keys: %d",
		i.keyset.Pred(), strings.Join(chains, ","), len(i.keyset.Addresses()))
}

func (i keysetItem) FilterValue() string { return i.keyset.Name }

type pickerModel struct {
	list     list.Model
	selected *keystore.Keyset
	aborted  bool
}

func newPickerModel(keysets []*keystore.Keyset) pickerModel {
	items := make([]list.Item, len(keysets))
	for i, keyset := range keysets {
		items[i] = keysetItem{keyset: keyset}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select a keyset"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(keysetItem); ok {
				m.selected = item.keyset
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		h, v := listStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return listStyle.Render(m.list.View())
}

// PickKeyset prompts the user to choose one of several matching keysets.
func PickKeyset(keysets []*keystore.Keyset) (*keystore.Keyset, error) {
	if len(keysets) == 0 {
		return nil, fmt.Errorf("no keysets to choose from")
	}
	if len(keysets) == 1 {
		return keysets[0], nil
	}

	program := tea.NewProgram(newPickerModel(keysets), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("error running keyset picker: %w", err)
	}

	model := final.(pickerModel)
	if model.aborted || model.selected == nil {
		return nil, fmt.Errorf("keyset selection aborted")
	}
	return model.selected, nil
}
