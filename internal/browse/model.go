// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package browse

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/staranto/rmctl/internal/cache"
	"github.com/staranto/rmctl/internal/character"
	"github.com/staranto/rmctl/internal/fetcher"
	"github.com/staranto/rmctl/internal/preview"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#97ce4c")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e4a788"))
	previewStyle = lipgloss.NewStyle().Padding(1, 2)
)

// Item adapts a character to the list.
type Item struct {
	character.Character
}

func (i Item) Title() string { return i.Name }

func (i Item) Description() string {
	parts := []string{i.Status, i.Species}
	if i.Type != "" {
		parts = append(parts, i.Type)
	}
	return strings.Join(parts, " / ")
}

func (i Item) FilterValue() string { return i.Name }

// ImageLoadedMsg carries the result of a portrait fetch. Image is nil when the
// fetch failed.
type ImageLoadedMsg struct {
	URL   string
	Image *cache.Image
}

// Model is the browser's bubbletea model. It must be used through a pointer
// so the program and the fetch callbacks see the same send func.
type Model struct {
	ctx     context.Context
	fetcher *fetcher.Fetcher
	send    func(tea.Msg)

	list    list.Model
	spinner spinner.Model

	fixedWidth   int
	previewWidth int

	current  string
	image    *cache.Image
	rendered string
	loading  map[string]bool
	failed   map[string]bool
}

// New returns a browser over characters. width fixes the preview width in
// columns; zero sizes it from the window.
func New(ctx context.Context, f *fetcher.Fetcher, characters []character.Character, width int) *Model {
	items := make([]list.Item, 0, len(characters))
	for _, c := range characters {
		items = append(items, Item{c})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Characters"
	l.Styles.Title = titleStyle

	m := &Model{
		ctx:          ctx,
		fetcher:      f,
		send:         func(tea.Msg) {},
		list:         l,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		fixedWidth:   width,
		previewWidth: preview.ClampWidth(width),
		loading:      map[string]bool{},
		failed:       map[string]bool{},
	}
	return m
}

// SetSend sets the func fetch callbacks use to post ImageLoadedMsg into the
// running program, normally (*tea.Program).Send.
func (m *Model) SetSend(send func(tea.Msg)) {
	if send != nil {
		m.send = send
	}
}

func (m *Model) Init() tea.Cmd {
	m.loadSelected()
	return m.spinner.Tick
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		listWidth := msg.Width / 2
		m.list.SetSize(listWidth, msg.Height)
		if m.fixedWidth == 0 {
			m.previewWidth = preview.ClampWidth(msg.Width - listWidth - 4)
			m.render()
		}
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}
		}

	case ImageLoadedMsg:
		delete(m.loading, msg.URL)
		if msg.Image == nil {
			m.failed[msg.URL] = true
		}
		if msg.URL == m.current {
			m.image = msg.Image
			m.render()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)

	m.loadSelected()

	return m, tea.Batch(cmds...)
}

// loadSelected starts a fetch when the selection moved to a portrait that is
// not already showing or in flight. Failed URLs are not retried.
func (m *Model) loadSelected() {
	item, ok := m.list.SelectedItem().(Item)
	if !ok || item.Image == m.current {
		return
	}

	m.current = item.Image
	m.image = nil
	m.rendered = ""

	if m.loading[item.Image] || m.failed[item.Image] {
		return
	}

	m.loading[item.Image] = true
	url := item.Image
	log.Debugf("loading portrait %s", url)
	m.fetcher.Fetch(m.ctx, url, func(img *cache.Image) {
		m.send(ImageLoadedMsg{URL: url, Image: img})
	})
}

func (m *Model) render() {
	if m.image == nil {
		m.rendered = ""
		return
	}
	m.rendered = preview.Render(m.image.Bitmap, m.previewWidth)
}

func (m *Model) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), previewStyle.Render(m.previewView()))
}

func (m *Model) previewView() string {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return mutedStyle.Render("no characters")
	}

	header := titleStyle.Render(item.Name) + "\n" +
		mutedStyle.Render(fmt.Sprintf("#%d  %s  %s", item.ID, item.Gender, item.Location.Name))

	var body string
	switch {
	case m.failed[m.current]:
		body = errorStyle.Render("portrait unavailable")
	case m.rendered != "":
		body = m.rendered
	default:
		body = m.spinner.View() + " loading portrait"
	}

	return header + "\n\n" + body
}
