package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#FF0000", "#FFA500", "#626262", "#E0245E")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	heart lipgloss.Style
	tab   lipgloss.Style
	muted lipgloss.Style
}

func NewPalette(t, e, w, h, fav string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		heart: NewBold(fav),
		tab:   NewBold(t).Underline(true),
		muted: NewStyle(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
