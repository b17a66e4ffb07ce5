package windows

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// BrowserTheme is a blue theme with compact table rows. Colors not in the
// palettes fall back to the default theme.
type BrowserTheme struct {
	// Compact shrinks padding so more table rows fit.
	Compact bool
}

var _ fyne.Theme = (*BrowserTheme)(nil)

type palette map[fyne.ThemeColorName]color.NRGBA

var lightPalette = palette{
	theme.ColorNameBackground:          {R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff},
	theme.ColorNameButton:              {R: 0x21, G: 0x96, B: 0xf3, A: 0xff},
	theme.ColorNamePrimary:             {R: 0x21, G: 0x96, B: 0xf3, A: 0xff},
	theme.ColorNameHover:               {R: 0x64, G: 0xb5, B: 0xf6, A: 0xff},
	theme.ColorNameFocus:               {R: 0x19, G: 0x76, B: 0xd2, A: 0xff},
	theme.ColorNameForeground:          {R: 0x21, G: 0x21, B: 0x21, A: 0xff},
	theme.ColorNameInputBackground:     {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	theme.ColorNameSelection:           {R: 0xbb, G: 0xde, B: 0xfb, A: 0xff},
	theme.ColorNameHeaderBackground:    {R: 0xe3, G: 0xf2, B: 0xfd, A: 0xff},
	theme.ColorNameForegroundOnPrimary: {R: 0x33, G: 0x33, B: 0x33, A: 0xff},
}

var darkPalette = palette{
	theme.ColorNameBackground:          {R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff},
	theme.ColorNameButton:              {R: 0x42, G: 0xa5, B: 0xf5, A: 0xff},
	theme.ColorNamePrimary:             {R: 0x42, G: 0xa5, B: 0xf5, A: 0xff},
	theme.ColorNameHover:               {R: 0x64, G: 0xb5, B: 0xf6, A: 0xff},
	theme.ColorNameFocus:               {R: 0x90, G: 0xca, B: 0xf9, A: 0xff},
	theme.ColorNameForeground:          {R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff},
	theme.ColorNameInputBackground:     {R: 0x2d, G: 0x2d, B: 0x2d, A: 0xff},
	theme.ColorNameSelection:           {R: 0x1e, G: 0x88, B: 0xe5, A: 0xff},
	theme.ColorNameHeaderBackground:    {R: 0x26, G: 0x32, B: 0x38, A: 0xff},
	theme.ColorNameForegroundOnPrimary: {R: 0x33, G: 0x33, B: 0x33, A: 0xff},
}

func (m BrowserTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	p := darkPalette
	if variant == theme.VariantLight {
		p = lightPalette
	}
	if c, ok := p[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (m BrowserTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (m BrowserTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (m BrowserTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		if m.Compact {
			return 4
		}
		return 8
	case theme.SizeNameInnerPadding:
		if m.Compact {
			return 4
		}
	case theme.SizeNameInlineIcon:
		return 24
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameSeparatorThickness:
		return 1
	}
	return theme.DefaultTheme().Size(name)
}
