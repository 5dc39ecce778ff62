package render

import (
	"slices"
	"strings"

	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/shape"
)

// Theme is a colour scheme. Levels colour the heatmap and the cells of
// landed pieces by intensity bucket; Pieces outline each kind.
type Theme struct {
	Name       string
	Background string
	Text       string
	Levels     [5]string
	Pieces     [shape.Unit + 1]string
}

var themes = map[string]Theme{
	"dark": {
		Name:       "dark",
		Background: "#0d1117",
		Text:       "#8b949e",
		Levels:     [5]string{"#161b22", "#0e4429", "#006d32", "#26a641", "#39d353"},
		Pieces: [shape.Unit + 1]string{
			shape.I:    "#58c4dc",
			shape.O:    "#f2cc60",
			shape.T:    "#bc8cff",
			shape.S:    "#56d364",
			shape.Z:    "#ff7b72",
			shape.J:    "#79c0ff",
			shape.L:    "#ffa657",
			shape.Unit: "#c9d1d9",
		},
	},
	"light": {
		Name:       "light",
		Background: "#ffffff",
		Text:       "#57606a",
		Levels:     [5]string{"#ebedf0", "#9be9a8", "#40c463", "#30a14e", "#216e39"},
		Pieces: [shape.Unit + 1]string{
			shape.I:    "#0598bc",
			shape.O:    "#bf8700",
			shape.T:    "#8250df",
			shape.S:    "#1a7f37",
			shape.Z:    "#cf222e",
			shape.J:    "#0969da",
			shape.L:    "#bc4c00",
			shape.Unit: "#6e7781",
		},
	},
}

// DefaultTheme is the theme used when none is configured.
const DefaultTheme = "dark"

// Themes returns the names of the built-in themes, sorted.
func Themes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ThemeByName looks up a built-in theme. The empty name selects DefaultTheme.
func ThemeByName(name string) (Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultTheme
	}
	t, ok := themes[name]
	if !ok {
		return Theme{}, bferrors.New(bferrors.ErrCodeInvalidTheme,
			"unknown theme %q (available: %s)", name, strings.Join(Themes(), ", "))
	}
	return t, nil
}

func (t Theme) level(l int) string {
	return t.Levels[max(0, min(l, len(t.Levels)-1))]
}

func (t Theme) piece(k shape.Kind) string {
	if !k.Valid() {
		return t.Pieces[shape.Unit]
	}
	return t.Pieces[k]
}
