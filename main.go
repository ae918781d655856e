// Command bubbles shows bubbles bouncing around a resizable window.
//
// Usage
//
//	bubbles [config_file | -open]
//
// With no argument the defaults are used. A path loads a TOML config file.
// -open asks for the config file with a file dialog. Esc or Q quits.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/bubbles/internal/config"
	"github.com/iburimskiy/bubbles/internal/game"
)

const usage = `Usage: bubbles [config_file | -open]

The optional argument is the path to a TOML config file,
or -open to choose one with a file dialog.
`

func main() {
	logger := log.New(os.Stderr, "bubbles: ", log.LstdFlags)

	conf, err := loadConfig(os.Args[1:])
	if err != nil {
		fatal(err)
	}

	g, err := game.NewGame(conf, logger)
	if err != nil {
		fatal(err)
	}
	defer g.Close()

	if conf.Sound {
		if err := g.EnableSound(); err != nil {
			logger.Printf("sound disabled: %v", err)
		}
	}

	ebiten.SetWindowSize(conf.WindowWidth, conf.WindowHeight)
	ebiten.SetWindowTitle(conf.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		g.Close()
		fatal(err)
	}
	logger.Print("bye")
}

func loadConfig(args []string) (*config.Config, error) {
	switch {
	case len(args) == 0:
		return config.Default(), nil
	case len(args) > 1:
		return nil, fmt.Errorf("%d arguments provided (0 required, 1 optional)\n\n%s", len(args), usage)
	case args[0] == "-open":
		path, err := zenity.SelectFile(
			zenity.Title("Open Bubbles Config"),
			zenity.FileFilters{{
				Name:     "TOML",
				Patterns: []string{"*.toml"},
			}},
		)
		if errors.Is(err, zenity.ErrCanceled) {
			return config.Default(), nil
		}
		if err != nil {
			return nil, err
		}
		return config.Parse(path)
	default:
		return config.Parse(args[0])
	}
}

// fatal reports err on stderr and in a dialog, then exits with a non-zero status.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	_ = zenity.Error(err.Error(), zenity.Title("Bubbles"), zenity.ErrorIcon)
	os.Exit(1)
}
