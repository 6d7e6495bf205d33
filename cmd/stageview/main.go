package main

import (
	"flag"
	"image"
	"log"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/sonicstage/levels"
	"github.com/milk9111/sonicstage/render"
	"github.com/milk9111/sonicstage/tiled"
	"github.com/milk9111/sonicstage/watch"
)

func main() {
	levelName := flag.String("level", "", "embedded level name (.tmj optional)")
	sheetPath := flag.String("sheet", "", "tile sheet PNG, 32 tiles wide")
	flag.Parse()

	var load func() (*tiled.Map, error)
	var w *watch.Watcher
	switch {
	case flag.NArg() > 0:
		path := flag.Arg(0)
		load = func() (*tiled.Map, error) { return tiled.Load(path) }
		abs, err := filepath.Abs(path)
		if err != nil {
			log.Fatal(err)
		}
		w, err = watch.NewWatcher(func(p string) bool {
			pa, err := filepath.Abs(p)
			return err == nil && pa == abs
		}, filepath.Dir(abs))
		if err != nil {
			log.Printf("stageview: hot reload disabled: %v", err)
		} else {
			defer w.Close()
		}
	case *levelName != "":
		name := *levelName
		load = func() (*tiled.Map, error) { return levels.LoadLevelFromFS(name) }
	default:
		log.Fatal("usage: stageview [-sheet tiles.png] map.tmj | -level name")
	}

	var sheet image.Image
	if *sheetPath != "" {
		s, err := render.LoadSheet(*sheetPath)
		if err != nil {
			log.Fatal(err)
		}
		sheet = s
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth*2, baseHeight*2)
	ebiten.SetWindowTitle("stageview")

	if err := ebiten.RunGame(NewViewer(load, sheet, w)); err != nil {
		log.Fatal(err)
	}
}
