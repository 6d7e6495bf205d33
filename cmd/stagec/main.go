package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/milk9111/sonicstage/config"
	"github.com/milk9111/sonicstage/format"
	"github.com/milk9111/sonicstage/levels"
	"github.com/milk9111/sonicstage/watch"
)

func main() {
	configPath := flag.String("config", "", "config file (default "+config.DefaultFile+" if present)")
	outDir := flag.String("out", "", "output directory (default: next to each map)")
	formatName := flag.String("format", "", "export format name")
	levelName := flag.String("level", "", "export an embedded level by name (.tmj optional)")
	noLint := flag.Bool("nolint", false, "skip lint checks")
	lintScript := flag.String("lint", "", "tengo lint script (default: built-in rules)")
	preview := flag.Bool("preview", false, "also write a PNG preview")
	sheet := flag.String("sheet", "", "tile sheet PNG for previews")
	watchMode := flag.Bool("watch", false, "re-export maps when they change")
	list := flag.Bool("list", false, "list formats and embedded levels")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: stagec [flags] map.tmj...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *list {
		if err := printList(); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *formatName != "" {
		cfg.Format = *formatName
	}
	if *noLint {
		cfg.Lint.Enabled = false
	}
	if *lintScript != "" {
		cfg.Lint.Script = *lintScript
	}
	if *preview {
		cfg.Preview.Enabled = true
	}
	if *sheet != "" {
		cfg.Preview.Sheet = *sheet
	}

	exp, err := newExporter(cfg, format.Default)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *levelName != "" {
		m, err := levels.LoadLevelFromFS(*levelName)
		if err != nil {
			log.Fatal(err)
		}
		if err := exp.export(ctx, m, *levelName); err != nil {
			log.Fatal(err)
		}
	}

	inputs := flag.Args()
	if len(inputs) == 0 && *levelName == "" {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range inputs {
		if err := exp.exportFile(ctx, path); err != nil {
			log.Printf("stagec: %v", err)
			failed = true
		}
	}

	if *watchMode && len(inputs) > 0 {
		if err := watchInputs(ctx, exp, inputs); err != nil {
			log.Fatal(err)
		}
		return
	}
	if failed {
		os.Exit(1)
	}
}

func printList() error {
	for _, name := range format.Default.Names() {
		f, err := format.Default.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Printf("format %-10s .%-8s %s\n", f.Name, f.Extension, f.Description)
	}
	names, err := levels.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Printf("level  %s\n", name)
	}
	return nil
}

func watchInputs(ctx context.Context, exp *exporter, inputs []string) error {
	tracked := make(map[string]string)
	dirs := make(map[string]bool)
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		tracked[abs] = in
		dirs[filepath.Dir(abs)] = true
	}
	var dirList []string
	for d := range dirs {
		dirList = append(dirList, d)
	}

	w, err := watch.NewWatcher(watch.IsMapFile, dirList...)
	if err != nil {
		return err
	}
	defer w.Close()

	log.Printf("stagec: watching %d map(s)", len(tracked))
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				continue
			}
			in, ok := tracked[abs]
			if !ok {
				continue
			}
			if err := exp.exportFile(ctx, in); err != nil {
				log.Printf("stagec: %v", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("stagec: watch: %v", err)
		}
	}
}
