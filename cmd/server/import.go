// CLAUDE:SUMMARY CLI subcommands that validate content sources, write the gob snapshot, and print load reports.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hazyhaar/termlink/pkg/content"
	"github.com/hazyhaar/termlink/pkg/termindex"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dir := fs.String("content-dir", "content", "content directory holding manifest.yaml")
	output := fs.String("output", "", "snapshot path (default <content-dir>/"+content.SnapshotFile+")")
	fs.Parse(args)

	manifest, err := content.LoadManifest(filepath.Join(*dir, "manifest.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Always read sources: an existing snapshot must not feed the new one.
	c, err := content.LoadSources(*dir, manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	printWarnings(c.Warnings)

	path := *output
	if path == "" {
		path = filepath.Join(*dir, content.SnapshotFile)
	}
	if err := content.SaveSnapshot(c, path); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[%s] %d terms, %d question decks, %d flashcard decks, %d lessons -> %s\n",
		manifest.ID, len(c.Terms), len(c.QuestionDecks), len(c.FlashcardDecks), len(c.Lessons), path)
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	dir := fs.String("content-dir", "content", "content directory holding manifest.yaml")
	fs.Parse(args)

	c, report, err := content.Load(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	e, err := termindex.Build(c, report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	st := e.Stats()

	fmt.Printf("content %s (version %s, from %s)\n", c.Manifest.ID, c.Manifest.Version, report.Origin)
	fmt.Printf("  terms            %d\n", st.Terms)
	fmt.Printf("  categories       %d\n", st.Categories)
	fmt.Printf("  question decks   %d\n", st.QuestionDecks)
	fmt.Printf("  flashcard decks  %d\n", st.FlashcardDecks)
	fmt.Printf("  lessons          %d\n", st.Lessons)
	fmt.Printf("  index keys       %d (%d collisions)\n", st.IndexKeys, st.Collisions)
	fmt.Printf("  linked terms     %d\n", st.LinkedTerms)
	printWarnings(e.Report().Warnings)
	if len(e.Report().Warnings) > 0 {
		os.Exit(2)
	}
}

func printWarnings(ws []content.Warning) {
	if len(ws) == 0 {
		return
	}
	fmt.Printf("%d warnings:\n", len(ws))
	for _, w := range ws {
		fmt.Printf("  %s\n", w)
	}
}
