// Package main is the entry point for onsetcli, an offline command-line
// tool that runs the onset-detection pipeline over audio files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/austinkregel/onsetcli/internal/audio"
	"github.com/austinkregel/onsetcli/internal/config"
	"github.com/austinkregel/onsetcli/internal/onset"
	"github.com/austinkregel/onsetcli/internal/scanner"
)

// Version is set at build time via ldflags.
var Version = "dev"

// CLI is onsetcli's full command surface, parsed by kong.
var CLI struct {
	ConfigDir string `help:"Configuration directory (default: ~/.config/onsetcli)"`
	Verbose   bool   `help:"Enable verbose logging" short:"v"`

	Analyze AnalyzeCmd `cmd:"" help:"Run onset detection on a single audio file and print the result as JSON."`
	Batch   BatchCmd   `cmd:"" help:"Run onset detection over every supported audio file under one or more directories."`
	Combine CombineCmd `cmd:"" help:"Concatenate audio files into a single output file."`
	Preview PreviewCmd `cmd:"" help:"Decode a file, detect onsets, and play a click-track preview of them."`
}

// AnalyzeCmd decodes one file and prints its AudioSource as JSON.
type AnalyzeCmd struct {
	Path string  `arg:"" help:"Path to the audio file to analyze." type:"existingfile"`
	FPS  float64 `help:"Analysis frame rate." default:"60"`
}

// analyzeOutput wraps the pipeline result together with any tag metadata the
// decoder could extract, so "onsetcli analyze" prints both in one JSON blob.
type analyzeOutput struct {
	Source   *onset.AudioSource  `json:"source"`
	Metadata *audio.FileMetadata `json:"metadata,omitempty"`
}

func (c *AnalyzeCmd) Run(app *appContext) error {
	decoded, err := app.decoder.Decode(context.Background(), c.Path)
	if err != nil {
		return err
	}

	src, err := onset.Process(decoded.PCM, decoded.SampleRate, decoded.Channels, c.FPS, &app.cfg.Onset)
	if err != nil {
		return err
	}
	src.URI = c.Path

	var meta *audio.FileMetadata
	if m, ok := app.rawDecoder.(audio.MetadataSource); ok {
		if tags, err := m.Metadata(c.Path); err == nil {
			meta = tags
		}
	}

	return printJSON(analyzeOutput{Source: src, Metadata: meta})
}

// BatchCmd runs onset detection over every supported file under one or more
// directories, collecting per-file errors instead of aborting.
type BatchCmd struct {
	Paths []string `arg:"" help:"Library directories (or files) to scan." optional:""`
	FPS   float64  `help:"Analysis frame rate." default:"60"`
}

func (c *BatchCmd) Run(app *appContext) error {
	roots := c.Paths
	if len(roots) == 0 {
		roots = app.cfg.LibraryPaths
	}
	if len(roots) == 0 {
		return fmt.Errorf("batch: no library paths given and none configured")
	}

	meta, _ := app.rawDecoder.(audio.MetadataSource)
	s := scanner.NewScanner(app.decoder, meta, &app.cfg.Onset, c.FPS)
	log.Printf("[BATCH] Scanning %d path(s)", len(roots))

	result, err := s.Walk(context.Background(), roots)
	if err != nil {
		return err
	}
	log.Printf("[BATCH] Scanned %d files in %dms", result.TotalFiles, result.ScanTimeMs)

	failed := 0
	for _, f := range result.Files {
		if f.Error != "" {
			log.Printf("[BATCH] %s: %s", f.Path, f.Error)
			failed++
		}
	}

	if err := printJSON(result); err != nil {
		return err
	}
	if result.TotalFiles > 0 && failed == result.TotalFiles {
		return fmt.Errorf("batch: all %d files failed", failed)
	}
	return nil
}

// CombineCmd concatenates audio files into a single output file.
type CombineCmd struct {
	Output string   `help:"Output file path." required:""`
	Inputs []string `arg:"" help:"Input audio files, in order." type:"existingfile"`
}

func (c *CombineCmd) Run(app *appContext) error {
	decoder, ok := app.rawDecoder.(*audio.FFmpegDecoder)
	if !ok {
		return fmt.Errorf("combine: requires the ffmpeg decoder")
	}
	outPath, err := decoder.Combine(context.Background(), c.Inputs, c.Output)
	if err != nil {
		return err
	}
	log.Printf("[COMBINE] Wrote %s", outPath)
	return nil
}

// PreviewCmd decodes a file, detects onsets, and plays a click-track
// preview of them through the default audio device.
type PreviewCmd struct {
	Path string  `arg:"" help:"Path to the audio file to preview." type:"existingfile"`
	FPS  float64 `help:"Analysis frame rate." default:"60"`
}

func (c *PreviewCmd) Run(app *appContext) error {
	decoded, err := app.decoder.Decode(context.Background(), c.Path)
	if err != nil {
		return err
	}
	src, err := onset.Process(decoded.PCM, decoded.SampleRate, decoded.Channels, c.FPS, &app.cfg.Onset)
	if err != nil {
		return err
	}
	log.Printf("[PREVIEW] %d onsets detected, average bpm %.1f", countOnsets(src), src.AverageBPM)
	return audio.PreviewOnsets(context.Background(), src)
}

func countOnsets(src *onset.AudioSource) int {
	n := 0
	for _, f := range src.Frames {
		n += len(f.Onsets)
	}
	return n
}

// appContext is threaded into every subcommand's Run via kong.Bind.
type appContext struct {
	cfg        *config.Config
	decoder    audio.Decoder
	rawDecoder audio.Decoder // the underlying ffmpeg decoder, type-asserted for Combine and MetadataSource
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("onsetcli"),
		kong.Description("Offline audio onset-detection and feature-extraction pipeline."),
		kong.UsageOnError(),
	)

	if CLI.Verbose {
		log.Printf("onsetcli version %s starting...", Version)
	}

	configDir := CLI.ConfigDir
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("failed to get home directory: %v", err)
		}
		configDir = homeDir + "/.config/onsetcli"
	}

	configMgr := config.NewManager(configDir)
	if err := configMgr.Load(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ffmpegDecoder, err := audio.NewFFmpegDecoder()
	if err != nil {
		log.Fatalf("failed to initialize ffmpeg decoder: %v", err)
	}
	wavReader := audio.NewWAVReader(ffmpegDecoder)

	app := &appContext{
		cfg:        configMgr.Get(),
		decoder:    wavReader,
		rawDecoder: ffmpegDecoder,
	}

	if err := ctx.Run(app); err != nil {
		log.Fatalf("onsetcli: %v", err)
	}
}
