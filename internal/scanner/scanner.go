// Package scanner walks library paths, decodes every recognized audio file,
// and runs the onset pipeline over each one (spec.md's supplemented batch
// scanning). Grounded on the teacher's internal/scanner/scanner.go, which
// walks the same kind of directory tree and fans file-level work out over a
// small worker pool; here each worker calls onset.Process instead of
// ffprobe-for-tags.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/austinkregel/onsetcli/internal/audio"
	"github.com/austinkregel/onsetcli/internal/onset"
)

// SupportedExtensions are the audio file extensions onsetcli recognizes.
var SupportedExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".wav":  true,
	".wma":  true,
	".alac": true,
	".opus": true,
}

// FileResult is the outcome of analyzing a single file: either a populated
// Source, or an error, never both.
type FileResult struct {
	Path       string              `json:"path"`
	Source     *onset.AudioSource  `json:"source,omitempty"`
	Metadata   *audio.FileMetadata `json:"metadata,omitempty"`
	Error      string              `json:"error,omitempty"`
	ScanTimeMs int64               `json:"scanTimeMs"`
}

// BatchResult is the result of analyzing every supported file under one or
// more library roots. A per-file error never aborts the batch (spec.md §7).
type BatchResult struct {
	Files      []FileResult `json:"files"`
	TotalFiles int          `json:"totalFiles"`
	ScanTimeMs int64        `json:"scanTimeMs"`
}

// Scanner walks library paths and runs the onset pipeline over every
// supported file it finds.
type Scanner struct {
	decoder audio.Decoder
	meta    audio.MetadataSource
	cfg     *onset.Config
	fps     float64

	mu        sync.Mutex
	isRunning bool
}

// NewScanner creates a scanner that decodes with decoder and analyzes with
// cfg at the given frame rate. meta is optional (nil is fine) and, when
// given, is used to attach tag metadata to each FileResult alongside the
// onset analysis.
func NewScanner(decoder audio.Decoder, meta audio.MetadataSource, cfg *onset.Config, fps float64) *Scanner {
	return &Scanner{decoder: decoder, meta: meta, cfg: cfg, fps: fps}
}

// IsRunning reports whether a scan is currently in progress.
func (s *Scanner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Walk scans every root directory for supported audio files and runs
// onset.Process over each one using a small worker pool, matching the
// teacher's 4-worker fan-out for per-file ffprobe calls.
func (s *Scanner) Walk(ctx context.Context, roots []string) (*BatchResult, error) {
	s.mu.Lock()
	s.isRunning = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	start := time.Now()

	var paths []string
	for _, root := range roots {
		found, err := discoverFiles(root)
		if err != nil {
			continue
		}
		paths = append(paths, found...)
	}

	const numWorkers = 4
	jobs := make(chan int, len(paths))
	results := make([]FileResult, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					results[i] = FileResult{Path: paths[i], Error: ctx.Err().Error()}
					continue
				default:
				}
				results[i] = s.analyzeFile(ctx, paths[i])
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return &BatchResult{
		Files:      results,
		TotalFiles: len(results),
		ScanTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (s *Scanner) analyzeFile(ctx context.Context, path string) FileResult {
	start := time.Now()

	decoded, err := s.decoder.Decode(ctx, path)
	if err != nil {
		return FileResult{Path: path, Error: err.Error(), ScanTimeMs: time.Since(start).Milliseconds()}
	}

	src, err := onset.Process(decoded.PCM, decoded.SampleRate, decoded.Channels, s.fps, s.cfg)
	if err != nil {
		return FileResult{Path: path, Error: err.Error(), ScanTimeMs: time.Since(start).Milliseconds()}
	}
	src.URI = path

	var meta *audio.FileMetadata
	if s.meta != nil {
		if m, err := s.meta.Metadata(path); err == nil {
			meta = m
		}
	}

	return FileResult{Path: path, Source: src, Metadata: meta, ScanTimeMs: time.Since(start).Milliseconds()}
}

// discoverFiles walks a single root directory collecting supported audio
// file paths, skipping hidden directories.
func discoverFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if SupportedExtensions[strings.ToLower(filepath.Ext(root))] {
			return []string{root}, nil
		}
		return nil, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if SupportedExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}
