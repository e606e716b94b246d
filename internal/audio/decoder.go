package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileMetadata contains metadata extracted from an audio file.
type FileMetadata struct {
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// MetadataSource is implemented by decoders that can extract tag metadata
// without running the full onset pipeline. FFmpegDecoder satisfies it; the
// native WAVReader fast path does not, since WAV carries no tag container
// worth parsing here.
type MetadataSource interface {
	Metadata(path string) (*FileMetadata, error)
}

// Decoded is a fully decoded PCM buffer: one []float64 per channel, each
// sample normalized to [-1, 1], ready for onset.Process.
type Decoded struct {
	PCM        [][]float64
	SampleRate int
	Channels   int
}

// FFmpegDecoder decodes arbitrary audio containers to planar float64 PCM by
// shelling out to ffmpeg/ffprobe. Grounded on the teacher's own
// internal/audio/decoder.go, which does the same probe-then-pipe dance for
// its streaming player; here the pipe is drained into memory instead of an
// Output sink, since onset.Process needs the whole buffer up front.
type FFmpegDecoder struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegDecoder locates ffmpeg and ffprobe in PATH.
func NewFFmpegDecoder() (*FFmpegDecoder, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	return &FFmpegDecoder{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}, nil
}

// Decode reads path, probes its native sample rate and channel count, and
// returns the full PCM buffer de-interleaved into one slice per channel.
func (d *FFmpegDecoder) Decode(ctx context.Context, path string) (*Decoded, error) {
	sampleRate, channels, err := d.probeFormat(ctx, path)
	if err != nil {
		return nil, &DecodeFailedError{Path: path, Err: err}
	}

	args := []string{
		"-v", "error",
		"-i", path,
		"-f", "f64le",
		"-acodec", "pcm_f64le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-",
	}

	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &DecodeFailedError{Path: path, Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))}
	}

	raw := stdout.Bytes()
	const bytesPerSample = 8
	frameBytes := bytesPerSample * channels
	numFrames := len(raw) / frameBytes

	pcm := make([][]float64, channels)
	for ch := range pcm {
		pcm[ch] = make([]float64, numFrames)
	}

	for f := 0; f < numFrames; f++ {
		base := f * frameBytes
		for ch := 0; ch < channels; ch++ {
			bits := binary.LittleEndian.Uint64(raw[base+ch*bytesPerSample : base+(ch+1)*bytesPerSample])
			pcm[ch][f] = math.Float64frombits(bits)
		}
	}

	return &Decoded{PCM: pcm, SampleRate: sampleRate, Channels: channels}, nil
}

func (d *FFmpegDecoder) probeFormat(ctx context.Context, path string) (sampleRate, channels int, err error) {
	args := []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=sample_rate,channels",
		"-of", "json",
		path,
	}
	cmd := exec.CommandContext(ctx, d.ffprobePath, args...)
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe struct {
		Streams []struct {
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return 0, 0, fmt.Errorf("no audio stream found in %s", path)
	}

	sr, err := strconv.Atoi(probe.Streams[0].SampleRate)
	if err != nil || sr <= 0 {
		return 0, 0, fmt.Errorf("invalid sample rate %q", probe.Streams[0].SampleRate)
	}
	ch := probe.Streams[0].Channels
	if ch <= 0 {
		return 0, 0, fmt.Errorf("invalid channel count %d", ch)
	}
	return sr, ch, nil
}

// Metadata extracts title/artist/album tags from an audio file via ffprobe.
// Duration is filled from the container duration that the same ffprobe call
// reports, when present; it is independent of the AudioSource.Duration that
// onset.Process computes from the decoded PCM.
func (d *FFmpegDecoder) Metadata(path string) (*FileMetadata, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	}
	cmd := exec.Command(d.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probeResult struct {
		Format struct {
			Duration string            `json:"duration"`
			Tags     map[string]string `json:"tags"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &probeResult); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	meta := &FileMetadata{}
	for key, value := range probeResult.Format.Tags {
		switch strings.ToLower(key) {
		case "title":
			meta.Title = value
		case "artist":
			meta.Artist = value
		case "album":
			meta.Album = value
		case "album_artist":
			if meta.Artist == "" {
				meta.Artist = value
			}
		}
	}
	if probeResult.Format.Duration != "" {
		if durationSec, err := strconv.ParseFloat(probeResult.Format.Duration, 64); err == nil {
			meta.Duration = time.Duration(durationSec * float64(time.Second))
		}
	}
	if meta.Title == "" {
		base := filepath.Base(path)
		ext := filepath.Ext(base)
		meta.Title = strings.TrimSuffix(base, ext)
	}
	return meta, nil
}

// Combine muxes paths into a single output file by demuxing the given
// input files back-to-back (spec.md §6 combine). It shells out to
// ffmpeg's concat demuxer rather than re-decoding and re-encoding samples, so
// the operation is lossless and fast for same-codec inputs.
func (d *FFmpegDecoder) Combine(ctx context.Context, paths []string, outPath string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("combine: no input paths given")
	}

	listFile, err := os.CreateTemp("", "onsetcli-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("combine: failed to create concat list: %w", err)
	}
	defer os.Remove(listFile.Name())

	var buf bytes.Buffer
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("combine: %w", err)
		}
		fmt.Fprintf(&buf, "file '%s'\n", strings.ReplaceAll(abs, "'", "'\\''"))
	}
	if _, err := listFile.Write(buf.Bytes()); err != nil {
		return "", fmt.Errorf("combine: failed to write concat list: %w", err)
	}
	if err := listFile.Close(); err != nil {
		return "", fmt.Errorf("combine: %w", err)
	}

	args := []string{
		"-v", "error",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile.Name(),
		"-c", "copy",
		outPath,
	}
	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("combine: ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return outPath, nil
}

// Close releases decoder resources. The ffmpeg/ffprobe invocations are
// one-shot subprocesses, so there is nothing to release here; the method
// exists so FFmpegDecoder can satisfy an io.Closer-style lifecycle alongside
// the other collaborators.
func (d *FFmpegDecoder) Close() error {
	return nil
}
