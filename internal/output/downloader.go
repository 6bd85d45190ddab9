// internal/output/downloader.go

package output

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/floostack/transcoder/ffmpeg"

	"github.com/valpere/MediaScrapexter/internal/scraper"
	"github.com/valpere/MediaScrapexter/internal/utils"
)

// Downloader materializes segment media on disk. Direct audio URLs are
// fetched over HTTP; video-only segments have their audio track extracted
// with ffmpeg.
type Downloader struct {
	client *http.Client

	ffmpegPath   string
	ffprobePath  string
	audioBitrate string
	audioToken   string
}

// DownloaderOptions configures a Downloader.
type DownloaderOptions struct {
	// Client is the HTTP client for direct audio fetches; nil uses a
	// client with a generous timeout suited to large files
	Client *http.Client

	// FFmpegPath and FFprobePath locate the transcoding binaries
	FFmpegPath  string
	FFprobePath string

	// AudioBitrate is the target bitrate for extracted audio
	AudioBitrate string

	// AudioToken marks a URL as directly downloadable audio
	AudioToken string
}

// NewDownloader builds a Downloader.
func NewDownloader(opts DownloaderOptions) *Downloader {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Minute}
	}
	d := &Downloader{
		client:       client,
		ffmpegPath:   opts.FFmpegPath,
		ffprobePath:  opts.FFprobePath,
		audioBitrate: opts.AudioBitrate,
		audioToken:   opts.AudioToken,
	}
	if d.ffmpegPath == "" {
		d.ffmpegPath = "ffmpeg"
	}
	if d.ffprobePath == "" {
		d.ffprobePath = "ffprobe"
	}
	if d.audioBitrate == "" {
		d.audioBitrate = "128k"
	}
	if d.audioToken == "" {
		d.audioToken = ".mp3"
	}
	return d
}

// Download writes rec's media to destination. An existing destination file
// is treated as already downloaded and left untouched.
func (d *Downloader) Download(ctx context.Context, rec *scraper.SegmentRecord, destination string) error {
	if destination == "" {
		return fmt.Errorf("no destination planned for %s", rec.SourceURL)
	}
	if _, err := os.Stat(destination); err == nil {
		utils.Debugf("destination %s already exists, skipping", destination)
		return nil
	}

	switch {
	case rec.AudioURL != "" && strings.Contains(rec.AudioURL, d.audioToken):
		return d.fetchAudio(ctx, rec.AudioURL, destination)
	case rec.VideoURL != "":
		return d.extractAudio(ctx, rec.VideoURL, destination)
	default:
		return fmt.Errorf("segment %s has no downloadable media", rec.SourceURL)
	}
}

// fetchAudio streams a direct audio URL to destination. Partial files are
// removed so a failed fetch can be retried cleanly.
func (d *Downloader) fetchAudio(ctx context.Context, audioURL, destination string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build audio request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio %s: %w", audioURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("audio %s returned status %d", audioURL, resp.StatusCode)
	}

	f, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destination, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(destination)
		return fmt.Errorf("failed to write %s: %w", destination, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(destination)
		return fmt.Errorf("failed to close %s: %w", destination, err)
	}
	utils.Infof("downloaded %s", destination)
	return nil
}

// extractAudio pulls the audio track out of a video or stream URL.
func (d *Downloader) extractAudio(_ context.Context, videoURL, destination string) error {
	skipVideo := true
	overwrite := true
	format := "mp3"
	opts := &ffmpeg.Options{
		SkipVideo:    &skipVideo,
		Overwrite:    &overwrite,
		AudioBitrate: &d.audioBitrate,
		OutputFormat: &format,
	}

	progress, err := ffmpeg.New(&ffmpeg.Config{
		FfmpegBinPath:  d.ffmpegPath,
		FfprobeBinPath: d.ffprobePath,
	}).
		Input(videoURL).
		Output(destination).
		WithOptions(opts).
		Start(opts)
	if err != nil {
		os.Remove(destination)
		return fmt.Errorf("failed to extract audio from %s: %w", videoURL, err)
	}

	for range progress {
		// Drain so the transcoder can finish.
	}
	utils.Infof("extracted audio to %s", destination)
	return nil
}
