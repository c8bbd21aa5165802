// Package transcode shells out to ffmpeg to turn station audio (mp3/aac,
// direct or piped) into the raw 48kHz stereo s16le PCM the voice sink
// expects.
package transcode

import (
	"fmt"
	"io"
	"os/exec"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz
)

// FFmpegOpener implements radio.StreamOpener.
type FFmpegOpener struct{}

// OpenDirect decodes a continuously served stream URL to PCM. ffmpeg's own
// reconnect handling papers over brief network hiccups on the station side.
func (FFmpegOpener) OpenDirect(url string) (io.ReadCloser, func(), error) {
	cmd := exec.Command("ffmpeg",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("command start error: %w", err)
	}

	cleanup := func() {
		cmd.Process.Kill()
	}

	return reader, cleanup, nil
}

// OpenPipe decodes audio written to the returned writer (the chunk fetcher's
// segment stream) to PCM readable from the returned reader.
func (FFmpegOpener) OpenPipe() (io.WriteCloser, io.ReadCloser, func(), error) {
	cmd := exec.Command("ffmpeg",
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	writer, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stdin pipe error: %w", err)
	}

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, nil, fmt.Errorf("command start error: %w", err)
	}

	cleanup := func() {
		cmd.Process.Kill()
	}

	return writer, reader, cleanup, nil
}
