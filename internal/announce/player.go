package announce

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/claude/repcoach/internal/models"
)

// CommandPlayer plays audio through an external program such as aplay or
// ffplay. Speech is written to the program's stdin; cues are played from
// <cueDir>/<cue>.wav passed as the last argument.
type CommandPlayer struct {
	command []string
	cueDir  string
	log     *slog.Logger
}

// NewCommandPlayer creates a player for the given command line.
func NewCommandPlayer(command []string, cueDir string, log *slog.Logger) (*CommandPlayer, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("player command is empty")
	}
	if _, err := exec.LookPath(command[0]); err != nil {
		return nil, fmt.Errorf("finding player %s: %w", command[0], err)
	}
	return &CommandPlayer{command: command, cueDir: cueDir, log: log}, nil
}

// Play pipes audio into the player and waits for it to exit.
func (p *CommandPlayer) Play(ctx context.Context, audio []byte) error {
	args := append(p.command[1:len(p.command):len(p.command)], "-")
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	cmd.Stdin = bytes.NewReader(audio)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("running %s: %w (%s)", p.command[0], err, bytes.TrimSpace(out))
	}
	return nil
}

// Cue plays the sound file for cue. A missing file is ignored.
func (p *CommandPlayer) Cue(ctx context.Context, cue models.Cue) error {
	if p.cueDir == "" {
		return nil
	}
	path := filepath.Join(p.cueDir, string(cue)+".wav")
	if _, err := os.Stat(path); err != nil {
		p.log.Debug("cue sound missing", "cue", cue, "path", path)
		return nil
	}
	args := append(p.command[1:len(p.command):len(p.command)], path)
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("running %s: %w (%s)", p.command[0], err, bytes.TrimSpace(out))
	}
	return nil
}

// LogSpeaker is a Synthesizer and Player that only logs. It is used when no
// TTS service is configured and in tests.
type LogSpeaker struct {
	log *slog.Logger
}

// NewLogSpeaker creates a speaker writing to log.
func NewLogSpeaker(log *slog.Logger) *LogSpeaker {
	return &LogSpeaker{log: log}
}

// Synthesize returns the text itself as the "audio".
func (s *LogSpeaker) Synthesize(_ context.Context, text string) ([]byte, error) {
	return []byte(text), nil
}

// Play logs the spoken text.
func (s *LogSpeaker) Play(_ context.Context, audio []byte) error {
	s.log.Info("say", "text", string(audio))
	return nil
}

// Cue logs the cue.
func (s *LogSpeaker) Cue(_ context.Context, cue models.Cue) error {
	s.log.Info("cue", "cue", cue)
	return nil
}
