// Package alert dispatches textual warnings to the operator.
package alert

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"campusguard/internal/logger"
)

// Messages raised by the policy components.
const (
	IntruderMessage        = "Intruder Detected"
	unauthorizedMessageFmt = "You are unauthorized to enter this section, %s"
	locatedMessageFmt      = "%s located at %s"
)

// Unauthorized returns the warning spoken when name is denied entry.
func Unauthorized(name string) string {
	return fmt.Sprintf(unauthorizedMessageFmt, name)
}

// Located returns the message raised when a tracked person is found.
func Located(name, where string) string {
	return fmt.Sprintf(locatedMessageFmt, name, where)
}

// Alerter renders one warning.
type Alerter interface {
	Alert(ctx context.Context, message string) error
}

// LogAlerter writes alerts to the warning log.
type LogAlerter struct {
	logger *logger.Logger
}

func NewLogAlerter(logger *logger.Logger) *LogAlerter {
	return &LogAlerter{logger: logger}
}

func (a *LogAlerter) Alert(_ context.Context, message string) error {
	a.logger.Warning("🔔 %s", message)
	return nil
}

// SpeechRate is the words-per-minute passed to the speech command.
const SpeechRate = 150

// SpeechAlerter speaks alerts through an external text-to-speech command
// invoked as `<command> -s 150 <message>`.
type SpeechAlerter struct {
	command string
	run     func(ctx context.Context, name string, args ...string) error
}

func NewSpeechAlerter(command string) *SpeechAlerter {
	return &SpeechAlerter{command: command, run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (a *SpeechAlerter) Alert(ctx context.Context, message string) error {
	if err := a.run(ctx, a.command, "-s", strconv.Itoa(SpeechRate), message); err != nil {
		return fmt.Errorf("speech command %s failed: %w", a.command, err)
	}
	return nil
}

// Broadcaster pushes JSON messages to connected viewers.
type Broadcaster interface {
	BroadcastJSON(v any) error
}

// Message is the payload sent to viewers for every alert.
type Message struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// HubAlerter forwards alerts to live viewers.
type HubAlerter struct {
	hub Broadcaster
}

func NewHubAlerter(hub Broadcaster) *HubAlerter {
	return &HubAlerter{hub: hub}
}

func (a *HubAlerter) Alert(_ context.Context, message string) error {
	return a.hub.BroadcastJSON(Message{Type: "alert", Message: message})
}

// Multi delivers every alert to all of its alerters, even when some fail.
type Multi []Alerter

func (m Multi) Alert(ctx context.Context, message string) error {
	var errs []error
	for _, a := range m {
		if err := a.Alert(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
