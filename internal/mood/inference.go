// Package mood derives mood labels from a weather snapshot by asking a
// language model, degrading to a default mood when the reply is unusable.
package mood

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/i474232898/weatherbeats/internal/common"
	"github.com/i474232898/weatherbeats/internal/weather"
)

// ErrNoMood is returned by ParseReply when the reply has no usable mood field.
var ErrNoMood = errors.New("reply has no mood field")

// Completer sends a system and user message to a language model and
// returns the text of its reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Result is the outcome of an inference. Fallback is set when Moods holds
// only the default mood because the model reply could not be used.
type Result struct {
	Moods    []string
	Fallback bool
}

// Inferencer turns weather snapshots into mood lists.
type Inferencer struct {
	completer   Completer
	vocabulary  []string
	defaultMood string
	logger      *log.Logger
}

// NewInferencer builds an Inferencer. Empty vocabulary or default mood fall
// back to DefaultVocabulary and DefaultMood.
func NewInferencer(c Completer, vocabulary []string, defaultMood string, logger *log.Logger) *Inferencer {
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}
	if defaultMood == "" {
		defaultMood = DefaultMood
	}
	if logger == nil {
		logger = common.Discard()
	}
	return &Inferencer{
		completer:   c,
		vocabulary:  vocabulary,
		defaultMood: defaultMood,
		logger:      logger.WithPrefix("mood"),
	}
}

// DefaultMood returns the mood substituted on fallback.
func (i *Inferencer) DefaultMood() string {
	return i.defaultMood
}

// Infer asks the model for 2-3 moods matching snap. It never fails: any
// completion or parse error yields the default mood.
func (i *Inferencer) Infer(ctx context.Context, snap weather.Snapshot) Result {
	prompt := BuildPrompt(snap, i.vocabulary)

	reply, err := i.completer.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		i.logger.Warn("completion failed; using default mood", "err", err, "default", i.defaultMood)
		return i.fallback()
	}

	moods, err := ParseReply(reply)
	if err != nil {
		i.logger.Warn("unusable model reply; using default mood", "err", err, "reply", reply, "default", i.defaultMood)
		return i.fallback()
	}

	i.logger.Debug("moods inferred", "condition", snap.Condition, "moods", moods)
	return Result{Moods: moods}
}

func (i *Inferencer) fallback() Result {
	return Result{Moods: []string{i.defaultMood}, Fallback: true}
}

// ParseReply extracts the mood list from a model reply. The reply must be a
// JSON object, optionally wrapped in a Markdown code fence. The mood field
// may be a list of strings or a single comma-joined string.
func ParseReply(reply string) ([]string, error) {
	body := stripFence(reply)

	var payload struct {
		Mood json.RawMessage `json:"mood"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if len(payload.Mood) == 0 || string(payload.Mood) == "null" {
		return nil, ErrNoMood
	}

	var moods []string
	var list []string
	var single string
	switch {
	case json.Unmarshal(payload.Mood, &list) == nil:
		for _, m := range list {
			moods = append(moods, common.SplitList(m, ",")...)
		}
	case json.Unmarshal(payload.Mood, &single) == nil:
		moods = common.SplitList(single, ",")
	default:
		return nil, fmt.Errorf("%w: unsupported mood value %s", ErrNoMood, payload.Mood)
	}

	moods = common.Dedupe(moods)
	if len(moods) == 0 {
		return nil, ErrNoMood
	}
	return moods, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the info string, e.g. "json"
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
