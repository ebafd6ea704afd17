package suggest

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"gopkg.in/op/go-logging.v1"

	"github.com/please-build/elm-complete/src/core"
	"github.com/please-build/elm-complete/src/fs"
	"github.com/please-build/elm-complete/src/metrics"
	"github.com/please-build/elm-complete/src/oracle"
)

var log = logging.MustGetLogger("suggest")

// Settings are the options an editor can change while it's running.
type Settings struct {
	ExecutablePath string `json:"executablePath"`
	Enabled        bool   `json:"autocompleteEnabled"`
	MinChars       int    `json:"minCharsForAutocomplete"`
}

// A Provider runs the whole pipeline for a completion request: it finds the project the file
// belongs to, asks the oracle, and formats what it says.
type Provider struct {
	resolver   *core.Resolver
	invoker    *oracle.Invoker
	notifier   Notifier
	fileExists func(string) bool
	mutex      sync.RWMutex
	enabled    bool
	minChars   int
}

// NewProvider returns a new Provider. Warnings the user can act on are sent to the notifier,
// which should usually be a OnceNotifier.
func NewProvider(config *core.Configuration, resolver *core.Resolver, invoker *oracle.Invoker, notifier Notifier) *Provider {
	checkExecutable(invoker.Executable())
	return &Provider{
		resolver:   resolver,
		invoker:    invoker,
		notifier:   notifier,
		fileExists: fs.FileExists,
		enabled:    config.Autocomplete.Enabled,
		minChars:   config.Autocomplete.MinChars,
	}
}

// Settings returns the provider's current settings.
func (p *Provider) Settings() Settings {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return Settings{
		ExecutablePath: p.invoker.Executable(),
		Enabled:        p.enabled,
		MinChars:       p.minChars,
	}
}

// UpdateSettings applies new settings from the editor. An empty executable path leaves the
// current one alone.
func (p *Provider) UpdateSettings(s Settings) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.enabled = s.Enabled
	p.minChars = s.MinChars
	if s.ExecutablePath != "" {
		p.invoker.SetExecutable(fs.ExpandHomePath(s.ExecutablePath))
		checkExecutable(p.invoker.Executable())
	}
	log.Info("Settings updated: enabled=%v minchars=%d oracle=%s", p.enabled, p.minChars, p.invoker.Executable())
}

// checkExecutable warns if the oracle path can't be run. Relative paths are resolved against each
// project so they can only be checked when it's known.
func checkExecutable(path string) bool {
	if filepath.IsAbs(path) && !fs.IsExecutable(path) {
		log.Warning("elm-oracle at %s doesn't exist or isn't executable, check the executablePath setting", path)
		return false
	}
	return true
}

// ShouldProvide returns true if it's worth running the oracle for this request at all.
func (p *Provider) ShouldProvide(filename, prefix string) bool {
	p.mutex.RLock()
	enabled, minChars := p.enabled, p.minChars
	p.mutex.RUnlock()
	if !enabled || filename == "" || utf8.RuneCountInString(prefix) < minChars {
		return false
	} else if prefix != "" && !ValidPrefix(prefix) {
		log.Warning("Not completing %q, it isn't an Elm identifier", prefix)
		return false
	}
	return p.fileExists(filename)
}

// Run runs the pipeline for the given file and prefix.
// It returns no suggestions and no error if ShouldProvide says not to bother.
func (p *Provider) Run(ctx context.Context, filename, prefix string) ([]Suggestion, error) {
	if !p.ShouldProvide(filename, prefix) {
		return []Suggestion{}, nil
	}
	return p.run(ctx, uuid.NewString(), filename, prefix)
}

func (p *Provider) run(ctx context.Context, id, filename, prefix string) ([]Suggestion, error) {
	root, err := p.resolver.ResolveFile(filename)
	if err != nil {
		return nil, err
	}
	log.Debug("[%s] Project root for %s is %s", id, filename, root)
	raw, err := p.invoker.Run(ctx, root, filename, prefix)
	if err != nil {
		return nil, err
	}
	symbols, err := oracle.ParseResponse(raw)
	if err != nil {
		return nil, err
	}
	log.Debug("[%s] %d suggestions for %q", id, len(symbols), prefix)
	return Format(symbols), nil
}

// Suggest is like Run but never fails; any error results in no suggestions.
// Problems the user can fix produce a warning through the notifier, others are only logged.
func (p *Provider) Suggest(ctx context.Context, filename, prefix string) []Suggestion {
	if !p.ShouldProvide(filename, prefix) {
		metrics.RecordRequest(metrics.OutcomeSkipped)
		return []Suggestion{}
	}
	id := uuid.NewString()
	suggestions, err := p.run(ctx, id, filename, prefix)
	if err == nil {
		metrics.RecordRequest(metrics.OutcomeOK)
		return suggestions
	}
	var malformed *oracle.MalformedOutputError
	if ctx.Err() != nil {
		metrics.RecordRequest(metrics.OutcomeCancelled)
		log.Debug("[%s] Request for %q cancelled", id, prefix)
		return []Suggestion{}
	} else if errors.Is(err, core.ErrNoProjectFound) || errors.Is(err, oracle.ErrEmptyOutput) {
		log.Info("[%s] No suggestions for %s: %s", id, filename, err)
		p.notifier.Warn(UnavailableTitle, UnavailableDetail)
	} else if errors.As(err, &malformed) {
		log.Error("[%s] %s\nOutput was: %s", id, err, malformed.Output)
	} else {
		log.Info("[%s] %s", id, err)
	}
	metrics.RecordRequest(metrics.OutcomeError)
	return []Suggestion{}
}
