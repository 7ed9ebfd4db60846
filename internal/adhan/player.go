package adhan

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/crescent-hq/minaret/internal/model"
)

// Handle identifies one loaded playback resource at the audio transport.
type Handle string

// AudioTransport is the playback collaborator. LoadAndPlay blocks until the
// resource is loaded and playing; done fires once if playback finishes
// naturally. Stop and Unload are safe on handles that already ended.
type AudioTransport interface {
	LoadAndPlay(source string, done func(Handle)) (Handle, error)
	Stop(h Handle)
	Unload(h Handle)
}

// SourceResolver turns an asset key into a playable source (path or URL).
type SourceResolver interface {
	ResolveSource(name string) (string, error)
}

// ErrAudioResource wraps preview load failures; the session is back at Idle
// whenever it is returned.
var ErrAudioResource = errors.New("audio resource error")

// Player is the single-slot preview session: at most one loaded resource
// process-wide. A new preview always fully stops and unloads the previous
// resource before loading the next one; the session lock is held across
// the load so the ordering is strict, not best-effort.
type Player struct {
	mu        sync.Mutex
	transport AudioTransport
	resolver  SourceResolver

	state  model.PreviewState
	loaded *model.AdhanOption
	handle Handle

	// OnError observes asynchronous preview failures; defaults to logging.
	OnError func(error)
}

func NewPlayer(transport AudioTransport, resolver SourceResolver) *Player {
	return &Player{
		transport: transport,
		resolver:  resolver,
		state:     model.PreviewIdle,
	}
}

// Preview starts (or toggles off) a preview of the given option. It returns
// immediately; loading and any prior stop+unload happen on a separate
// goroutine, serialized by the session lock.
func (p *Player) Preview(option model.AdhanOption) {
	go func() {
		if err := p.previewSync(option); err != nil {
			if p.OnError != nil {
				p.OnError(err)
			} else {
				log.Error().Err(err).Str("option", option.Value).Msg("adhan preview failed")
			}
		}
	}()
}

// PreviewSync is Preview without the goroutine; the HTTP layer and tests
// use it to observe the result directly.
func (p *Player) PreviewSync(option model.AdhanOption) error {
	return p.previewSync(option)
}

func (p *Player) previewSync(option model.AdhanOption) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Re-selecting the playing option is a toggle: stop, stay Idle.
	if p.state == model.PreviewPlaying && p.loaded != nil && p.loaded.Value == option.Value {
		p.stopLocked()
		return nil
	}

	// Anything else in flight is fully torn down before the new load.
	p.stopLocked()

	if !option.Playable() {
		return nil
	}

	source, err := p.resolver.ResolveSource(option.PreviewSource)
	if err != nil {
		return fmt.Errorf("%w: resolve %q: %v", ErrAudioResource, option.PreviewSource, err)
	}

	p.state = model.PreviewLoading
	handle, err := p.transport.LoadAndPlay(source, p.finished)
	if err != nil {
		p.state = model.PreviewIdle
		return fmt.Errorf("%w: load %q: %v", ErrAudioResource, option.PreviewSource, err)
	}

	opt := option
	p.state = model.PreviewPlaying
	p.loaded = &opt
	p.handle = handle
	return nil
}

// Stop forces the session back to Idle, unloading any held resource.
// Safe no-op when already Idle.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Session reports the current state and loaded option, if any.
func (p *Player) Session() (model.PreviewState, *model.AdhanOption) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded == nil {
		return p.state, nil
	}
	opt := *p.loaded
	return p.state, &opt
}

// finished is the transport's natural-completion callback: auto-unload and
// return to Idle. Stale callbacks (handle already replaced) are ignored.
func (p *Player) finished(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != model.PreviewPlaying || p.handle != h {
		return
	}
	p.transport.Unload(h)
	p.state = model.PreviewIdle
	p.loaded = nil
	p.handle = ""
}

func (p *Player) stopLocked() {
	if p.handle != "" {
		p.transport.Stop(p.handle)
		p.transport.Unload(p.handle)
	}
	p.state = model.PreviewIdle
	p.loaded = nil
	p.handle = ""
}
