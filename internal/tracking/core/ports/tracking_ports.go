package ports

import (
	"context"
	"errors"
	"fmt"

	attrDomain "conversion-tracking-service/internal/attribution/core/domain"
	attrPorts "conversion-tracking-service/internal/attribution/core/ports"
	"conversion-tracking-service/internal/identity"
	journalUsecase "conversion-tracking-service/internal/journal/core/usecase"
	"conversion-tracking-service/internal/tracking/core/domain"
)

// DirectCollector is the upgraded collector: commands are invoked directly.
type DirectCollector interface {
	Track(ctx context.Context, event string, p domain.EventPayload, page domain.PageContext) error
	Page(ctx context.Context, p domain.EventPayload, page domain.PageContext) error
	Identify(ctx context.Context, h identity.Hashed, page domain.PageContext) error
}

// CollectorPort is the process-wide collector handle. Before the collector
// is upgraded only Enqueue is usable; Direct is the single probe that
// decides between the two shapes.
type CollectorPort interface {
	Direct() (DirectCollector, bool)
	Enqueue(cmd domain.Command) error
	// Ready reports that the collector is upgraded or is being loaded.
	Ready() bool
}

type AttributionPort interface {
	ResolveToken(ctx context.Context, page attrPorts.Page) (string, bool)
	EnsureTokenInURL(ctx context.Context, page attrPorts.Page) bool
	CaptureAttribution(ctx context.Context, page attrPorts.Page) attrDomain.AttributionRecord
}

type ConversionJournalPort interface {
	Execute(ctx context.Context, in journalUsecase.RecordConversionInput) (bool, error)
}

// DispatchObserver receives delivery outcomes, typically for metrics.
type DispatchObserver interface {
	Attempted(kind domain.EventKind, verb domain.Verb, channel string)
	Confirmed(kind domain.EventKind)
	TimedOut(kind domain.EventKind)
	Failed(kind domain.EventKind, stage string)
}

type NopObserver struct{}

func (NopObserver) Attempted(domain.EventKind, domain.Verb, string) {}
func (NopObserver) Confirmed(domain.EventKind)                      {}
func (NopObserver) TimedOut(domain.EventKind)                       {}
func (NopObserver) Failed(domain.EventKind, string)                 {}

var (
	ErrUnknownVerb = errors.New("unknown collector verb")
	// ErrRejected marks a command the sink will never accept; retrying it
	// cannot succeed.
	ErrRejected = errors.New("collector rejected the command")
)

// Invoke runs a command against the direct collector.
func Invoke(ctx context.Context, c DirectCollector, cmd domain.Command) error {
	switch cmd.Verb {
	case domain.VerbTrack:
		return c.Track(ctx, cmd.Event, cmd.Payload, cmd.Page)
	case domain.VerbPage:
		return c.Page(ctx, cmd.Payload, cmd.Page)
	case domain.VerbIdentify:
		return c.Identify(ctx, cmd.Identity, cmd.Page)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownVerb, cmd.Verb)
	}
}
