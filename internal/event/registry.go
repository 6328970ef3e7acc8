package event

import (
	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/template"
	"github.com/luisz08/notif-svc/pkg/errors"
)

// Constructor builds a handler from a classified event. Constructors
// validate their handler-specific required fields and fail fast.
type Constructor func(event *model.Event, templates *template.Manager) (Handler, error)

// Registry maps event source discriminators to handler constructors.
// The table is closed at construction: unknown sources are a typed
// error, never a crash.
type Registry struct {
	templates    *template.Manager
	constructors map[string]Constructor
}

// NewRegistry returns a registry with the built-in handlers registered.
func NewRegistry(templates *template.Manager) *Registry {
	return &Registry{
		templates: templates,
		constructors: map[string]Constructor{
			SourceUserSignup: NewSignupHandler,
			SourceDailyStat:  NewDailyStatHandler,
		},
	}
}

// Classify maps an event to its handler. It is a pure function of the
// event: no storage is read or written.
func (r *Registry) Classify(event *model.Event) (Handler, error) {
	if event == nil || event.Data == nil {
		return nil, errors.NewBadRequest("event data must be a map", nil)
	}

	source := event.Source()
	if source == "" {
		return nil, errors.MissingField("source")
	}

	ctor, ok := r.constructors[source]
	if !ok {
		return nil, errors.UnknownSource(source)
	}
	return ctor(event, r.templates)
}

// Sources lists the registered event sources.
func (r *Registry) Sources() []string {
	sources := make([]string, 0, len(r.constructors))
	for s := range r.constructors {
		sources = append(sources, s)
	}
	return sources
}
