package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/chatmesh/core"
	"github.com/hupe1980/chatmesh/logging"
	"github.com/hupe1980/chatmesh/model"
	"github.com/hupe1980/chatmesh/storage"
	"github.com/hupe1980/chatmesh/workflow"
)

// WorkflowType selects the conversation workflow wired by the builder. The
// set is closed; WithWorkflow maps it through an explicit switch.
type WorkflowType string

// WorkflowChat is the bounded-memory chat workflow.
const WorkflowChat WorkflowType = "chat"

// MissingComponentsError reports builder validation failure, naming every
// component that has not been configured.
type MissingComponentsError struct {
	Components []string
}

// Error implements the error interface.
func (e *MissingComponentsError) Error() string {
	return "missing required components: " + strings.Join(e.Components, ", ")
}

// BuilderOptions configure builder-wide collaborators.
type BuilderOptions struct {
	// Logger is handed to the workflow and the built bot.
	Logger logging.Logger
}

// Builder assembles a Bot step by step. The model and storage steps must run
// before WithWorkflow: the workflow's nodes close over both. Configuration
// errors are collected and surfaced by Build.
//
// A Builder is single-use and must not be shared across goroutines.
type Builder struct {
	model       model.Model
	storage     core.ConversationStore
	workflow    *workflow.Workflow
	temperature *float64
	logger      logging.Logger
	errs        []error
}

// NewBuilder creates an empty builder.
func NewBuilder(optFns ...func(o *BuilderOptions)) *Builder {
	opts := BuilderOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Builder{logger: opts.Logger}
}

// WithModel creates the model through the provider factory. Validation is
// fail fast: unsupported providers or model names are recorded immediately.
func (b *Builder) WithModel(provider model.Provider, name string, optFns ...func(c *model.Config)) *Builder {
	m, err := NewModel(provider, name, optFns...)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.model = m
	return b
}

// WithModelInstance injects an existing model, bypassing the factory.
func (b *Builder) WithModelInstance(m model.Model) *Builder {
	b.model = m
	return b
}

// WithStorage creates the conversation store for the given backend.
func (b *Builder) WithStorage(backend storage.Backend, optFns ...func(o *storage.Options)) *Builder {
	store, err := storage.New(backend, optFns...)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.storage = store
	return b
}

// WithStorageInstance injects an existing conversation store.
func (b *Builder) WithStorageInstance(store core.ConversationStore) *Builder {
	b.storage = store
	return b
}

// WithWorkflow wires the workflow for the given type. Model and storage must
// already be configured; the workflow's nodes close over both. This ordering
// is a contract, not an implementation accident.
func (b *Builder) WithWorkflow(wt WorkflowType, optFns ...func(o *workflow.ChatOptions)) *Builder {
	var missing []string
	if b.model == nil {
		missing = append(missing, "model")
	}
	if b.storage == nil {
		missing = append(missing, "storage")
	}
	if len(missing) > 0 {
		b.errs = append(b.errs, &MissingComponentsError{Components: missing})
		return b
	}

	switch wt {
	case WorkflowChat:
		setLogger := func(o *workflow.ChatOptions) { o.Logger = b.logger }
		wf, err := workflow.NewChatWorkflow(b.model, b.storage, append([]func(o *workflow.ChatOptions){setLogger}, optFns...)...)
		if err != nil {
			b.errs = append(b.errs, fmt.Errorf("create chat workflow: %w", err))
			return b
		}
		b.workflow = wf
	default:
		b.errs = append(b.errs, fmt.Errorf("unsupported workflow type: %s", wt))
	}

	return b
}

// WithTemperature sets the agent temperature.
func (b *Builder) WithTemperature(temperature float64) *Builder {
	b.temperature = &temperature
	return b
}

// Build validates that all four components are set and returns the immutable
// Bot. The validation failure names every missing component, not just the
// first one found.
func (b *Builder) Build() (*Bot, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	var missing []string
	if b.model == nil {
		missing = append(missing, "model")
	}
	if b.storage == nil {
		missing = append(missing, "storage")
	}
	if b.workflow == nil {
		missing = append(missing, "workflow")
	}
	if b.temperature == nil {
		missing = append(missing, "temperature")
	}
	if len(missing) > 0 {
		return nil, &MissingComponentsError{Components: missing}
	}

	return &Bot{
		model:       b.model,
		storage:     b.storage,
		workflow:    b.workflow,
		temperature: *b.temperature,
		logger:      b.logger,
		threads:     newThreadLocks(),
	}, nil
}
