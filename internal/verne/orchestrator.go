package verne

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/verne/internal/resource"
)

// Operation is a lifecycle action applied to every resource of a pass.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationClean  Operation = "clean"
)

// Orchestrator runs parse → open → per-resource operation → close passes.
// It is not safe for concurrent use.
type Orchestrator struct {
	parser    Parser
	driver    Driver
	resources []resource.Resource
	state     State
	log       logrus.FieldLogger
}

// New creates an Orchestrator in the Idle state.
func New(parser Parser, driver Driver, log logrus.FieldLogger) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Orchestrator{
		parser: parser,
		driver: driver,
		state:  StateIdle,
		log:    log,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Resources returns a copy of the most recently parsed sequence.
func (o *Orchestrator) Resources() []resource.Resource {
	out := make([]resource.Resource, len(o.resources))
	copy(out, o.resources)
	return out
}

// Parse runs the parser and replaces the stored sequence. Calling it again
// simply re-parses.
func (o *Orchestrator) Parse(ctx context.Context) error {
	resources, err := o.parser.Parse(ctx)
	if err != nil {
		o.state = StateIdle
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := o.transition(StateParsed); err != nil {
		return err
	}

	o.resources = resources
	o.log.WithField("resources", len(resources)).Debug("Template parsed")
	return nil
}

// Create realizes every resource of the template, in template order.
func (o *Orchestrator) Create(ctx context.Context) error {
	return o.run(ctx, OperationCreate)
}

// Clean tears down every resource of the template, in template order.
func (o *Orchestrator) Clean(ctx context.Context) error {
	return o.run(ctx, OperationClean)
}

// run executes one complete pass for op.
func (o *Orchestrator) run(ctx context.Context, op Operation) error {
	if o.state != StateIdle && o.state != StateParsed {
		return fmt.Errorf("%w: %s requested while %s", ErrInvalidTransition, op, o.state)
	}

	start := time.Now()
	log := o.log.WithField("operation", op)

	if err := o.Parse(ctx); err != nil {
		return err
	}

	if err := o.driver.Open(ctx); err != nil {
		_ = o.transition(StateIdle)
		return fmt.Errorf("failed to open driver: %w", err)
	}
	if err := o.transition(StateConnectionOpen); err != nil {
		return err
	}

	for i, r := range o.resources {
		log.WithFields(logrus.Fields{
			"index": i,
			"kind":  r.Kind(),
			"name":  r.GetName(),
		}).Debug("Applying operation")

		switch op {
		case OperationCreate:
			o.driver.Create(ctx, r)
		case OperationClean:
			o.driver.Clean(ctx, r)
		}
	}

	closeErr := o.driver.Close()
	if err := o.transition(StateConnectionClosed); err != nil {
		return err
	}
	if err := o.transition(StateIdle); err != nil {
		return err
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close driver: %w", closeErr)
	}

	log.WithFields(logrus.Fields{
		"resources": len(o.resources),
		"elapsed":   time.Since(start).Round(time.Millisecond),
	}).Info("Pass complete")
	return nil
}
