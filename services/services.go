// Package services holds the business rules: the session store, the
// per-entity repositories' validation and uniqueness checks, the status
// workflow and reporting. Every operation takes the caller's session
// explicitly and gates it through the access policy before touching the
// store.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-distribution-backend/apperror"
	"food-distribution-backend/events"
	"food-distribution-backend/identity"
	"food-distribution-backend/notify"
	"food-distribution-backend/policy"
	"food-distribution-backend/repository"
	"food-distribution-backend/session"
	"food-distribution-backend/utils"

	"go.uber.org/zap"
)

const (
	entityBeneficiary = "beneficiary"
	entityCenter      = "distributionCenter"
	entitySchedule    = "foodSchedule"
	entityPrincipal   = "principal"
)

type Options struct {
	Store    *repository.Store
	Identity identity.Provider
	Revoker  session.Revoker
	Bus      *events.Bus
	Sink     notify.Sink
	Mailer   *notify.Mailer
	Tokens   *utils.TokenGenerator
	Log      *zap.Logger
}

type Services struct {
	Sessions      *SessionService
	Beneficiaries *BeneficiaryService
	Centers       *CenterService
	Schedules     *ScheduleService
	Workflow      *WorkflowService
	Users         *UserService
	Reports       *ReportService
}

func New(opts Options) *Services {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus(events.DefaultBuffer)
	}
	if opts.Revoker == nil {
		opts.Revoker = session.NewMemoryRevoker()
	}
	if opts.Tokens == nil {
		opts.Tokens = utils.NewTokenGenerator(utils.DefaultTokenPrefix)
	}
	if opts.Sink == nil {
		opts.Sink = notify.LogSink{Log: opts.Log}
	}

	em := emitter{bus: opts.Bus, sink: opts.Sink, log: opts.Log}
	inflight := utils.NewInFlight()
	sessions := &SessionService{
		store:    opts.Store,
		provider: opts.Identity,
		revoker:  opts.Revoker,
		mailer:   opts.Mailer,
		emitter:  em,
	}

	return &Services{
		Sessions:      sessions,
		Beneficiaries: &BeneficiaryService{store: opts.Store, emitter: em},
		Centers:       &CenterService{store: opts.Store, emitter: em},
		Schedules:     &ScheduleService{store: opts.Store, tokens: opts.Tokens, inflight: inflight, emitter: em},
		Workflow:      &WorkflowService{store: opts.Store, inflight: inflight, now: time.Now, emitter: em},
		Users:         &UserService{store: opts.Store, sessions: sessions, provider: opts.Identity, emitter: em},
		Reports:       &ReportService{store: opts.Store, now: time.Now},
	}
}

// emitter publishes change events and user notifications after writes.
type emitter struct {
	bus  *events.Bus
	sink notify.Sink
	log  *zap.Logger
}

func (e emitter) publish(topic events.Topic, typ, key string, sess *session.Context, data interface{}) {
	e.bus.Publish(events.Event{
		Topic: topic,
		Type:  typ,
		Key:   key,
		Actor: sess.PrincipalID(),
		Data:  data,
	})
}

func (e emitter) success(ctx context.Context, sess *session.Context, message string) {
	notify.Success(ctx, e.sink, sess.PrincipalID(), message)
}

func (e emitter) failure(ctx context.Context, sess *session.Context, message string) {
	notify.Error(ctx, e.sink, sess.PrincipalID(), message)
}

// authorize turns a policy denial into a PermissionDeniedError.
func authorize(sess *session.Context, action policy.Action, res policy.Resource) error {
	if sess == nil || sess.Principal == nil {
		return apperror.ErrUnauthenticated
	}
	if !policy.Can(sess.Principal, action, res) {
		return &apperror.PermissionDeniedError{Action: string(action), Role: string(sess.Principal.Role)}
	}
	return nil
}

// storeError maps repository errors onto the application taxonomy.
func storeError(entity, key string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return &apperror.NotFoundError{Entity: entity, Key: key}
	case errors.Is(err, repository.ErrAlreadyExists):
		return &apperror.DuplicateKeyError{Entity: entity, Key: "id", Value: key}
	}
	return fmt.Errorf("%s %s: %w", entity, key, err)
}

func validCNIC(cnic string) error {
	if !utils.IsValidCNIC(cnic) {
		return apperror.Invalid("cnic", "must be exactly 13 digits")
	}
	return nil
}

// writeContext keeps a write running after the client goes away.
func writeContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
