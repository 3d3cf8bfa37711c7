package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"docfill/internal/catalog"
	"docfill/internal/collect"
	"docfill/internal/gateway"
	"docfill/internal/model"
	"docfill/internal/session"
)

func (s *sessionService) Start(ctx context.Context, documentType string) (*StartResult, error) {
	dt, err := s.documentType(ctx, documentType)
	if err != nil {
		return nil, err
	}

	sess := session.New(dt.Code, s.now())
	if err := s.Sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.Log.Info("session started", zap.String("session_id", sess.ID), zap.String("document_type", dt.Code))

	return &StartResult{
		Session:  sess,
		Groups:   s.Catalog.FieldsFor(s.Catalog.Resolve(dt.Code)),
		Greeting: s.Orchestrator.Greeting(dt.Name, sess),
	}, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	return s.load(ctx, id)
}

func (s *sessionService) SubmitAnswers(ctx context.Context, id string, values map[string]any, strict bool) (*AnswerResult, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	unlock := s.Locker.Lock(id)
	defer unlock()

	sess, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := session.Merge(sess, s.Validator, values, strict, s.now())
	if err != nil {
		return nil, err
	}
	if len(res.Committed) > 0 {
		if err := s.Sessions.Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}

	next := s.Orchestrator.CurrentGroup(sess)
	return &AnswerResult{
		Session:   sess,
		Committed: res.Committed,
		Skipped:   res.Skipped,
		NextGroup: next,
		Complete:  next == nil,
	}, nil
}

func (s *sessionService) Chat(ctx context.Context, id string, in ChatInput) (*TurnResult, error) {
	return s.turn(ctx, id, in, false)
}

func (s *sessionService) Review(ctx context.Context, id string, in ChatInput) (*TurnResult, error) {
	return s.turn(ctx, id, in, true)
}

// turn runs one serialized turn on a session. A generate outcome renders the document within
// the same critical section.
func (s *sessionService) turn(ctx context.Context, id string, in ChatInput, review bool) (*TurnResult, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	unlock := s.Locker.Lock(id)
	defer unlock()

	sess, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}

	t := collect.Turn{
		Utterance:   in.Message,
		History:     in.History,
		GroupFields: in.GroupFields,
		Strict:      in.Strict,
	}
	var out collect.Outcome
	if review || s.Orchestrator.Ready(sess) {
		out, err = s.Orchestrator.Review(ctx, sess, t)
	} else {
		out, err = s.Orchestrator.Collect(ctx, sess, t)
	}
	if err != nil {
		return nil, err
	}

	if len(out.Committed) > 0 {
		if err := s.Sessions.Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}

	res := &TurnResult{Outcome: out, Session: sess}
	if out.Action == gateway.ActionGenerate {
		gen, err := s.generate(ctx, sess)
		if err != nil {
			return nil, err
		}
		res.Artifact = gen.Artifact
	}
	return res, nil
}

func (s *sessionService) Ask(ctx context.Context, id string, in ChatInput) (*TurnResult, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	var name string
	dt, err := s.documentType(ctx, sess.DocumentTypeCode)
	switch {
	case err == nil:
		name = dt.Name
	case !errors.Is(err, ErrDocumentTypeNotFound):
		return nil, err
	}
	out := s.Orchestrator.Consult(ctx, name, collect.Turn{Utterance: in.Message, History: in.History})
	return &TurnResult{Outcome: out, Session: sess}, nil
}

func (s *sessionService) Summary(ctx context.Context, id string) (*SummaryResult, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SummaryResult{
		Summary:  s.Orchestrator.Summary(sess),
		Answers:  sess.Answers,
		Complete: s.Orchestrator.Ready(sess),
	}, nil
}

// mutable loads a session that may still change its answers.
func (s *sessionService) mutable(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == model.SessionSigned {
		return nil, ErrSessionClosed
	}
	if sess.Answers == nil {
		sess.Answers = map[string]string{}
	}
	return sess, nil
}

// missingFields lists the unsatisfied keys of the session's next group.
func (s *sessionService) missingFields(sess *model.Session) []string {
	g := s.Orchestrator.CurrentGroup(sess)
	if g == nil {
		return nil
	}
	return catalog.Missing(*g, catalog.KeySet(sess.Answers))
}
