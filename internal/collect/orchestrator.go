// Package collect drives the multi-turn dialogue that fills a session's answers.
//
// Each turn asks the gateway to extract field values for the current group, merges accepted
// values through the validator and decides what to ask next. Any gateway failure degrades to a
// deterministic question built from the catalog, so a turn never fails because the language
// model is unreachable.
package collect

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"docfill/internal/catalog"
	"docfill/internal/gateway"
	"docfill/internal/model"
	"docfill/internal/session"
	"docfill/internal/validation"
)

// Mode is the dialogue stage a turn runs in.
type Mode string

const (
	ModeCollect Mode = "collect"
	ModeReview  Mode = "review"
	ModeConsult Mode = "consult"
)

// Fallback reasons reported in metrics and logs.
const (
	reasonUnavailable  = "unavailable"
	reasonGatewayError = "gateway_error"
	reasonTimeout      = "timeout"
	reasonMalformed    = "malformed"
	reasonUnexpected   = "unexpected_action"
)

// Turn is one user utterance plus the conversation so far.
type Turn struct {
	Utterance string
	History   []gateway.Message
	// GroupFields overrides the target group. Empty means the next unsatisfied group.
	GroupFields []string
	// Strict aborts the merge on any rejected field instead of skipping it.
	Strict bool
}

// Outcome is what a turn produced. Message is always set and is shown to the user verbatim.
type Outcome struct {
	Mode      Mode                    `json:"mode"`
	Action    gateway.Action          `json:"action"`
	Message   string                  `json:"message"`
	Committed []string                `json:"committed,omitempty"`
	Rejected  []validation.FieldError `json:"rejected,omitempty"`
	Group     *model.FieldGroup       `json:"group,omitempty"`
	Complete  bool                    `json:"complete"`
	Fallback  bool                    `json:"fallback"`
}

// Config tunes gateway calls.
type Config struct {
	Timeout      time.Duration
	HistoryLimit int
}

// Orchestrator runs collect and review turns. It holds no per-session state; callers serialize
// turns on the same session.
type Orchestrator struct {
	catalog   *catalog.Catalog
	validator session.Validator
	gateway   gateway.Client
	cfg       Config
	metrics   *Metrics
	log       *zap.Logger
	now       func() time.Time
}

// New builds an Orchestrator. metrics may be nil.
func New(cat *catalog.Catalog, v session.Validator, gw gateway.Client, cfg Config, metrics *Metrics, log *zap.Logger) *Orchestrator {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		catalog:   cat,
		validator: v,
		gateway:   gw,
		cfg:       cfg,
		metrics:   metrics,
		log:       log.Named("collect"),
		now:       time.Now,
	}
}

// Ready reports whether every group of the session's document type is satisfied.
func (o *Orchestrator) Ready(s *model.Session) bool {
	return o.catalog.NextGroup(o.catalog.Resolve(s.DocumentTypeCode), catalog.KeySet(s.Answers)) == nil
}

// CurrentGroup is the next unsatisfied group of s, or nil when s is ready.
func (o *Orchestrator) CurrentGroup(s *model.Session) *model.FieldGroup {
	return o.catalog.NextGroup(o.catalog.Resolve(s.DocumentTypeCode), catalog.KeySet(s.Answers))
}

// Greeting introduces the document named name and asks for the first unsatisfied group.
func (o *Orchestrator) Greeting(name string, s *model.Session) string {
	intro := fmt.Sprintf("Вітаю! Я допоможу вам скласти документ: %s.", name)
	g := o.CurrentGroup(s)
	if g == nil {
		return intro + "\n\n" + o.Summary(s)
	}
	return intro + "\n\n" + g.Prompt
}

// Summary lists every answer by human field name, catalog order first, then the review question.
func (o *Orchestrator) Summary(s *model.Session) string {
	var b strings.Builder
	b.WriteString("Перевірте ваші дані:\n")

	seen := make(map[string]struct{}, len(s.Answers))
	for _, k := range o.catalog.AllRequiredFields(o.catalog.Resolve(s.DocumentTypeCode)) {
		v, ok := s.Answers[k]
		if !ok {
			continue
		}
		seen[k] = struct{}{}
		fmt.Fprintf(&b, "\n• %s: %s", o.catalog.HumanName(k), v)
	}

	extras := make([]string, 0, len(s.Answers)-len(seen))
	for k := range s.Answers {
		if _, ok := seen[k]; !ok {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	for _, k := range extras {
		fmt.Fprintf(&b, "\n• %s: %s", o.catalog.HumanName(k), s.Answers[k])
	}

	b.WriteString("\n\n")
	b.WriteString(reviewQuestion)
	return b.String()
}

// Collect runs one extraction turn and merges accepted values into s.
// The only error it returns is a *validation.Error for a strict turn.
func (o *Orchestrator) Collect(ctx context.Context, s *model.Session, t Turn) (Outcome, error) {
	code := o.catalog.Resolve(s.DocumentTypeCode)

	group := o.targetGroup(s, t)
	if group == nil {
		out := Outcome{Mode: ModeCollect, Action: gateway.ActionChat, Message: o.Summary(s), Complete: true}
		o.metrics.turn(ModeCollect, string(out.Action))
		return out, nil
	}

	missing := catalog.Missing(*group, catalog.KeySet(s.Answers))
	if len(missing) == 0 {
		missing = group.Fields
	}
	question := askFor(o.humanNames(missing))

	system := collectPrompt(o.catalog.Context(group.Fields), *group, question)
	raw, err := o.complete(ctx, system, lastN(t.History, o.cfg.HistoryLimit), t.Utterance,
		gateway.WithTemperature(collectTemperature), gateway.WithJSON())
	if err != nil {
		return o.fallback(ModeCollect, group, question, failureReason(err), err), nil
	}

	reply := gateway.ParseReply(raw)
	switch reply.Action {
	case gateway.ActionChat:
		out := Outcome{Mode: ModeCollect, Action: gateway.ActionChat, Message: reply.Message, Group: group}
		o.metrics.turn(ModeCollect, string(out.Action))
		return out, nil

	case gateway.ActionExtract:
		return o.extract(ctx, s, code, group, reply.Fields, t.Strict)

	case gateway.ActionMalformed:
		return o.fallback(ModeCollect, group, question, reasonMalformed, errors.New(reply.Message)), nil

	default:
		return o.fallback(ModeCollect, group, question, reasonUnexpected, fmt.Errorf("action %s in collect mode", reply.Action)), nil
	}
}

func (o *Orchestrator) extract(ctx context.Context, s *model.Session, code string, group *model.FieldGroup, fields map[string]any, strict bool) (Outcome, error) {
	res, err := session.Merge(s, o.validator, o.knownFields(fields), strict, o.now())
	if err != nil {
		o.metrics.turn(ModeCollect, "rejected")
		return Outcome{}, err
	}

	out := Outcome{
		Mode:      ModeCollect,
		Action:    gateway.ActionExtract,
		Committed: res.Committed,
		Rejected:  res.Skipped,
	}
	filled := catalog.KeySet(s.Answers)

	if missing := catalog.Missing(*group, filled); len(missing) > 0 {
		out.Group = group
		out.Message = o.clarify(ctx, res.Committed, missing)
		o.metrics.turn(ModeCollect, string(out.Action))
		return out, nil
	}

	next := o.catalog.NextGroup(code, filled)
	if next == nil {
		out.Complete = true
		out.Message = o.Summary(s)
	} else {
		out.Group = next
		out.Message = next.Prompt
	}
	o.metrics.turn(ModeCollect, string(out.Action))
	return out, nil
}

// clarify asks the gateway to phrase a follow-up for the fields still missing from the group.
func (o *Orchestrator) clarify(ctx context.Context, committed, missing []string) string {
	missingNames := o.humanNames(missing)
	raw, err := o.complete(ctx, clarifySystem, nil, clarifyPrompt(o.humanNames(committed), missingNames),
		gateway.WithTemperature(clarifyTemperature))
	if err != nil {
		o.metrics.fallback(ModeCollect, "clarify_"+failureReason(err))
		o.log.Warn("clarify fell back", zap.Error(err))
		return clarifyFallback(missingNames)
	}
	msg := strings.TrimSpace(raw)
	if msg == "" {
		o.metrics.fallback(ModeCollect, "clarify_"+reasonMalformed)
		return clarifyFallback(missingNames)
	}
	return msg
}

// Review classifies a follow-up on a completed answer set as accept, modify or unrelated.
// Update replies are merged leniently. A generate reply on an unready session is turned into a
// question for the missing fields.
func (o *Orchestrator) Review(ctx context.Context, s *model.Session, t Turn) (Outcome, error) {
	code := o.catalog.Resolve(s.DocumentTypeCode)
	all := o.catalog.AllRequiredFields(code)

	system := reviewPrompt(o.catalog.Context(all), o.answersContext(s))
	raw, err := o.complete(ctx, system, lastN(t.History, reviewHistoryLimit), t.Utterance,
		gateway.WithTemperature(reviewTemperature), gateway.WithJSON())
	if err != nil {
		return o.fallback(ModeReview, nil, reviewFallback, failureReason(err), err), nil
	}

	reply := gateway.ParseReply(raw)
	switch reply.Action {
	case gateway.ActionGenerate:
		if g := o.CurrentGroup(s); g != nil {
			out := Outcome{
				Mode:    ModeReview,
				Action:  gateway.ActionChat,
				Message: askFor(o.humanNames(catalog.Missing(*g, catalog.KeySet(s.Answers)))),
				Group:   g,
			}
			o.metrics.turn(ModeReview, "not_ready")
			return out, nil
		}
		out := Outcome{Mode: ModeReview, Action: gateway.ActionGenerate, Message: orDefault(reply.Message, generateReply), Complete: true}
		o.metrics.turn(ModeReview, string(out.Action))
		return out, nil

	case gateway.ActionUpdate:
		res, err := session.Merge(s, o.validator, o.knownFields(reply.Fields), t.Strict, o.now())
		if err != nil {
			o.metrics.turn(ModeReview, "rejected")
			return Outcome{}, err
		}
		out := Outcome{
			Mode:      ModeReview,
			Action:    gateway.ActionUpdate,
			Committed: res.Committed,
			Rejected:  res.Skipped,
			Complete:  o.Ready(s),
		}
		out.Message = o.updateMessage(reply.Message, res)
		o.metrics.turn(ModeReview, string(out.Action))
		return out, nil

	case gateway.ActionChat:
		out := Outcome{Mode: ModeReview, Action: gateway.ActionChat, Message: reply.Message, Complete: o.Ready(s)}
		o.metrics.turn(ModeReview, string(out.Action))
		return out, nil

	case gateway.ActionMalformed:
		return o.fallback(ModeReview, nil, reviewFallback, reasonMalformed, errors.New(reply.Message)), nil

	default:
		return o.fallback(ModeReview, nil, reviewFallback, reasonUnexpected, fmt.Errorf("action %s in review mode", reply.Action)), nil
	}
}

// Consult answers a free-form question about the document being filled. It never touches
// answers. The gateway reply is plain text; an empty reply or a failed call yields a fixed
// apology instead.
func (o *Orchestrator) Consult(ctx context.Context, documentName string, t Turn) Outcome {
	raw, err := o.complete(ctx, consultPrompt(documentName), lastN(t.History, o.cfg.HistoryLimit), t.Utterance,
		gateway.WithTemperature(consultTemperature))
	if err != nil {
		return o.fallback(ModeConsult, nil, consultUnavailable, failureReason(err), err)
	}
	msg := strings.TrimSpace(raw)
	if msg == "" {
		return o.fallback(ModeConsult, nil, consultUnavailable, reasonMalformed, errors.New("empty reply"))
	}
	o.metrics.turn(ModeConsult, string(gateway.ActionChat))
	return Outcome{Mode: ModeConsult, Action: gateway.ActionChat, Message: msg}
}

func (o *Orchestrator) updateMessage(msg string, res session.MergeResult) string {
	if len(res.Committed) == 0 {
		if len(res.Skipped) == 0 {
			return reviewFallback
		}
		parts := make([]string, len(res.Skipped))
		for i, fe := range res.Skipped {
			parts[i] = o.catalog.HumanName(fe.Field) + ": " + fe.Message
		}
		return "Не вдалося оновити дані. " + strings.Join(parts, " ")
	}
	return orDefault(msg, updateReply) + "\n\n" + reviewQuestion
}

func (o *Orchestrator) fallback(mode Mode, group *model.FieldGroup, msg, reason string, cause error) Outcome {
	o.metrics.fallback(mode, reason)
	o.metrics.turn(mode, string(gateway.ActionChat))
	o.log.Warn("turn fell back",
		zap.String("mode", string(mode)),
		zap.String("reason", reason),
		zap.Error(cause),
	)
	return Outcome{Mode: mode, Action: gateway.ActionChat, Message: msg, Group: group, Fallback: true}
}

func (o *Orchestrator) complete(ctx context.Context, system string, history []gateway.Message, utterance string, opts ...gateway.Option) (string, error) {
	if o.gateway == nil {
		return "", errNoGateway
	}
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}
	return o.gateway.Complete(ctx, system, history, utterance, opts...)
}

func (o *Orchestrator) targetGroup(s *model.Session, t Turn) *model.FieldGroup {
	if len(t.GroupFields) == 0 {
		return o.CurrentGroup(s)
	}
	keys := make([]string, len(t.GroupFields))
	for i, k := range t.GroupFields {
		keys[i] = validation.CanonicalKey(k)
	}
	for _, g := range o.catalog.FieldsFor(o.catalog.Resolve(s.DocumentTypeCode)) {
		if equalKeys(g.Fields, keys) {
			return &g
		}
	}
	return &model.FieldGroup{Fields: keys}
}

// knownFields keeps the candidates whose key is defined in the catalog.
func (o *Orchestrator) knownFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		key := validation.CanonicalKey(k)
		if o.catalog.Known(key) {
			out[key] = v
			continue
		}
		o.log.Debug("dropping unknown field", zap.String("field", k))
	}
	return out
}

func (o *Orchestrator) humanNames(keys []string) []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = o.catalog.HumanName(k)
	}
	return names
}

func (o *Orchestrator) answersContext(s *model.Session) string {
	keys := make([]string, 0, len(s.Answers))
	for k := range s.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("- %s: %s", k, s.Answers[k])
	}
	return strings.Join(lines, "\n")
}

var errNoGateway = errors.New("gateway not configured")

func failureReason(err error) string {
	switch {
	case errors.Is(err, errNoGateway):
		return reasonUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return reasonTimeout
	}
	return reasonGatewayError
}

func lastN(history []gateway.Message, n int) []gateway.Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
