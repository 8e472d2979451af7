package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scorebot/internal/command"
	"scorebot/internal/parse"
	"scorebot/internal/pkg/lock"
	"scorebot/internal/roster"
	"scorebot/internal/rules"
	"scorebot/internal/service"
)

// ScoreHandler records a match reported with /score. Reports from non-admins
// wait for an admin to like them and run /check.
type ScoreHandler struct {
	keyword string
	scores  *service.ScoreService
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(keyword string, scores *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{keyword: keyword, scores: scores}
}

func (h *ScoreHandler) Name() string        { return h.keyword }
func (h *ScoreHandler) Aliases() []string   { return nil }
func (h *ScoreHandler) Description() string { return "record a match" }
func (h *ScoreHandler) AdminOnly() bool     { return false }

func (h *ScoreHandler) Usage() string {
	return fmt.Sprintf("Invalid. Must be `/%[1]s @A @B @C @D, SCORE_AB - SCORE_CD` or\n"+
		"`/%[1]s @A (p1 s1) @B (p2 s2) @C (p3 s3) @D (p4 s4), SCORE_AB - SCORE_CD`", h.keyword)
}

func (h *ScoreHandler) Handle(ctx context.Context, req *command.Request) (string, error) {
	cmd, ok := req.Command.(*parse.ScoreCommand)
	if !ok {
		return h.Usage(), nil
	}
	if !req.Admin {
		return "Waiting for approval.", nil
	}

	res, err := h.scores.Record(ctx, service.ScoreInput{
		Command:   cmd,
		SenderID:  req.SenderID(),
		TaggedIDs: req.TaggedIDs(),
		Timestamp: req.Message.CreatedAt,
	})
	if err != nil {
		return scoreError(err)
	}
	return scoreReply(res), nil
}

func scoreReply(res *service.ScoreResult) string {
	if !res.Recorded {
		return res.Verdict.Note
	}
	return FormatMatch(res)
}

// scoreError turns errors the sender can fix into replies.
func scoreError(err error) (string, error) {
	switch {
	case errors.Is(err, roster.ErrResolution),
		errors.Is(err, service.ErrPlayerCount):
		return msgUnresolved, nil
	case errors.Is(err, service.ErrDuplicatePlayer):
		return "Nobody plays on both sides. Check your tags.", nil
	case errors.Is(err, lock.ErrLockTimeout), errors.Is(err, lock.ErrBusy):
		return msgBusy, nil
	}
	return "", err
}

// CheckHandler records score reports that an admin has liked.
type CheckHandler struct {
	verify *service.VerifyService
}

// NewCheckHandler creates a new CheckHandler.
func NewCheckHandler(verify *service.VerifyService) *CheckHandler {
	return &CheckHandler{verify: verify}
}

func (h *CheckHandler) Name() string        { return "check" }
func (h *CheckHandler) Aliases() []string   { return nil }
func (h *CheckHandler) Description() string { return "record liked score reports" }
func (h *CheckHandler) Usage() string       { return "`/check`" }
func (h *CheckHandler) AdminOnly() bool     { return true }

func (h *CheckHandler) Handle(ctx context.Context, req *command.Request) (string, error) {
	results, err := h.verify.Check(ctx, req.Message.ID)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "Nothing new to record.", nil
	}

	replies := make([]string, 0, len(results))
	for _, v := range results {
		switch {
		case v.Err != nil:
			if errors.Is(v.Err, parse.ErrSyntax) {
				replies = append(replies, fmt.Sprintf("%s: couldn't read that score.", v.Message.Name))
				continue
			}
			msg, err := scoreError(v.Err)
			if err != nil {
				msg = msgFailed
			}
			replies = append(replies, fmt.Sprintf("%s: %s", v.Message.Name, msg))
		case v.Result.Verdict.Outcome == rules.Rejected:
			replies = append(replies, fmt.Sprintf("%s: %s", v.Message.Name, v.Result.Verdict.Note))
		default:
			replies = append(replies, scoreReply(v.Result))
		}
	}
	return strings.Join(replies, "\n\n"), nil
}
