package shift_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/shiftclaim/internal/availability"
	"github.com/teemow/shiftclaim/internal/claim"
	"github.com/teemow/shiftclaim/internal/interval"
	"github.com/teemow/shiftclaim/internal/server"
	"github.com/teemow/shiftclaim/internal/tools/common"
)

const (
	textDescription    = "The chat message to analyse"
	nowDescription     = "Reference time as RFC 3339 (default: now). The extracted range is placed on this day in the configured time zone."
	accountDescription = "Account name (default: 'default'). Used to manage multiple Google accounts."
)

// RegisterShiftTools registers the shift tools with the MCP server. The claim
// tool is only registered when readOnly is false.
func RegisterShiftTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	classifyTool := mcp.NewTool("shift_classify_message",
		mcp.WithDescription("Detect whether a chat message cancels a TA office-hours shift"),
		mcp.WithString("text", mcp.Required(), mcp.Description(textDescription)),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(classifyTool, common.InstrumentedToolHandler("shift_classify_message", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClassify(ctx, request, sc)
		}))

	extractTool := mcp.NewTool("shift_extract_interval",
		mcp.WithDescription("Extract the time range of a cancelled shift from a chat message"),
		mcp.WithString("text", mcp.Required(), mcp.Description(textDescription)),
		mcp.WithString("now", mcp.Description(nowDescription)),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(extractTool, common.InstrumentedToolHandler("shift_extract_interval", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleExtract(ctx, request, sc)
		}))

	checkTool := mcp.NewTool("shift_check_availability",
		mcp.WithDescription("Check a time range against the Google Calendar. Pass either a message in 'text' or explicit 'start' and 'end'."),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("text", mcp.Description(textDescription)),
		mcp.WithString("now", mcp.Description(nowDescription)),
		mcp.WithString("start", mcp.Description("Range start as RFC 3339")),
		mcp.WithString("end", mcp.Description("Range end as RFC 3339")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(checkTool, common.InstrumentedToolHandler("shift_check_availability", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckAvailability(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	claimTool := mcp.NewTool("shift_claim",
		mcp.WithDescription("Claim the shift cancelled in a message: if the range is free, reply to the chat and add the entry to the calendar. A server claims at most one shift; restart it to claim another"),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("text", mcp.Required(), mcp.Description(textDescription)),
		mcp.WithString("now", mcp.Description(nowDescription)),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(claimTool, common.InstrumentedToolHandler("shift_claim", false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClaim(ctx, request, sc)
		}))

	return nil
}

func handleClassify(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	text := common.GetStringArg(request.GetArguments(), "text")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	return jsonResult(toSignalResult(sc.Classifier().Detect(text)))
}

func handleExtract(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	text := common.GetStringArg(args, "text")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	now, err := common.GetTimeArg(args, "now", time.Now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	iv, rejected, ok := sc.Parser().Parse(text, now)
	res := extractResult{Found: ok}
	if ok {
		res.Interval = toIntervalResult(iv)
	}
	for _, r := range rejected {
		res.Rejected = append(res.Rejected, rejectedCandidate{Text: r.Candidate.Text, Reason: r.Err.Error()})
	}
	return jsonResult(res)
}

func handleCheckAvailability(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	iv, err := intervalFromArgs(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	schedule, err := sc.ScheduleForAccount(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	busy, err := schedule.BusyInWindow(ctx, iv.Start(), iv.End())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query calendar: %v", err)), nil
	}
	return jsonResult(toAvailabilityResult(iv, availability.Check(iv, busy)))
}

// intervalFromArgs reads explicit start/end arguments, falling back to
// extracting the range from text.
func intervalFromArgs(args map[string]interface{}, sc *server.ServerContext) (interval.TimeInterval, error) {
	loc := sc.Parser().Location()
	if common.GetStringArg(args, "start") != "" || common.GetStringArg(args, "end") != "" {
		start, err := common.GetTimeArg(args, "start", time.Time{})
		if err != nil {
			return interval.TimeInterval{}, err
		}
		end, err := common.GetTimeArg(args, "end", time.Time{})
		if err != nil {
			return interval.TimeInterval{}, err
		}
		if start.IsZero() || end.IsZero() {
			return interval.TimeInterval{}, errors.New("start and end must be given together")
		}
		return interval.New(start.In(loc), end.In(loc))
	}

	text := common.GetStringArg(args, "text")
	if text == "" {
		return interval.TimeInterval{}, errors.New("either text or start and end are required")
	}
	now, err := common.GetTimeArg(args, "now", time.Now())
	if err != nil {
		return interval.TimeInterval{}, err
	}
	iv, ok := sc.Parser().Extract(text, now)
	if !ok {
		return interval.TimeInterval{}, errors.New("no usable time range found in text")
	}
	return iv, nil
}

func handleClaim(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	text := common.GetStringArg(args, "text")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	now, err := common.GetTimeArg(args, "now", time.Now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	replier := sc.Replier()
	if replier == nil {
		return mcp.NewToolResultError("no chat replier configured; start the server with a reply target"), nil
	}
	if sc.Claimed() {
		return mcp.NewToolResultError(errAlreadyClaimed), nil
	}
	schedule, err := sc.ScheduleForAccount(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	evaluator := claim.Evaluator{
		Classifier: sc.Classifier(),
		Parser:     sc.Parser(),
		Schedule:   schedule,
		Logger:     sc.Logger(),
	}
	res := evaluator.Evaluate(ctx, text, now)

	out := claimResult{
		Outcome:  string(res.Outcome),
		Signal:   toSignalResult(res.Signal),
		Interval: toIntervalResult(res.Interval),
	}
	switch res.Outcome {
	case claim.OutcomeFree:
	case claim.OutcomeConflict:
		out.Conflict = toAvailabilityResult(res.Interval, res.Decision).Conflict
		return jsonResult(out)
	case claim.OutcomeQueryFailed:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query calendar: %v", res.Err)), nil
	default:
		return jsonResult(out)
	}

	if !sc.TryClaim() {
		return mcp.NewToolResultError(errAlreadyClaimed), nil
	}

	cfg := sc.Config()
	claimer := claim.Claimer{
		Replier:    replier,
		Writer:     schedule,
		ReplyText:  cfg.ReplyText,
		EventTitle: cfg.EventTitle,
		Metrics:    sc.Metrics(),
	}
	if err := claimer.Claim(ctx, res.Interval); err != nil {
		out.Outcome = string(claim.OutcomeClaimFailed)
		out.Error = err.Error()
		var claimErr *claim.ClaimError
		if errors.As(err, &claimErr) {
			out.ReplySent = claimErr.ReplySent
		}
		result, jerr := jsonResult(out)
		if result != nil {
			result.IsError = true
		}
		return result, jerr
	}

	out.Outcome = string(claim.OutcomeClaimed)
	out.ReplySent = true
	return jsonResult(out)
}

const errAlreadyClaimed = "this server already claimed a shift; restart it to claim another"

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
