package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/claude/gymdirection/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

const defaultSessionLimit = 10

// parseDate accepts YYYY-MM-DD or RFC 3339 and returns the calendar date.
func parseDate(s string) (string, error) {
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t.Format(models.DateLayout), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", err
	}
	return t.Format(models.DateLayout), nil
}

// --- Tool definitions ---

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Personal records per exercise: heaviest set (weight, reps, date) and highest single-session volume (sum of weight x reps, date). Sorted by volume, highest first."),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial, case-insensitive match, e.g. 'bench')")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of exercises to return. Defaults to all.")),
)

var toolGetRecentSessions = mcp.NewTool("get_recent_sessions",
	mcp.WithDescription("Recently logged training sessions, newest first, with every exercise and set (reps, weight, RPE)."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sessions. Defaults to 10.")),
	mcp.WithString("since", mcp.Description("Only sessions on or after this date (YYYY-MM-DD).")),
	mcp.WithString("exercise", mcp.Description("Only keep exercises whose name contains this text (case-insensitive).")),
)

var toolGetProgram = mcp.NewTool("get_program",
	mcp.WithDescription("The weekly training program: for each planned weekday, a title and the prescribed exercises with sets and rep targets."),
	mcp.WithNumber("weekday", mcp.Description("Only the plan for this weekday (0 = Sunday ... 6 = Saturday).")),
)

// --- Tool handlers ---

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := h.ds.PRs(ctx, UserIDFromContext(ctx))
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	items := c.Items
	if filter := strings.ToLower(req.GetString("exercise", "")); filter != "" {
		items = make([]models.PRRecord, 0, len(c.Items))
		for _, rec := range c.Items {
			if strings.Contains(strings.ToLower(rec.Exercise), filter) {
				items = append(items, rec)
			}
		}
	}
	if limit := req.GetInt("limit", 0); limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	result, err := mcp.NewToolResultJSON(models.PRCollection{Items: items, UpdatedAt: c.UpdatedAt})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	since := ""
	if v := req.GetString("since", ""); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		since = d
	}

	limit := req.GetInt("limit", defaultSessionLimit)
	sessions, err := h.ds.RecentSessions(ctx, UserIDFromContext(ctx), limit)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	filter := strings.ToLower(req.GetString("exercise", ""))
	out := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		// Newest first, so everything after the first older session is older too.
		if since != "" && s.Date < since {
			break
		}
		if filter != "" {
			kept := s.Exercises[:0:0]
			for _, ex := range s.Exercises {
				if strings.Contains(strings.ToLower(ex.Name), filter) {
					kept = append(kept, ex)
				}
			}
			if len(kept) == 0 {
				continue
			}
			s.Exercises = kept
		}
		out = append(out, s)
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.ds.Program(ctx, UserIDFromContext(ctx))
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	var v any = p
	if wd := req.GetInt("weekday", -1); wd >= 0 {
		if wd > 6 {
			return mcp.NewToolResultError("weekday must be 0-6"), nil
		}
		day, ok := p.DayFor(wd)
		if !ok {
			return mcp.NewToolResultText("Rest day: nothing planned."), nil
		}
		v = day
	}

	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
