package booking_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetsched/internal/schedule"
	"github.com/teemow/meetsched/internal/server"
)

// RegisterBookingTools registers the scheduler tools with the MCP server.
func RegisterBookingTools(s *mcpserver.MCPServer, engine server.Engine) error {
	listDatesTool := mcp.NewTool("scheduler_list_dates",
		mcp.WithDescription("List the dates of a month that are open for booking under the owner's policy"),
		mcp.WithNumber("month",
			mcp.Required(),
			mcp.Description("Month number (1-12)"),
		),
		mcp.WithNumber("year",
			mcp.Required(),
			mcp.Description("Four-digit year"),
		),
	)
	s.AddTool(listDatesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListDates(ctx, request, engine)
	})

	listSlotsTool := mcp.NewTool("scheduler_list_slots",
		mcp.WithDescription("List the bookable time slots for a date, after busy periods and the minimum-notice cutoff"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date in YYYY-MM-DD form"),
		),
	)
	s.AddTool(listSlotsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListSlots(ctx, request, engine)
	})

	checkSlotTool := mcp.NewTool("scheduler_check_slot",
		mcp.WithDescription("Check whether a time slot is currently free. The answer is advisory, not a reservation."),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Slot start (RFC3339 format, e.g., '2025-01-06T12:45:00+05:30')"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Slot end (RFC3339 format)"),
		),
	)
	s.AddTool(checkSlotTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCheckSlot(ctx, request, engine)
	})

	bookTool := mcp.NewTool("scheduler_book",
		mcp.WithDescription("Book a time slot. The slot is revalidated against the calendar before committing; a conflict means it must be re-selected."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Attendee name"),
		),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Attendee email address"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Slot start (RFC3339 format)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Slot end (RFC3339 format)"),
		),
		mcp.WithString("notes",
			mcp.Description("Optional notes for the meeting"),
		),
	)
	s.AddTool(bookTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleBook(ctx, request, engine)
	})

	return nil
}

func handleListDates(_ context.Context, request mcp.CallToolRequest, engine server.Engine) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	month, ok := args["month"].(float64)
	if !ok || month < 1 || month > 12 {
		return mcp.NewToolResultError("month must be a number between 1 and 12"), nil
	}
	year, ok := args["year"].(float64)
	if !ok || year < 1 {
		return mcp.NewToolResultError("year must be a positive number"), nil
	}

	dates := engine.AvailableDates(int(year), time.Month(month))
	if len(dates) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No bookable dates in %d-%02d.", int(year), int(month))), nil
	}

	result := fmt.Sprintf("Bookable dates in %d-%02d:\n%s\n", int(year), int(month), strings.Join(dates, "\n"))
	return mcp.NewToolResultText(result), nil
}

func handleListSlots(ctx context.Context, request mcp.CallToolRequest, engine server.Engine) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	dateStr, ok := args["date"].(string)
	if !ok || dateStr == "" {
		return mcp.NewToolResultError("date is required"), nil
	}
	date, err := schedule.ParseDate(dateStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid date format: %v", err)), nil
	}

	slots, err := engine.AvailableSlots(ctx, date)
	if err != nil {
		return engineErrorResult(err), nil
	}
	if len(slots) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No bookable slots on %s.", date)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Bookable slots on %s:\n", date)
	for _, slot := range slots {
		fmt.Fprintf(&sb, "%s (%s to %s)\n",
			slot.Display,
			slot.Start.Format(time.RFC3339),
			slot.End.Format(time.RFC3339))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func handleCheckSlot(ctx context.Context, request mcp.CallToolRequest, engine server.Engine) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	start, end, errResult := parseSlotArgs(args)
	if errResult != nil {
		return errResult, nil
	}

	available, err := engine.CheckSlot(ctx, start, end)
	if err != nil {
		return engineErrorResult(err), nil
	}
	if available {
		return mcp.NewToolResultText("The slot is currently free. Note this is not a reservation; book it to claim it."), nil
	}
	return mcp.NewToolResultText("The slot is busy."), nil
}

func handleBook(ctx context.Context, request mcp.CallToolRequest, engine server.Engine) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	email, _ := args["email"].(string)
	if email == "" {
		return mcp.NewToolResultError("email is required"), nil
	}
	notes, _ := args["notes"].(string)

	start, end, errResult := parseSlotArgs(args)
	if errResult != nil {
		return errResult, nil
	}

	conf, err := engine.Book(ctx, schedule.Request{
		Name:  name,
		Email: email,
		Start: start,
		End:   end,
		Notes: notes,
	})
	if err != nil {
		return engineErrorResult(err), nil
	}

	result := fmt.Sprintf("Booking confirmed.\nEvent ID: %s\nMeet link: %s\nStart: %s\nEnd: %s\n",
		conf.EventID,
		conf.MeetLink,
		conf.Start.Format(time.RFC3339),
		conf.End.Format(time.RFC3339))
	return mcp.NewToolResultText(result), nil
}

func parseSlotArgs(args map[string]interface{}) (start, end time.Time, errResult *mcp.CallToolResult) {
	startStr, ok := args["start"].(string)
	if !ok || startStr == "" {
		return time.Time{}, time.Time{}, mcp.NewToolResultError("start is required")
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, mcp.NewToolResultError(fmt.Sprintf("Invalid start format: %v", err))
	}

	endStr, ok := args["end"].(string)
	if !ok || endStr == "" {
		return time.Time{}, time.Time{}, mcp.NewToolResultError("end is required")
	}
	end, err = time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, mcp.NewToolResultError(fmt.Sprintf("Invalid end format: %v", err))
	}

	return start, end, nil
}

func engineErrorResult(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, schedule.ErrNotConnected):
		return mcp.NewToolResultError("The owner's calendar is not connected. The owner must run the setup flow first.")
	case errors.Is(err, schedule.ErrSlotTaken):
		return mcp.NewToolResultError("The slot is no longer available. List slots again and pick another one.")
	}

	var verr *schedule.ValidationError
	if errors.As(err, &verr) {
		return mcp.NewToolResultError(verr.Error())
	}

	return mcp.NewToolResultError(fmt.Sprintf("Calendar provider error: %v", err))
}
