package commands

import (
	"context"
	"fmt"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/application/reminder"
)

// RunCmd pasada automática, la misma que dispara el cron HTTP.
type RunCmd struct {
	Org string `help:"Limitar la pasada a una organización." placeholder:"ORG_ID"`
}

func (c *RunCmd) Run(ctx context.Context, globals *Globals) error {
	svc, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.Scheduler.RunReminderPass(ctx, reminder.PassOptions{OrganizationID: c.Org})
	out := dto.RunRemindersResponse{
		SentCount: result.SentCount(),
		Sent:      result.Sent,
		Skipped:   result.Skipped,
		Error:     result.ErrorSummary(),
	}
	for _, e := range result.Errors {
		out.Errors = append(out.Errors, dto.ReminderPolicyError{PolicyID: e.PolicyID, OrganizationID: e.OrganizationID, Reason: e.Reason})
	}
	if err != nil {
		out.Error = err.Error()
	}
	if perr := globals.print(out); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d pólizas con error: %s", len(result.Errors), out.Error)
	}
	return nil
}
