package commands

import (
	"context"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/application/reminder"
)

// TestCmd digest de prueba con las pólizas más próximas a vencer.
type TestCmd struct {
	Org string `required:"" help:"Organización." placeholder:"ORG_ID"`
	To  string `help:"Destinatario; por defecto el configurado en la organización." placeholder:"EMAIL"`
}

func (c *TestCmd) Run(ctx context.Context, globals *Globals) error {
	svc, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Scheduler.SendTest(ctx, c.Org, c.To)
	return report(globals, res, err)
}

// ManualCmd recordatorio de una póliza concreta, sin filtro de vencimiento.
type ManualCmd struct {
	Org    string `required:"" help:"Organización." placeholder:"ORG_ID"`
	Policy string `required:"" help:"Póliza a recordar." placeholder:"POLICY_ID"`
}

func (c *ManualCmd) Run(ctx context.Context, globals *Globals) error {
	svc, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Scheduler.SendManual(ctx, c.Org, c.Policy)
	return report(globals, res, err)
}

func report(globals *Globals, res reminder.TriggerResult, err error) error {
	out := dto.SendReminderResponse{SentCount: res.SentCount, Recipient: res.Recipient}
	if err != nil {
		out.Error = err.Error()
	}
	if perr := globals.print(out); perr != nil {
		return perr
	}
	return err
}
