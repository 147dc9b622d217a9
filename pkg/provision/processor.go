// Package provision drives CSV rows through the payload builders and the
// API client, reporting one line per object.
package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/netops-tools/sasectl/pkg/audit"
	"github.com/netops-tools/sasectl/pkg/cli"
	"github.com/netops-tools/sasectl/pkg/csvrow"
	"github.com/netops-tools/sasectl/pkg/payload"
	"github.com/netops-tools/sasectl/pkg/sase"
	"github.com/netops-tools/sasectl/pkg/util"
)

// labelWidth is the dot-padded width of the "Kind: "name"" column.
const labelWidth = 44

// Outcome classifies what happened to one object.
type Outcome string

const (
	Created Outcome = "Created"
	Updated Outcome = "Updated"
	Deleted Outcome = "Deleted"
	Absent  Outcome = "Absent"
	Planned Outcome = "Planned"
	Failed  Outcome = "Failed"
)

// Upserter is the subset of *sase.Client the processor needs.
type Upserter interface {
	Upsert(ctx context.Context, endpoint string, obj sase.Object, del bool) (*sase.Result, error)
}

// Options configures a Processor.
type Options struct {
	// Out receives the per-object progress lines. Defaults to os.Stdout.
	Out io.Writer

	// Audit records every API write. Defaults to audit.Discard.
	Audit audit.Logger

	// Delete removes objects instead of creating or updating them.
	Delete bool

	// DryRun prints payloads without calling the API.
	DryRun bool
}

// Processor applies rows one object at a time.
type Processor struct {
	client  Upserter
	out     io.Writer
	audit   audit.Logger
	del     bool
	dryRun  bool
	summary *Summary
}

// NewProcessor creates a processor. client may be nil when opts.DryRun is set.
func NewProcessor(client Upserter, opts Options) *Processor {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Audit == nil {
		opts.Audit = audit.Discard{}
	}
	return &Processor{
		client:  client,
		out:     opts.Out,
		audit:   opts.Audit,
		del:     opts.Delete,
		dryRun:  opts.DryRun,
		summary: NewSummary(),
	}
}

// Summary returns the running per-kind outcome counts.
func (p *Processor) Summary() *Summary {
	return p.summary
}

// RemoteNetwork builds and applies the remote network for rec.
func (p *Processor) RemoteNetwork(ctx context.Context, rec csvrow.Record) (Outcome, error) {
	if dropped := payload.OrphanedSubnets(rec.Row); len(dropped) > 0 {
		util.WithRow(rec.Line).Warnf("network_subnets_1 is empty; ignoring %s", strings.Join(dropped, ", "))
	}
	rn, err := payload.BuildRemoteNetwork(rec.Row)
	if err != nil {
		return p.invalid(rec, payload.KindRemoteNetwork, rec.Row.Get("network_name"), err)
	}
	return p.apply(ctx, rec.Line, payload.KindRemoteNetwork, sase.EndpointRemoteNetworks, rn)
}

// IKEGateway builds and applies the IKE gateway for rec.
func (p *Processor) IKEGateway(ctx context.Context, rec csvrow.Record) (Outcome, error) {
	gw, err := payload.BuildIKEGateway(rec.Row)
	if err != nil {
		return p.invalid(rec, payload.KindIKEGateway, payload.GatewayName(rec.Row.Get("tunnel_name")), err)
	}
	return p.apply(ctx, rec.Line, payload.KindIKEGateway, sase.EndpointIKEGateways, gw)
}

// IPSecTunnel builds and applies the IPSec tunnel for rec.
func (p *Processor) IPSecTunnel(ctx context.Context, rec csvrow.Record) (Outcome, error) {
	t, err := payload.BuildIPSecTunnel(rec.Row)
	if err != nil {
		return p.invalid(rec, payload.KindIPSecTunnel, rec.Row.Get("tunnel_name"), err)
	}
	return p.apply(ctx, rec.Line, payload.KindIPSecTunnel, sase.EndpointIPSecTunnels, t)
}

func (p *Processor) invalid(rec csvrow.Record, kind, name string, err error) (Outcome, error) {
	fmt.Fprintf(p.out, "%s %s\n", label(kind, name), cli.Red("Invalid: "+err.Error()))
	p.summary.Add(kind, Failed)
	return Failed, err
}

// apply sends obj and prints its outcome. A non-nil error always comes with
// Failed; IsFatal tells the driver whether it may carry on.
func (p *Processor) apply(ctx context.Context, line int, kind, endpoint string, obj sase.Object) (Outcome, error) {
	name := obj.ObjectName()
	fmt.Fprint(p.out, label(kind, name)+" ")

	if p.dryRun {
		body, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return Failed, err
		}
		verb := "create/update"
		if p.del {
			verb = "delete"
		}
		fmt.Fprintf(p.out, "%s\n%s\n", cli.Yellow("Planned ("+verb+")"), cli.Dim(string(body)))
		p.summary.Add(kind, Planned)
		return Planned, nil
	}

	start := time.Now()
	res, err := p.client.Upsert(ctx, endpoint, obj, p.del)
	event := audit.NewEvent(kind, name, endpoint).WithRow(line).WithDuration(time.Since(start))

	if err != nil {
		fmt.Fprintln(p.out, cli.Red("Error"))
		p.record(event.WithError(err))
		p.summary.Add(kind, Failed)
		return Failed, err
	}
	event.WithAction(string(res.Action), res.StatusCode)

	outcome := classify(res, p.del)
	util.WithObject(kind, name).Debugf("%s returned %d: %s", res.Action, res.StatusCode, outcome)
	switch outcome {
	case Created, Updated:
		fmt.Fprintln(p.out, cli.Green(fmt.Sprintf("%s (%d)", outcome, res.StatusCode)))
	case Deleted:
		fmt.Fprintln(p.out, cli.Yellow(fmt.Sprintf("%s (%d)", outcome, res.StatusCode)))
	case Absent:
		fmt.Fprintln(p.out, cli.Dim("Already absent"))
	default:
		apiErr := util.NewAPIError(kind, name, res.StatusCode, strings.TrimSpace(string(res.Raw)))
		fmt.Fprintf(p.out, "%s %s\n", cli.Red(fmt.Sprintf("Failed (%d)", res.StatusCode)), apiErr.Body)
		p.record(event.WithError(apiErr))
		p.summary.Add(kind, Failed)
		return Failed, apiErr
	}

	if res.Action != sase.ActionNone {
		p.record(event.WithSuccess())
	}
	p.summary.Add(kind, outcome)
	return outcome, nil
}

func (p *Processor) record(event *audit.Event) {
	if err := p.audit.Log(event); err != nil {
		util.Warnf("audit: %v", err)
	}
}

// classify maps a write result onto an Outcome.
func classify(res *sase.Result, del bool) Outcome {
	switch {
	case res.Action == sase.ActionNone:
		return Absent
	case res.StatusCode == http.StatusCreated:
		return Created
	case res.StatusCode == http.StatusOK && !del:
		return Updated
	case res.StatusCode == http.StatusOK && del:
		return Deleted
	}
	return Failed
}

func label(kind, name string) string {
	return cli.DotPad(fmt.Sprintf("%s: %q", kind, name), labelWidth)
}

// IsFatal reports whether err should stop every flow, not just the current
// row: the API could not be reached or the run was cancelled.
func IsFatal(err error) bool {
	return errors.Is(err, util.ErrTransport) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
