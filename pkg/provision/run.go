package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/netops-tools/sasectl/pkg/csvrow"
	"github.com/netops-tools/sasectl/pkg/util"
)

// ErrRowsFailed is returned by RunNetworks when at least one row failed but
// the run otherwise completed.
var ErrRowsFailed = errors.New("one or more rows failed")

type step func(context.Context, csvrow.Record) (Outcome, error)

// RunNetworks applies one remote network per record. A rejected or invalid
// row is reported and skipped; only a fatal error stops the run.
func RunNetworks(ctx context.Context, p *Processor, records []csvrow.Record) error {
	for _, rec := range records {
		if _, err := p.RemoteNetwork(ctx, rec); err != nil {
			if IsFatal(err) {
				return util.NewRowError(rec.Line, err)
			}
			util.WithRow(rec.Line).Debugf("skipping: %v", err)
		}
	}
	if n := p.Summary().Failed(); n > 0 {
		return fmt.Errorf("%w: %d of %d", ErrRowsFailed, n, len(records))
	}
	return nil
}

// RunTunnels applies an IKE gateway and its IPSec tunnel per record. The
// gateway goes first on create/update so the tunnel can reference it, and
// last on delete so it is no longer referenced. Any failure stops the run.
func RunTunnels(ctx context.Context, p *Processor, records []csvrow.Record) error {
	steps := []step{p.IKEGateway, p.IPSecTunnel}
	if p.del {
		steps = []step{p.IPSecTunnel, p.IKEGateway}
	}
	for _, rec := range records {
		for _, s := range steps {
			if _, err := s(ctx, rec); err != nil {
				return util.NewRowError(rec.Line, err)
			}
		}
	}
	return nil
}
