package block

import (
	"context"
	"fmt"

	"github.com/roach88/lscript/internal/ctxlog"
	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/provider"
)

// challenge names the kind of challenge in log messages ("reCaptcha").
type challenge string

// solveChallenge runs the balance pre-check (unless bypassed) and one
// dispatch against the configured provider. Only configuration and balance
// problems come back as errors.
func solveChallenge(ctx context.Context, ec *execution.Context, what challenge, params provider.Params) (provider.Result, error) {
	cfg := ec.Config()
	creds := cfg.CredentialsFor(cfg.Provider)

	if !cfg.BypassBalanceCheck {
		if err := ec.Providers().CheckBalance(ctx, cfg.Provider, creds, params.Capability, cfg.Timeout); err != nil {
			return provider.Result{}, err
		}
	}

	ec.Log(fmt.Sprintf("Solving %s...", what), execution.SeverityInfo)

	res, err := ec.Providers().Solve(ctx, cfg.Provider, creds, params, cfg.Timeout)
	if err != nil {
		return provider.Result{}, err
	}
	if !res.Solved() {
		ctxlog.FromContext(ctx).Debug("provider returned no solution",
			"provider", cfg.Provider,
			"capability", params.Capability,
			"reason", res.Reason,
			"error", res.Err)
	}
	return res, nil
}

// reportSolution logs the outcome and assigns the output variable. An empty
// token is still assigned when a variable is named.
func reportSolution(ec *execution.Context, what challenge, res provider.Result, variable string) {
	if res.Solved() {
		ec.Log("Successfully got the response: "+res.Token, execution.SeverityInfo)
	} else {
		ec.Log(fmt.Sprintf("Couldn't get a %s response from the service", what), execution.SeverityWarn)
	}
	if variable != "" {
		ec.Log("Response stored in variable: "+variable, execution.SeverityInfo)
		ec.Vars().Set(variable, res.Token)
	}
}
