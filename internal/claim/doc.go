// Package claim runs the watch-and-claim loop.
//
// An Orchestrator polls a Capturer for chat text. Each cycle the text is
// classified, a time range is extracted and checked against the schedule,
// and when the slot is free the Orchestrator sends a reply and books the
// slot. The session then moves from PhaseWaiting to PhaseDone and the loop
// stops; a run never claims twice.
//
// Example usage:
//
//	orch, err := claim.New(claim.DefaultConfig(), claim.Deps{
//	    Capturer: source,
//	    Schedule: cal,
//	    Writer:   cal,
//	    Replier:  signalClient,
//	})
//	if err != nil {
//	    return err
//	}
//	session, err := orch.Run(ctx)
package claim
