// Package atlas submits prompts to the Atlas chat web interface through a
// browser that is already running with a remote-debugging endpoint.
//
// There is no push signal telling a caller that the assistant has finished
// answering, so a run is a sequence of bounded waits:
//
//  1. Find the prompt input among several selector variants
//  2. Fill it and submit (send button, or Enter as a fallback)
//  3. Wait for the assistant message count to grow past a baseline
//  4. Poll the last assistant message until its text stops changing
//
// Every wait has an upper bound derived from the request's timeout and the
// Policy. Steps whose signals are unreliable (document ready, submission,
// the reply-count wait, page close) degrade instead of failing the run.
//
// All failures surface as *UnavailableError, which matches ErrUnavailable
// with errors.Is. Callers decide whether to attempt a run at all with
// CanUse.
//
// # Example Usage
//
//	runner := atlas.NewRunner(section, lifecycle, controller, logger)
//	res, err := runner.RunPrompt(ctx, atlas.Request{
//	    Prompt:  "Summarize this thread",
//	    Timeout: 90 * time.Second,
//	})
//	if errors.Is(err, atlas.ErrUnavailable) {
//	    // fall back to another provider
//	}
package atlas
