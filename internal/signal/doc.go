// Package signal reads and answers a group chat through signal-cli.
//
// It is the messaging alternative to screen capture: Capturer drains the
// messages queued for the linked account and returns the bodies posted to the
// watched group, and Replier posts the claim reply back to the same group (or
// to a single recipient).
//
// The client wraps the signal-cli command-line tool and requires signal-cli to be
// installed and configured on the system. Users must register or link their
// Signal account with signal-cli before using this package.
//
// Prerequisites:
//  1. Install signal-cli: https://github.com/AsamK/signal-cli
//  2. Link your Signal account:
//     signal-cli link -n shiftclaim
//
// Example usage:
//
//	client, err := signal.NewClient("+15551234567")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	capturer := signal.NewCapturer(client, "TA Team")
//	replier := signal.NewReplier(client, "TA Team", "")
package signal
