// Package browser connects the Atlas runner to real browsers through
// Playwright over the Chrome DevTools Protocol.
//
// # Architecture
//
// The package provides the two collaborators atlas.Runner needs:
//
//  1. Lifecycle: probes a profile's /json/version endpoint and, for profiles
//     with an executable, launches the browser with --remote-debugging-port
//  2. Controller: attaches with ConnectOverCDP, opens one tab per prompt in
//     the browser's default context, and hands the runner a page adapter
//
// # Connection Lifecycle
//
//  1. Attach: the first OpenPage for a CDP URL connects and caches the
//     connection; a dropped connection is re-established on next use
//  2. Use: GetPage returns an atlas.Page backed by Playwright locators
//  3. Close: ClosePage closes only the tab; the attached browser keeps
//     running with its sign-in state
//
// # Example
//
//	ctrl := browser.NewController(log)
//	defer ctrl.Shutdown()
//	lc := browser.NewLifecycle(lookup, log)
//	runner := atlas.NewRunner(profiles, lc, ctrl, log)
package browser
