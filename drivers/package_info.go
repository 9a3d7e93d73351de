// Package drivers creates and controls browser sessions.
//
// Each browser kind is driven by a different automation library: Chrome through go-rod, Firefox
// through Playwright, Internet Explorer through Selenium and IEDriverServer, and Edge through
// chromedp. Callers see only the Session interface. A Factory hands out sessions, and errors
// coming out of a session are classified with the kinds defined in the framework package.
package drivers
