// Package servicedef defines the contract between the demo application and the browser tests:
// the element identifiers and text values the tests depend on, the JSON bodies of the
// application's API, and the format of the report written by the test runner.
//
// The DOM contract is the one interface the tests rely on, so it must not change without the
// tests changing with it.
package servicedef

const (
	// DefaultAppAddress is the well-known local address the application listens on.
	DefaultAppAddress = "localhost:5000"

	// ButtonID is the id of the button the tests click.
	ButtonID = "clickmeButton"

	// HeaderID is the id of the element whose text shows the result of clicking.
	HeaderID = "displayHeader"

	// InitialHeaderText is shown in the header until the button is clicked.
	InitialHeaderText = "Click the button"

	// ClickedText is shown in the header once a click has been processed.
	ClickedText = "Button clicked"
)

const (
	HealthPath = "/health"
	ClicksPath = "/api/clicks"
)

// ClickResponse is the body returned by a POST to ClicksPath.
type ClickResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// HealthResponse is the body returned by a GET to HealthPath.
type HealthResponse struct {
	Status string `json:"status"`
	Clicks int    `json:"clicks"`
}
