// Package webtests contains the browser test cases for the demo application and the T type they
// are written against.
//
// RunTestSuite starts the application once, runs every case against each requested browser in
// turn, and stops the application again however the cases turn out.
package webtests
