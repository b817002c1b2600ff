// Package layout holds the page chrome shared by every HTML page.
package layout

// FlashMessage is a one-shot notice shown at the top of the next page
type FlashMessage struct {
	Type    string // "success", "error" or "info"
	Message string
}

// PageData is the data every page needs for its chrome
type PageData struct {
	Title string

	// DisplayName is the name of the session's user, empty for a new visitor
	DisplayName string
	// LoggedIn is true when the session holds a Spotify access token
	LoggedIn bool

	Flash *FlashMessage
}
