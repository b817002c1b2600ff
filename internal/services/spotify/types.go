package spotify

// Raw Web API response shapes. Only the fields the quiz uses are decoded.

type rawArtist struct {
	Name string `json:"name"`
}

type rawTrack struct {
	Name       string      `json:"name"`
	Artists    []rawArtist `json:"artists"`
	PreviewURL *string     `json:"preview_url"`
}

type topTracksResponse struct {
	Items []rawTrack `json:"items"`
}

type playlistItem struct {
	Track *rawTrack `json:"track"`
}

type playlistTracksResponse struct {
	Items []playlistItem `json:"items"`
}

type currentUserResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
