package types

// StatsResponse carries the aggregate win/loss figures shown in the header.
type StatsResponse struct {
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Total   int `json:"total"`
	WinRate int `json:"winRate"`
}

// SignatureResponse is a signed upload ticket authorizing a direct
// client-to-media-host upload. The optional fields are echoed back only when
// they were part of the signed parameter set.
type SignatureResponse struct {
	CloudName  string `json:"cloudName"`
	APIKey     string `json:"apiKey"`
	Timestamp  int64  `json:"timestamp"`
	Folder     string `json:"folder"`
	Signature  string `json:"signature"`
	PublicID   string `json:"publicId,omitempty"`
	Overwrite  bool   `json:"overwrite,omitempty"`
	Invalidate bool   `json:"invalidate,omitempty"`
}

// ThemeResponse carries the persisted light/dark preference.
type ThemeResponse struct {
	Mode string `json:"mode"`
}
