package db

// Token represents the user's credential for the accounting API.
// CurrentDivision is the division the provider reported for the signed-in
// user; it is filled in after authentication and may be empty.
type Token struct {
	AccessToken     string `json:"access_token,omitempty"`
	RefreshToken    string `json:"refresh_token,omitempty"`
	ExpiresAt       string `json:"expires_at,omitempty"`
	CurrentDivision string `json:"current_division,omitempty"`
}
