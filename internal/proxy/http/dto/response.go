package dto

// EncryptURLResponse carries the token minted for a destination URL.
type EncryptURLResponse struct {
	Encrypted string `json:"encrypted"`
}

// SearchResponse carries the proxy route for a resolved search query.
type SearchResponse struct {
	URL string `json:"url"`
}
