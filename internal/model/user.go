package model

// User is a member of the product as seen by this client: the owner of a
// wishlist, the target of a share, or a search result on the invite
// screen. The client never mutates users.
//
// DisplayName is already resolved by the normalizer through the
// displayName → username → email fallback chain, so it is always
// displayable (possibly "unknown").
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}
