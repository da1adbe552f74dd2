// Package model declares the persistent entities served by the GraphQL API.
// All rows are read-only for the lifetime of a query; resolvers never write.
package model

// MemberType is one of a small, fixed set of membership tiers referenced by
// profiles. The id set is closed at deployment time.
type MemberType struct {
	ID                 string  `json:"id"`
	Discount           float64 `json:"discount"`
	PostsLimitPerMonth int     `json:"postsLimitPerMonth"`
}

// User is the focal entity of the graph. Subscription edges connect users to
// users in both directions.
type User struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// Post belongs to exactly one author. AuthorID always references an existing
// user; a dangling reference is a data-integrity error, not a null.
type Post struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	AuthorID string `json:"authorId"`
}

// Profile is 1:1 with its owning user and references exactly one member type.
type Profile struct {
	ID           string `json:"id"`
	IsMale       bool   `json:"isMale"`
	YearOfBirth  int    `json:"yearOfBirth"`
	UserID       string `json:"userId"`
	MemberTypeID string `json:"memberTypeId"`
}

// Subscription is a directed edge: SubscriberID follows AuthorID.
// Self-edges are forbidden and edges are unique per ordered pair; the presence
// of an edge says nothing about the reverse direction.
type Subscription struct {
	SubscriberID string `json:"subscriberId"`
	AuthorID     string `json:"authorId"`
}
