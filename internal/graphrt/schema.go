package graphrt

import (
	schema "github.com/usergraph-io/usergraph/internal/schema"
)

// NewSchema declares the API's type registry. The declaration is validated at
// build time, so a schema returned from here is safe to resolve against
// without per-request checks.
//
// Fields that read straight off the parent value are synchronous; fields whose
// value lives in another collection are async and carry the relation binding
// the runtime batches on.
func NewSchema() (*schema.Schema, error) {
	id := schema.NonNullType(schema.NamedType("ID"))
	str := schema.NonNullType(schema.NamedType("String"))
	flt := schema.NonNullType(schema.NamedType("Float"))
	intt := schema.NonNullType(schema.NamedType("Int"))
	boolt := schema.NonNullType(schema.NamedType("Boolean"))

	userList := schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("User"))))
	postList := schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("Post"))))
	profileList := schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("Profile"))))
	memberTypeList := schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("MemberType"))))

	b := schema.NewBuilder().QueryType("Query")

	b.Object("MemberType", "A subscription tier with its limits.",
		schema.FieldDef("id", id),
		schema.FieldDef("discount", flt),
		schema.FieldDef("postsLimitPerMonth", intt),
	)

	b.Object("Post", "A post written by a user.",
		schema.FieldDef("id", id),
		schema.FieldDef("title", str),
		schema.FieldDef("content", str),
		schema.AsyncField("author", schema.NonNullType(schema.NamedType("User")),
			&schema.Relation{Collection: "users", ForeignKey: "id"}),
	)

	b.Object("Profile", "A user's profile and membership tier.",
		schema.FieldDef("id", id),
		schema.FieldDef("isMale", boolt),
		schema.FieldDef("yearOfBirth", intt),
		schema.AsyncField("user", schema.NonNullType(schema.NamedType("User")),
			&schema.Relation{Collection: "users", ForeignKey: "id"}),
		schema.AsyncField("memberType", schema.NonNullType(schema.NamedType("MemberType")),
			&schema.Relation{Collection: "memberTypes", ForeignKey: "id"}),
	)

	b.Object("User", "A member of the network.",
		schema.FieldDef("id", id),
		schema.FieldDef("name", str),
		schema.FieldDef("balance", flt),
		schema.AsyncField("profile", schema.NamedType("Profile"),
			&schema.Relation{Collection: "profiles", ForeignKey: "userId"}),
		schema.AsyncField("posts", postList,
			&schema.Relation{Collection: "posts", ForeignKey: "authorId"}),
		schema.AsyncField("userSubscribedTo", userList,
			&schema.Relation{Collection: "subscriptions", ForeignKey: "subscriberId"}),
		schema.AsyncField("subscribedToUser", userList,
			&schema.Relation{Collection: "subscriptions", ForeignKey: "authorId"}),
	)

	b.Object("Query", "",
		schema.AsyncField("user", schema.NamedType("User"),
			&schema.Relation{Collection: "users"}, schema.Arg("id", id)),
		schema.AsyncField("users", userList,
			&schema.Relation{Collection: "users"}),
		schema.AsyncField("post", schema.NamedType("Post"),
			&schema.Relation{Collection: "posts"}, schema.Arg("id", id)),
		schema.AsyncField("posts", postList,
			&schema.Relation{Collection: "posts"}),
		schema.AsyncField("profile", schema.NamedType("Profile"),
			&schema.Relation{Collection: "profiles"}, schema.Arg("id", id)),
		schema.AsyncField("profiles", profileList,
			&schema.Relation{Collection: "profiles"}),
		schema.AsyncField("memberType", schema.NamedType("MemberType"),
			&schema.Relation{Collection: "memberTypes"}, schema.Arg("id", id)),
		schema.AsyncField("memberTypes", memberTypeList,
			&schema.Relation{Collection: "memberTypes"}),
	)

	return b.Build()
}

// MustSchema is NewSchema for startup paths.
func MustSchema() *schema.Schema {
	s, err := NewSchema()
	if err != nil {
		panic(err)
	}
	return s
}
