package record

// Actor is the acting identity threaded through every write.
type Actor struct {
	UserID        int64
	Authenticated bool
}

// OwnerTable holds the accounts that owner_id points at.
const OwnerTable = "users"

// Anonymous is used by writes that have no resolvable caller.
var Anonymous = Actor{}

func UserActor(id int64) Actor {
	return Actor{UserID: id, Authenticated: id > 0}
}

// ResolveOwner picks the owner stamped on a write. An authenticated actor
// always wins over the supplied value; the default owner is the last resort.
func ResolveOwner(supplied int64, actor Actor, defaultOwner int64) int64 {
	if actor.Authenticated && actor.UserID > 0 {
		return actor.UserID
	}
	if supplied > 0 {
		return supplied
	}
	return defaultOwner
}
