package internal

// PlayerRef is a player's entry inside a room. It is a copy of the user
// identity at join time plus the points earned in this room.
type PlayerRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

func NewPlayerRef(u User) PlayerRef {
	return PlayerRef{
		ID:       u.ID,
		Username: u.Username,
	}
}
