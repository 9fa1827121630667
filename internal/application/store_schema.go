package application

const (
	agentsKey        = "agents"
	conversationsKey = "conversations"

	// isoTimeLayout matches the millisecond ISO-8601 form browsers write.
	isoTimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

type agentRecord struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	Goal             string `json:"goal"`
	Backstory        string `json:"backstory,omitempty"`
	AvatarColor      string `json:"avatarColor"`
	CreatedAt        string `json:"createdAt"`
	LastInteractedAt string `json:"lastInteractedAt,omitempty"`
}

type conversationRecord struct {
	ID          string          `json:"id"`
	AgentID     string          `json:"agentId"`
	LastUpdated string          `json:"lastUpdated"`
	Messages    []messageRecord `json:"messages"`
}

type messageRecord struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
}
