package application

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/agent-chat-cli/internal/domain"
)

func EncodeAgents(agents []domain.Agent) (string, error) {
	records := make([]agentRecord, 0, len(agents))
	for _, agent := range agents {
		records = append(records, agentRecord{
			ID:               string(agent.ID),
			Name:             agent.Name,
			Role:             agent.Role,
			Goal:             agent.Goal,
			Backstory:        agent.Backstory,
			AvatarColor:      agent.AvatarColor,
			CreatedAt:        formatTime(agent.CreatedAt),
			LastInteractedAt: formatTime(agent.LastInteractedAt),
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode agents: %w", err)
	}

	return string(data), nil
}

func DecodeAgents(text string) ([]domain.Agent, error) {
	var records []agentRecord
	if err := json.Unmarshal([]byte(text), &records); err != nil {
		return nil, corrupted(agentsKey, err)
	}

	agents := make([]domain.Agent, 0, len(records))
	for i, record := range records {
		if record.ID == "" {
			return nil, corrupted(agentsKey, fmt.Errorf("agent %d: missing id", i))
		}

		createdAt, err := parseTime(record.CreatedAt)
		if err != nil {
			return nil, corrupted(agentsKey, fmt.Errorf("agent %s: createdAt: %w", record.ID, err))
		}

		lastInteractedAt := createdAt
		if record.LastInteractedAt != "" {
			lastInteractedAt, err = parseTime(record.LastInteractedAt)
			if err != nil {
				return nil, corrupted(agentsKey, fmt.Errorf("agent %s: lastInteractedAt: %w", record.ID, err))
			}
		}

		agents = append(agents, domain.Agent{
			ID:               domain.AgentID(record.ID),
			Name:             record.Name,
			Role:             record.Role,
			Goal:             record.Goal,
			Backstory:        record.Backstory,
			AvatarColor:      record.AvatarColor,
			CreatedAt:        createdAt,
			LastInteractedAt: lastInteractedAt,
		})
	}

	return agents, nil
}

func EncodeConversations(conversations map[domain.AgentID]domain.Conversation) (string, error) {
	records := make(map[string]conversationRecord, len(conversations))
	for agentID, conversation := range conversations {
		messages := make([]messageRecord, 0, len(conversation.Messages))
		for _, message := range conversation.Messages {
			messages = append(messages, messageRecord{
				ID:        string(message.ID),
				Content:   message.Content,
				Sender:    string(message.Sender),
				Timestamp: formatTime(message.Timestamp),
			})
		}

		records[string(agentID)] = conversationRecord{
			ID:          string(conversation.ID),
			AgentID:     string(conversation.AgentID),
			LastUpdated: formatTime(conversation.LastUpdated),
			Messages:    messages,
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode conversations: %w", err)
	}

	return string(data), nil
}

func DecodeConversations(text string) (map[domain.AgentID]domain.Conversation, error) {
	var records map[string]conversationRecord
	if err := json.Unmarshal([]byte(text), &records); err != nil {
		return nil, corrupted(conversationsKey, err)
	}

	conversations := make(map[domain.AgentID]domain.Conversation, len(records))
	for key, record := range records {
		if record.ID == "" {
			return nil, corrupted(conversationsKey, fmt.Errorf("conversation %s: missing id", key))
		}
		if record.AgentID == "" {
			record.AgentID = key
		}
		if record.AgentID != key {
			return nil, corrupted(conversationsKey, fmt.Errorf("conversation %s: keyed under agent %s", record.AgentID, key))
		}

		lastUpdated, err := parseTime(record.LastUpdated)
		if err != nil {
			return nil, corrupted(conversationsKey, fmt.Errorf("conversation %s: lastUpdated: %w", key, err))
		}

		messages := make([]domain.Message, 0, len(record.Messages))
		for i, m := range record.Messages {
			if m.ID == "" {
				return nil, corrupted(conversationsKey, fmt.Errorf("conversation %s: message %d: missing id", key, i))
			}
			sender := domain.Sender(m.Sender)
			if !sender.Valid() {
				return nil, corrupted(conversationsKey, fmt.Errorf("conversation %s: message %s: unknown sender %q", key, m.ID, m.Sender))
			}
			timestamp, err := parseTime(m.Timestamp)
			if err != nil {
				return nil, corrupted(conversationsKey, fmt.Errorf("conversation %s: message %s: timestamp: %w", key, m.ID, err))
			}

			messages = append(messages, domain.Message{
				ID:        domain.MessageID(m.ID),
				Content:   m.Content,
				Sender:    sender,
				Timestamp: timestamp,
			})
		}

		conversations[domain.AgentID(key)] = domain.Conversation{
			ID:          domain.ConversationID(record.ID),
			AgentID:     domain.AgentID(record.AgentID),
			Messages:    messages,
			LastUpdated: lastUpdated,
		}
	}

	return conversations, nil
}

func corrupted(key string, err error) error {
	return fmt.Errorf("decode %s: %w: %w", key, domain.ErrCorruptedStore, err)
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(isoTimeLayout)
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, err
	}

	return parsed.UTC(), nil
}
