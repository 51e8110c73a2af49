package transport

import "context"

type ChatType string

const (
	ChatPrivate    ChatType = "private"
	ChatGroup      ChatType = "group"
	ChatSuperGroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
	ChatUnknown    ChatType = ""
)

// IsGroup reports whether the chat qualifies for signal delivery.
func (t ChatType) IsGroup() bool {
	return t == ChatGroup || t == ChatSuperGroup
}

type ChatTarget struct {
	ChatID int64
}

type ChatInfo struct {
	ID   int64
	Type ChatType
}

// URLButton is a single inline link button under a message.
type URLButton struct {
	Text string
	URL  string
}

// PhotoMessage is an image with an HTML caption and an optional inline
// call-to-action button.
type PhotoMessage struct {
	Image   []byte
	Caption string
	Button  *URLButton
}

// Adapter is the messaging-platform capability consumed by the fanout
// pipeline. Implementations must be safe for concurrent use.
type Adapter interface {
	// Chat fetches chat metadata. Errors are non-fatal to callers and
	// cause a per-recipient skip.
	Chat(ctx context.Context, chatID int64) (ChatInfo, error)
	SendPhoto(ctx context.Context, to ChatTarget, msg PhotoMessage) error
}
