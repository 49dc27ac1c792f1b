package bot

import (
	"time"

	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// Message kinds.
const (
	KindText  = "text"
	KindImage = "image"
	KindVideo = "video"
	KindOther = "other"
)

// Message is an immutable snapshot of one inbound event. It is consumed
// synchronously by the router and never persisted; only the log record
// derived from it is.
type Message struct {
	ID        string
	Chat      types.JID
	Sender    types.JID
	IsGroup   bool
	Text      string
	Kind      string
	Timestamp time.Time
	Quoted    *QuotedMessage // nil when nothing was quoted
}

// QuotedMessage carries the parts of a quoted message the handlers need.
type QuotedMessage struct {
	ID     string
	Sender types.JID
	Text   string
	Image  *waE2E.ImageMessage // set when the quoted message is a photo
}

// newMessage builds a Message from a transport event. Returns nil for
// events without any usable content.
func newMessage(evt *events.Message) *Message {
	content := evt.Message
	if content == nil {
		return nil
	}
	msg := &Message{
		ID:        evt.Info.ID,
		Chat:      evt.Info.Chat,
		Sender:    evt.Info.Sender,
		IsGroup:   evt.Info.IsGroup,
		Timestamp: evt.Info.Timestamp,
	}

	var ci *waE2E.ContextInfo
	switch {
	case content.GetImageMessage() != nil:
		msg.Kind = KindImage
		msg.Text = content.GetImageMessage().GetCaption()
		ci = content.GetImageMessage().GetContextInfo()
	case content.GetVideoMessage() != nil:
		msg.Kind = KindVideo
		msg.Text = content.GetVideoMessage().GetCaption()
		ci = content.GetVideoMessage().GetContextInfo()
	case content.GetExtendedTextMessage() != nil:
		msg.Kind = KindText
		msg.Text = content.GetExtendedTextMessage().GetText()
		ci = content.GetExtendedTextMessage().GetContextInfo()
	case content.GetConversation() != "":
		msg.Kind = KindText
		msg.Text = content.GetConversation()
	default:
		msg.Kind = KindOther
	}

	if quoted := ci.GetQuotedMessage(); quoted != nil {
		q := &QuotedMessage{
			ID:    ci.GetStanzaID(),
			Text:  quoted.GetConversation(),
			Image: quoted.GetImageMessage(),
		}
		if text := quoted.GetExtendedTextMessage().GetText(); text != "" {
			q.Text = text
		}
		if sender, err := types.ParseJID(ci.GetParticipant()); err == nil {
			q.Sender = sender
		}
		msg.Quoted = q
	}
	return msg
}
