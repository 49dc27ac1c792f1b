package bot

import (
	"context"
	"fmt"

	"go.mau.fi/whatsmeow"
	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
)

// Transport is the contract the router needs from the chat platform. The
// production implementation wraps the whatsmeow client; tests substitute a
// fake.
type Transport interface {
	// Reply sends text to the message's chat, quoting the message.
	Reply(ctx context.Context, msg *Message, text string) error
	// SendSticker sends a webp blob as a sticker.
	SendSticker(ctx context.Context, chat types.JID, webp []byte) error
	// SendVideo sends a video file with a caption.
	SendVideo(ctx context.Context, chat types.JID, data []byte, caption string) error
	// GroupInfo fetches group metadata including the participant list.
	GroupInfo(ctx context.Context, chat types.JID) (*types.GroupInfo, error)
	// RemoveParticipant kicks a user from a group.
	RemoveParticipant(ctx context.Context, chat, user types.JID) error
	// SetAnnounce locks (true) or unlocks (false) a group to admins only.
	SetAnnounce(ctx context.Context, chat types.JID, announce bool) error
	// DownloadQuotedImage fetches the raw bytes of the quoted photo.
	DownloadQuotedImage(ctx context.Context, msg *Message) ([]byte, error)
	// ContactName resolves a display name, empty if unknown.
	ContactName(ctx context.Context, user types.JID) string
	// ProfilePictureURL resolves the profile picture URL, empty if none.
	ProfilePictureURL(ctx context.Context, user types.JID) (string, error)
}

// waTransport adapts the whatsmeow client to the Transport contract.
type waTransport struct {
	cli *whatsmeow.Client
}

var _ Transport = (*waTransport)(nil)

func (t *waTransport) Reply(ctx context.Context, msg *Message, text string) error {
	reply := &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text: proto.String(text),
			ContextInfo: &waE2E.ContextInfo{
				StanzaID:      proto.String(msg.ID),
				Participant:   proto.String(msg.Sender.ToNonAD().String()),
				QuotedMessage: &waE2E.Message{Conversation: proto.String(msg.Text)},
			},
		},
	}
	_, err := t.cli.SendMessage(ctx, msg.Chat, reply)
	return err
}

func (t *waTransport) SendSticker(ctx context.Context, chat types.JID, webp []byte) error {
	resp, err := t.cli.Upload(ctx, webp, whatsmeow.MediaImage)
	if err != nil {
		return fmt.Errorf("failed to upload sticker: %w", err)
	}
	_, err = t.cli.SendMessage(ctx, chat, &waE2E.Message{
		StickerMessage: &waE2E.StickerMessage{
			URL:           proto.String(resp.URL),
			DirectPath:    proto.String(resp.DirectPath),
			MediaKey:      resp.MediaKey,
			FileEncSHA256: resp.FileEncSHA256,
			FileSHA256:    resp.FileSHA256,
			FileLength:    proto.Uint64(resp.FileLength),
			Mimetype:      proto.String("image/webp"),
		},
	})
	return err
}

func (t *waTransport) SendVideo(ctx context.Context, chat types.JID, data []byte, caption string) error {
	resp, err := t.cli.Upload(ctx, data, whatsmeow.MediaVideo)
	if err != nil {
		return fmt.Errorf("failed to upload video: %w", err)
	}
	_, err = t.cli.SendMessage(ctx, chat, &waE2E.Message{
		VideoMessage: &waE2E.VideoMessage{
			URL:           proto.String(resp.URL),
			DirectPath:    proto.String(resp.DirectPath),
			MediaKey:      resp.MediaKey,
			FileEncSHA256: resp.FileEncSHA256,
			FileSHA256:    resp.FileSHA256,
			FileLength:    proto.Uint64(resp.FileLength),
			Mimetype:      proto.String("video/mp4"),
			Caption:       proto.String(caption),
		},
	})
	return err
}

func (t *waTransport) GroupInfo(ctx context.Context, chat types.JID) (*types.GroupInfo, error) {
	return t.cli.GetGroupInfo(ctx, chat)
}

func (t *waTransport) RemoveParticipant(ctx context.Context, chat, user types.JID) error {
	_, err := t.cli.UpdateGroupParticipants(ctx, chat, []types.JID{user}, whatsmeow.ParticipantChangeRemove)
	return err
}

func (t *waTransport) SetAnnounce(ctx context.Context, chat types.JID, announce bool) error {
	return t.cli.SetGroupAnnounce(ctx, chat, announce)
}

func (t *waTransport) DownloadQuotedImage(ctx context.Context, msg *Message) ([]byte, error) {
	if msg.Quoted == nil || msg.Quoted.Image == nil {
		return nil, fmt.Errorf("no quoted image to download")
	}
	return t.cli.Download(ctx, msg.Quoted.Image)
}

func (t *waTransport) ContactName(ctx context.Context, user types.JID) string {
	contact, err := t.cli.Store.Contacts.GetContact(ctx, user.ToNonAD())
	if err != nil || !contact.Found {
		return ""
	}
	if contact.PushName != "" {
		return contact.PushName
	}
	return contact.FullName
}

func (t *waTransport) ProfilePictureURL(ctx context.Context, user types.JID) (string, error) {
	info, err := t.cli.GetProfilePictureInfo(ctx, user.ToNonAD(), &whatsmeow.GetProfilePictureParams{})
	if err != nil || info == nil {
		return "", err
	}
	return info.URL, nil
}
