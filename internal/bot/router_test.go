package bot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"

	"github.com/enessquik/wpvdbot/internal/access"
	"github.com/enessquik/wpvdbot/internal/backup"
	"github.com/enessquik/wpvdbot/internal/sticker"
	"github.com/enessquik/wpvdbot/internal/store"
)

const ownerRaw = "905551234567@s.whatsapp.net"

var (
	ownerJID = types.NewJID("905551234567", types.DefaultUserServer)
	userJID  = types.NewJID("905559876543", types.DefaultUserServer)
	groupJID = types.NewJID("120363401359968775", types.GroupServer)
)

type sentVideo struct {
	caption string
	size    int
}

type fakeTransport struct {
	replies   []string
	stickers  [][]byte
	videos    []sentVideo
	removed   []types.JID
	announced []bool

	groupInfo *types.GroupInfo
	groupErr  error
}

func (f *fakeTransport) Reply(ctx context.Context, msg *Message, text string) error {
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeTransport) SendSticker(ctx context.Context, chat types.JID, webp []byte) error {
	f.stickers = append(f.stickers, webp)
	return nil
}

func (f *fakeTransport) SendVideo(ctx context.Context, chat types.JID, data []byte, caption string) error {
	f.videos = append(f.videos, sentVideo{caption: caption, size: len(data)})
	return nil
}

func (f *fakeTransport) GroupInfo(ctx context.Context, chat types.JID) (*types.GroupInfo, error) {
	return f.groupInfo, f.groupErr
}

func (f *fakeTransport) RemoveParticipant(ctx context.Context, chat, user types.JID) error {
	f.removed = append(f.removed, user)
	return nil
}

func (f *fakeTransport) SetAnnounce(ctx context.Context, chat types.JID, announce bool) error {
	f.announced = append(f.announced, announce)
	return nil
}

func (f *fakeTransport) DownloadQuotedImage(ctx context.Context, msg *Message) ([]byte, error) {
	return []byte("jpeg-bytes"), nil
}

func (f *fakeTransport) ContactName(ctx context.Context, user types.JID) string { return "Ahmet" }

func (f *fakeTransport) ProfilePictureURL(ctx context.Context, user types.JID) (string, error) {
	return "", nil
}

type fakeFetcher struct {
	dir      string
	fileSize int64
	err      error
	calls    int
	lastPath string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, platform string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(f.dir, platform+"_test.mp4")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err = file.Truncate(f.fileSize); err != nil {
		return "", err
	}
	file.Close()
	f.lastPath = path
	return path, nil
}

type fakeArchiver struct {
	path  string
	err   error
	calls int
}

func (f *fakeArchiver) Run() (string, error) {
	f.calls++
	return f.path, f.err
}

type fakeRenderer struct{}

func (fakeRenderer) RenderImage(ctx context.Context, img []byte) ([]byte, error) {
	return []byte("webp-image"), nil
}

func (fakeRenderer) RenderQuote(ctx context.Context, card sticker.QuoteCard) ([]byte, error) {
	return []byte("webp-quote"), nil
}

type routerFixture struct {
	router    *Router
	transport *fakeTransport
	fetcher   *fakeFetcher
	archiver  *fakeArchiver
	settings  *store.Settings
	blacklist *store.Blacklist
}

func newFixture(t *testing.T) *routerFixture {
	t.Helper()
	dir := t.TempDir()
	settings := store.LoadSettings(zerolog.Nop(), filepath.Join(dir, "settings.json"))
	blacklist := store.LoadBlacklist(zerolog.Nop(), filepath.Join(dir, "blacklist.json"), access.CanonicalString)
	transport := &fakeTransport{}
	fetcher := &fakeFetcher{dir: dir, fileSize: 1 << 20}
	archiver := &fakeArchiver{path: filepath.Join(dir, "backup-2026-08-31.zip")}
	router := NewRouter(
		zerolog.Nop(),
		transport,
		settings,
		blacklist,
		access.NewRoster(settings, blacklist, ownerRaw, nil),
		fetcher,
		fakeRenderer{},
		archiver,
		nil,
	)
	return &routerFixture{
		router:    router,
		transport: transport,
		fetcher:   fetcher,
		archiver:  archiver,
		settings:  settings,
		blacklist: blacklist,
	}
}

func textMsg(id, text string, sender, chat types.JID, isGroup bool) *Message {
	return &Message{
		ID:        id,
		Chat:      chat,
		Sender:    sender,
		IsGroup:   isGroup,
		Text:      text,
		Kind:      KindText,
		Timestamp: time.Now(),
	}
}

func TestRouter_Handle_DuplicateIDProcessedOnce(t *testing.T) {
	f := newFixture(t)
	msg := textMsg("MSG1", "/maksimumdosyasınırı 60", ownerJID, ownerJID, false)

	f.router.Handle(context.Background(), msg)
	f.router.Handle(context.Background(), msg)

	if len(f.transport.replies) != 1 {
		t.Fatalf("got %d replies, want 1: %v", len(f.transport.replies), f.transport.replies)
	}
	if got := f.settings.MaxFileSizeMB(); got != 60 {
		t.Errorf("max file size = %d, want 60", got)
	}
}

func TestRouter_Handle_BlacklistedChatSilent(t *testing.T) {
	f := newFixture(t)
	f.blacklist.Add(groupJID.String())

	f.router.Handle(context.Background(), textMsg("MSG1", "youtu.be/dQw4w9WgXcQ", userJID, groupJID, true))

	if f.fetcher.calls != 0 {
		t.Error("blacklisted chat triggered a download")
	}
	if len(f.transport.replies) != 0 {
		t.Errorf("blacklisted chat got replies: %v", f.transport.replies)
	}
}

func TestRouter_Handle_StatusBroadcastSilent(t *testing.T) {
	f := newFixture(t)

	f.router.Handle(context.Background(), textMsg("MSG1", "/yedekle", ownerJID, types.StatusBroadcastJID, false))

	if f.archiver.calls != 0 || len(f.transport.replies) != 0 {
		t.Error("status broadcast message was processed")
	}
}

func TestRouter_Handle_MaxSize_NonAdminDenied(t *testing.T) {
	f := newFixture(t)

	f.router.Handle(context.Background(), textMsg("MSG1", "/maksimumdosyasınırı 100", userJID, userJID, false))

	if len(f.transport.replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(f.transport.replies))
	}
	if !strings.Contains(f.transport.replies[0], "bot yöneticileri") {
		t.Errorf("reply = %q, want denial", f.transport.replies[0])
	}
	if got := f.settings.MaxFileSizeMB(); got != store.DefaultMaxFileSizeMB {
		t.Errorf("denied command changed the setting to %d", got)
	}
}

func TestRouter_Handle_MaxSize_RejectsZero(t *testing.T) {
	f := newFixture(t)

	f.router.Handle(context.Background(), textMsg("MSG1", "/maksimumdosyasınırı 0", ownerJID, ownerJID, false))

	if len(f.transport.replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(f.transport.replies))
	}
	if !strings.Contains(f.transport.replies[0], "pozitif") {
		t.Errorf("reply = %q, want validation message", f.transport.replies[0])
	}
	if got := f.settings.MaxFileSizeMB(); got != store.DefaultMaxFileSizeMB {
		t.Errorf("rejected value changed the setting to %d", got)
	}
}

func TestRouter_Handle_Kick_DirectChatRejected(t *testing.T) {
	f := newFixture(t)

	f.router.Handle(context.Background(), textMsg("MSG1", "/kick 5551234567", ownerJID, ownerJID, false))

	if len(f.transport.removed) != 0 {
		t.Error("kick ran outside a group chat")
	}
	if len(f.transport.replies) != 1 || !strings.Contains(f.transport.replies[0], "grup sohbetlerinde") {
		t.Errorf("replies = %v, want the group-only message", f.transport.replies)
	}
}

func TestRouter_Handle_Kick_GroupAdminNormalizesNumber(t *testing.T) {
	f := newFixture(t)
	f.transport.groupInfo = &types.GroupInfo{
		Participants: []types.GroupParticipant{
			{JID: userJID, IsAdmin: true},
		},
	}

	f.router.Handle(context.Background(), textMsg("MSG1", "/kick 555 987 65 43", userJID, groupJID, true))

	if len(f.transport.removed) != 1 {
		t.Fatalf("removed %d participants, want 1", len(f.transport.removed))
	}
	want := types.NewJID("905559876543", types.DefaultUserServer)
	if f.transport.removed[0] != want {
		t.Errorf("removed %s, want %s", f.transport.removed[0], want)
	}
}

func TestRouter_Handle_Kick_NonAdminDenied(t *testing.T) {
	f := newFixture(t)
	f.transport.groupInfo = &types.GroupInfo{
		Participants: []types.GroupParticipant{
			{JID: userJID}, // present but not admin
		},
	}

	f.router.Handle(context.Background(), textMsg("MSG1", "/kick 5559876543", userJID, groupJID, true))

	if len(f.transport.removed) != 0 {
		t.Error("non-admin kick removed a participant")
	}
	if len(f.transport.replies) != 1 || !strings.Contains(f.transport.replies[0], "yöneticileri") {
		t.Errorf("replies = %v, want denial", f.transport.replies)
	}
}

func TestRouter_Handle_Download_SendsUnderLimit(t *testing.T) {
	f := newFixture(t)
	f.fetcher.fileSize = 1 << 20

	f.router.Handle(context.Background(), textMsg("MSG1", "youtu.be/dQw4w9WgXcQ", userJID, groupJID, true))

	if len(f.transport.replies) != 1 || f.transport.replies[0] != "🎬 Video indiriliyor..." {
		t.Fatalf("replies = %v, want the in-progress notice", f.transport.replies)
	}
	if len(f.transport.videos) != 1 {
		t.Fatalf("sent %d videos, want 1", len(f.transport.videos))
	}
	if f.transport.videos[0].caption != "✅ Video indirildi!" {
		t.Errorf("caption = %q", f.transport.videos[0].caption)
	}
	if _, err := os.Stat(f.fetcher.lastPath); !os.IsNotExist(err) {
		t.Error("temporary file was not removed after delivery")
	}
}

func TestRouter_Handle_Download_RejectsOverLimit(t *testing.T) {
	f := newFixture(t)
	f.fetcher.fileSize = 51 << 20 // limit stays at the 50MB default

	f.router.Handle(context.Background(), textMsg("MSG1", "youtu.be/dQw4w9WgXcQ", userJID, groupJID, true))

	if len(f.transport.videos) != 0 {
		t.Fatal("oversize video was sent")
	}
	if len(f.transport.replies) != 2 {
		t.Fatalf("got %d replies, want 2: %v", len(f.transport.replies), f.transport.replies)
	}
	if !strings.Contains(f.transport.replies[1], "51.0MB") || !strings.Contains(f.transport.replies[1], "50MB") {
		t.Errorf("rejection reply = %q, want measured size and limit", f.transport.replies[1])
	}
	if _, err := os.Stat(f.fetcher.lastPath); !os.IsNotExist(err) {
		t.Error("temporary file was not removed after rejection")
	}
}

func TestRouter_Handle_Download_FailureNamesPlatform(t *testing.T) {
	f := newFixture(t)
	f.fetcher.err = errors.New("yt-dlp: exit status 1")

	f.router.Handle(context.Background(), textMsg("MSG1", "vimeo.com/76979871", userJID, groupJID, true))

	if len(f.transport.replies) != 2 {
		t.Fatalf("got %d replies, want 2: %v", len(f.transport.replies), f.transport.replies)
	}
	if !strings.Contains(f.transport.replies[1], "vimeo") {
		t.Errorf("failure reply = %q, want the platform name", f.transport.replies[1])
	}
}

func TestRouter_Handle_Blacklist_AddRemoveRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.router.Handle(ctx, textMsg("MSG1", "/blacklist "+groupJID.String(), ownerJID, ownerJID, false))
	if !f.blacklist.Contains(groupJID.String()) {
		t.Fatal("chat was not blacklisted")
	}

	f.router.Handle(ctx, textMsg("MSG2", "youtu.be/dQw4w9WgXcQ", userJID, groupJID, true))
	if f.fetcher.calls != 0 {
		t.Error("blacklisted chat triggered a download")
	}

	f.router.Handle(ctx, textMsg("MSG3", "/unblacklist "+groupJID.String(), ownerJID, ownerJID, false))
	if f.blacklist.Contains(groupJID.String()) {
		t.Fatal("chat was not removed from the blacklist")
	}

	f.router.Handle(ctx, textMsg("MSG4", "youtu.be/dQw4w9WgXcQ", userJID, groupJID, true))
	if f.fetcher.calls != 1 {
		t.Error("unblacklisted chat did not process the link")
	}
}

func TestRouter_Handle_Backup_AlreadyRunning(t *testing.T) {
	f := newFixture(t)
	f.archiver.err = backup.ErrBackupRunning

	f.router.Handle(context.Background(), textMsg("MSG1", "/yedekle", ownerJID, ownerJID, false))

	if len(f.transport.replies) != 1 || f.transport.replies[0] != "❌ Yedekleme zaten devam ediyor." {
		t.Errorf("replies = %v, want the in-progress rejection", f.transport.replies)
	}
}

func TestRouter_Handle_Backup_SingleResultReply(t *testing.T) {
	f := newFixture(t)

	f.router.Handle(context.Background(), textMsg("MSG1", "/yedekle", ownerJID, ownerJID, false))

	if f.archiver.calls != 1 {
		t.Fatalf("archiver ran %d times, want 1", f.archiver.calls)
	}
	if len(f.transport.replies) != 1 || !strings.Contains(f.transport.replies[0], "✅ Yedek tamamlandı") {
		t.Errorf("replies = %v, want a single result reply", f.transport.replies)
	}
}

func TestRouter_Handle_QuoteSticker(t *testing.T) {
	f := newFixture(t)
	msg := textMsg("MSG1", "/qm", userJID, groupJID, true)
	msg.Quoted = &QuotedMessage{ID: "Q1", Sender: ownerJID, Text: "alıntılanan mesaj"}

	f.router.Handle(context.Background(), msg)

	if len(f.transport.stickers) != 1 || string(f.transport.stickers[0]) != "webp-quote" {
		t.Errorf("stickers = %v, want the rendered quote", f.transport.stickers)
	}
}

func TestRouter_Handle_QuoteSticker_NothingQuoted(t *testing.T) {
	f := newFixture(t)

	f.router.Handle(context.Background(), textMsg("MSG1", "/qm", userJID, groupJID, true))

	if len(f.transport.stickers) != 0 {
		t.Error("sticker sent without a quoted message")
	}
	if len(f.transport.replies) != 1 || !strings.Contains(f.transport.replies[0], "alıntılayıp") {
		t.Errorf("replies = %v, want usage hint", f.transport.replies)
	}
}

func TestRouter_Handle_ImageSticker(t *testing.T) {
	f := newFixture(t)
	msg := textMsg("MSG1", "/q", userJID, groupJID, true)
	msg.Quoted = &QuotedMessage{ID: "Q1", Sender: ownerJID, Image: &waE2E.ImageMessage{}}

	f.router.Handle(context.Background(), msg)

	if len(f.transport.stickers) != 1 || string(f.transport.stickers[0]) != "webp-image" {
		t.Errorf("stickers = %v, want the rendered image", f.transport.stickers)
	}
}

func TestRouter_Handle_LockUnlock(t *testing.T) {
	f := newFixture(t)
	f.transport.groupInfo = &types.GroupInfo{
		Participants: []types.GroupParticipant{
			{JID: userJID, IsSuperAdmin: true},
		},
	}
	ctx := context.Background()

	f.router.Handle(ctx, textMsg("MSG1", "/lockall", userJID, groupJID, true))
	f.router.Handle(ctx, textMsg("MSG2", "/kilitaç", userJID, groupJID, true))

	want := []bool{true, false}
	if len(f.transport.announced) != 2 || f.transport.announced[0] != want[0] || f.transport.announced[1] != want[1] {
		t.Errorf("announce calls = %v, want %v", f.transport.announced, want)
	}
}

func TestRouter_Handle_EmptyTextIgnored(t *testing.T) {
	f := newFixture(t)

	f.router.Handle(context.Background(), textMsg("MSG1", "   ", userJID, groupJID, true))

	if len(f.transport.replies) != 0 || f.fetcher.calls != 0 {
		t.Error("blank message produced activity")
	}
}
