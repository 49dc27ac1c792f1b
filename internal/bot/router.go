package bot

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/types"

	"github.com/enessquik/wpvdbot/internal/access"
	"github.com/enessquik/wpvdbot/internal/linkdetect"
	"github.com/enessquik/wpvdbot/internal/msglog"
	"github.com/enessquik/wpvdbot/internal/sticker"
	"github.com/enessquik/wpvdbot/internal/store"
)

// Fetcher is the download collaborator contract.
type Fetcher interface {
	Fetch(ctx context.Context, url, platform string) (string, error)
}

// Archiver is the backup collaborator contract.
type Archiver interface {
	Run() (string, error)
}

// authLevel is the authorization requirement of a command family.
type authLevel int

const (
	authPublic     authLevel = iota
	authBotAdmin             // bot admin only
	authGroupAdmin           // group admin or bot admin
)

// command is one family of the dispatch table: alias group, authorization
// rule and handler. Families are tried in table order; first match wins.
type command struct {
	aliases   []string
	auth      authLevel
	deny      string
	groupOnly bool
	handler   func(ctx context.Context, msg *Message)
}

// Router is the dispatch core. It is stateless between messages except for
// the processed-ID set and the durable stores it references.
type Router struct {
	log       zerolog.Logger
	transport Transport
	settings  *store.Settings
	blacklist *store.Blacklist
	roster    *access.Roster
	fetcher   Fetcher
	renderer  sticker.Renderer
	archiver  Archiver
	msgLog    *msglog.Logger

	mu        sync.Mutex
	processed map[string]struct{}

	commands []command
}

// NewRouter wires the dispatch table. The order of entries is the dispatch
// priority; the link scan runs between the backup family and the rest.
func NewRouter(
	log zerolog.Logger,
	transport Transport,
	settings *store.Settings,
	blacklist *store.Blacklist,
	roster *access.Roster,
	fetcher Fetcher,
	renderer sticker.Renderer,
	archiver Archiver,
	msgLog *msglog.Logger,
) *Router {
	r := &Router{
		log:       log.With().Str("component", "router").Logger(),
		transport: transport,
		settings:  settings,
		blacklist: blacklist,
		roster:    roster,
		fetcher:   fetcher,
		renderer:  renderer,
		archiver:  archiver,
		msgLog:    msgLog,
		processed: make(map[string]struct{}),
	}
	r.commands = []command{
		{
			aliases: []string{"/yedekle", "/backup"},
			auth:    authBotAdmin,
			deny:    "❌ Bu komutu kullanmak için yetkiniz yok.",
			handler: r.handleBackup,
		},
		{
			aliases: []string{"/qm", "/çıkar"},
			auth:    authPublic,
			handler: r.handleQuoteSticker,
		},
		{
			aliases: []string{"/q", "/foto", "/fotoçıkar"},
			auth:    authPublic,
			handler: r.handleImageSticker,
		},
		{
			aliases: []string{"/blacklist", "/karaliste"},
			auth:    authBotAdmin,
			deny:    "❌ Bu komutu sadece bot yöneticileri kullanabilir.",
			handler: r.handleBlacklistAdd,
		},
		{
			aliases: []string{"/unblacklist", "/karalistencikar", "/karalistedencikar", "/karalisteçikar"},
			auth:    authBotAdmin,
			deny:    "❌ Bu komutu sadece bot yöneticileri kullanabilir.",
			handler: r.handleBlacklistRemove,
		},
		{
			aliases: []string{"/maksimumdosyasınırı"},
			auth:    authBotAdmin,
			deny:    "❌ Bu komutu sadece bot yöneticileri kullanabilir.",
			handler: r.handleMaxSize,
		},
		{
			aliases:   []string{"/kick", "/at"},
			auth:      authGroupAdmin,
			deny:      "❌ Bu komutu sadece grup yöneticileri veya bot yöneticileri kullanabilir.",
			groupOnly: true,
			handler:   r.handleKick,
		},
		{
			aliases:   []string{"/lockall"},
			auth:      authGroupAdmin,
			deny:      "❌ Bu komutu sadece grup yöneticileri veya bot yöneticileri kullanabilir.",
			groupOnly: true,
			handler:   r.handleLock,
		},
		{
			aliases:   []string{"/unlock", "/kilitac", "/kilitaç"},
			auth:      authGroupAdmin,
			deny:      "❌ Bu komutu sadece grup yöneticileri veya bot yöneticileri kullanabilir.",
			groupOnly: true,
			handler:   r.handleUnlock,
		},
	}
	return r
}

// Handle routes one inbound message: log, blacklist gate, dedup gate,
// command classification, authorization, handler. Nothing here may panic
// or propagate an error; one message's failure must not affect the next.
func (r *Router) Handle(ctx context.Context, msg *Message) {
	r.logMessage(msg)

	if msg.Chat == types.StatusBroadcastJID {
		return
	}
	if r.roster.IsBlacklisted(msg.Chat) {
		r.log.Debug().Str("chat", msg.Chat.String()).Msg("Chat is blacklisted, message ignored")
		return
	}
	if !r.markProcessed(msg.ID) {
		r.log.Debug().Str("id", msg.ID).Msg("Message already processed, skipping")
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	lower := strings.ToLower(text)

	// The backup family is the only alias match evaluated ahead of the
	// link scan; every other message, command or not, is scanned for a
	// video link first.
	if matchAlias(lower, r.commands[0].aliases) {
		r.dispatch(ctx, msg, &r.commands[0])
		return
	}
	if match := linkdetect.Detect(msg.Text); match != nil {
		r.handleDownload(ctx, msg, match)
		return
	}
	for i := 1; i < len(r.commands); i++ {
		if matchAlias(lower, r.commands[i].aliases) {
			r.dispatch(ctx, msg, &r.commands[i])
			return
		}
	}
}

// logMessage appends the message to the day log. Best effort; a logging
// failure must not abort routing.
func (r *Router) logMessage(msg *Message) {
	if r.msgLog == nil {
		return
	}
	author := ""
	if msg.IsGroup {
		author = msg.Sender.ToNonAD().String()
	}
	err := r.msgLog.Append(msglog.Entry{
		Timestamp: msg.Timestamp,
		ID:        msg.ID,
		From:      msg.Chat.String(),
		Author:    author,
		Body:      msg.Text,
		Type:      msg.Kind,
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("Failed to write message log")
	}
}

// markProcessed records the message ID, reporting false if it was already
// seen this process lifetime. The set is not persisted; a restart resets it.
func (r *Router) markProcessed(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.processed[id]; seen {
		return false
	}
	r.processed[id] = struct{}{}
	return true
}

func matchAlias(lower string, aliases []string) bool {
	for _, alias := range aliases {
		if strings.HasPrefix(lower, alias) {
			return true
		}
	}
	return false
}

// dispatch applies the group-chat requirement and the family's
// authorization rule before running the handler.
func (r *Router) dispatch(ctx context.Context, msg *Message, cmd *command) {
	if cmd.groupOnly && !msg.IsGroup {
		r.reply(ctx, msg, "❌ Bu komut sadece grup sohbetlerinde kullanılabilir.")
		return
	}
	if !r.authorized(ctx, msg, cmd) {
		r.reply(ctx, msg, cmd.deny)
		return
	}
	cmd.handler(ctx, msg)
}

func (r *Router) authorized(ctx context.Context, msg *Message, cmd *command) bool {
	switch cmd.auth {
	case authBotAdmin:
		return r.roster.IsAdmin(msg.Sender)
	case authGroupAdmin:
		return r.isGroupAdmin(ctx, msg) || r.roster.IsAdmin(msg.Sender)
	default:
		return true
	}
}

// isGroupAdmin checks the sender against the group participant list.
func (r *Router) isGroupAdmin(ctx context.Context, msg *Message) bool {
	info, err := r.transport.GroupInfo(ctx, msg.Chat)
	if err != nil {
		r.log.Warn().Err(err).Str("chat", msg.Chat.String()).Msg("Failed to fetch group info")
		return false
	}
	sender := msg.Sender.ToNonAD()
	for _, p := range info.Participants {
		if p.JID.ToNonAD() == sender {
			return p.IsAdmin || p.IsSuperAdmin
		}
	}
	return false
}

// reply sends a reply, logging delivery failures.
func (r *Router) reply(ctx context.Context, msg *Message, text string) {
	if err := r.transport.Reply(ctx, msg, text); err != nil {
		r.log.Error().Err(err).Str("chat", msg.Chat.String()).Msg("Failed to send reply")
	}
}
