// Package bot wires the WhatsApp transport to the command router and owns
// the process lifecycle: session pairing, event ingestion, the backup
// scheduler and shutdown cleanup.
package bot

import (
	"context"
	"fmt"
	"os"

	"github.com/mdp/qrterminal/v3"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"

	"github.com/enessquik/wpvdbot/internal/access"
	"github.com/enessquik/wpvdbot/internal/backup"
	"github.com/enessquik/wpvdbot/internal/conf"
	"github.com/enessquik/wpvdbot/internal/downloader"
	"github.com/enessquik/wpvdbot/internal/msglog"
	"github.com/enessquik/wpvdbot/internal/sticker"
	"github.com/enessquik/wpvdbot/internal/store"
)

// Bot is the assembled application.
type Bot struct {
	log       zerolog.Logger
	cfg       *conf.Config
	cli       *whatsmeow.Client
	router    *Router
	scheduler *backup.Scheduler
}

// New builds the bot: directories, durable stores, the WhatsApp client and
// the router. The client is not connected yet; call Run.
func New(ctx context.Context, cfg *conf.Config, log zerolog.Logger) (*Bot, error) {
	for _, dir := range []string{cfg.VideosDir(), cfg.LogsDir(), cfg.BackupsDir(), cfg.SessionDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	settings := store.LoadSettings(log, cfg.SettingsPath())
	blacklist := store.LoadBlacklist(log, cfg.BlacklistPath(), access.CanonicalString)
	roster := access.NewRoster(settings, blacklist, cfg.OwnerJID, cfg.AdminJIDs)

	dbLog := waLog.Zerolog(log.With().Str("component", "database").Logger())
	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", cfg.SessionDBPath), dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	cli := whatsmeow.NewClient(device, waLog.Zerolog(log.With().Str("component", "client").Logger()))

	archiver := backup.NewArchiver(log, cfg.BackupsDir(), []backup.Source{
		{Path: cfg.SessionDir(), Name: "session"},
		{Path: cfg.LogsDir(), Name: "logs"},
		{Path: cfg.VideosDir(), Name: "videos"},
	})
	router := NewRouter(
		log,
		&waTransport{cli: cli},
		settings,
		blacklist,
		roster,
		downloader.New(log, cfg.VideosDir(), settings),
		sticker.NewMagickRenderer(log),
		archiver,
		msglog.New(cfg.LogsDir()),
	)

	b := &Bot{
		log:       log.With().Str("component", "bot").Logger(),
		cfg:       cfg,
		cli:       cli,
		router:    router,
		scheduler: backup.NewScheduler(log, archiver, backup.DefaultSchedule),
	}
	cli.AddEventHandler(b.handleEvent)
	return b, nil
}

// handleEvent is the ingestion seam between the transport and the router.
func (b *Bot) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		msg := newMessage(v)
		if msg == nil {
			return
		}
		b.log.Debug().Str("chat", msg.Chat.String()).Str("id", msg.ID).Msg("New message")
		b.router.Handle(context.Background(), msg)
	case *events.PairSuccess:
		b.log.Info().Str("jid", v.ID.String()).Msg("Authenticated")
	case *events.PairError:
		b.log.Error().Err(v.Error).Msg("Authentication failed")
	case *events.Connected:
		b.log.Info().Msg("✅ Bot connected to WhatsApp")
	case *events.Disconnected:
		b.log.Warn().Msg("Disconnected from WhatsApp")
	case *events.LoggedOut:
		b.log.Error().Msg("Logged out, the session must be re-linked")
	}
}

// Run connects the client, driving the QR pairing flow when no session is
// stored yet, and starts the backup scheduler.
func (b *Bot) Run(ctx context.Context) error {
	if b.cli.Store.ID == nil {
		qrChan, err := b.cli.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("failed to get QR channel: %w", err)
		}
		if err = b.cli.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		go func() {
			for item := range qrChan {
				if item.Event == "code" {
					qrterminal.GenerateHalfBlock(item.Code, qrterminal.L, os.Stdout)
					b.log.Info().Msg("Scan the QR code to link your WhatsApp account")
				} else {
					b.log.Info().Str("event", item.Event).Msg("QR channel update")
				}
			}
		}()
	} else if err := b.cli.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	b.scheduler.Start()
	return nil
}

// Stop disconnects and cleans up the media working directory.
func (b *Bot) Stop() {
	b.scheduler.Stop()
	b.cli.Disconnect()
	if err := os.RemoveAll(b.cfg.VideosDir()); err != nil {
		b.log.Warn().Err(err).Msg("Failed to remove videos directory")
	}
}
