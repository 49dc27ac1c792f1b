package bot

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.mau.fi/whatsmeow/types"

	"github.com/enessquik/wpvdbot/internal/access"
	"github.com/enessquik/wpvdbot/internal/backup"
	"github.com/enessquik/wpvdbot/internal/downloader"
	"github.com/enessquik/wpvdbot/internal/linkdetect"
	"github.com/enessquik/wpvdbot/internal/sticker"
)

// maxAvatarBytes caps the profile picture fetch for quote stickers.
const maxAvatarBytes = 5 << 20

// handleDownload runs the admission pipeline for a detected link: notice,
// fetch, fresh size check, send, cleanup. The temporary file is removed
// whether the hand-off succeeds or not.
func (r *Router) handleDownload(ctx context.Context, msg *Message, match *linkdetect.Match) {
	r.log.Info().Str("platform", match.Platform).Str("url", match.URL).Msg("Detected video link")
	r.reply(ctx, msg, "🎬 Video indiriliyor...")

	path, err := r.fetcher.Fetch(ctx, match.URL, match.Platform)
	if err != nil {
		r.log.Error().Err(err).Str("platform", match.Platform).Msg("Download failed")
		r.reply(ctx, msg, fmt.Sprintf("❌ Şu platformdan video indirilemedi: %s. Bağlantı özel, erişilemez veya coğrafi/kısıtlama nedeniyle engellenmiş olabilir.", match.Platform))
		return
	}
	defer r.removeTemp(path)

	sizeMB, err := downloader.FileSizeMB(path)
	if err != nil {
		r.log.Error().Err(err).Str("path", path).Msg("Failed to measure download")
		r.reply(ctx, msg, fmt.Sprintf("❌ Videoyu indirirken bir hata oluştu: %v", err))
		return
	}
	// The ceiling is read at check time; the hint given to yt-dlp is not
	// trusted as a limit.
	limit := r.settings.MaxFileSizeMB()
	if sizeMB > float64(limit) {
		r.reply(ctx, msg, fmt.Sprintf("❌ Video çok büyük (%.1fMB). İzin verilen maksimum: %dMB.", sizeMB, limit))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		r.log.Error().Err(err).Str("path", path).Msg("Failed to read download")
		r.reply(ctx, msg, fmt.Sprintf("❌ Videoyu indirirken bir hata oluştu: %v", err))
		return
	}
	if err = r.transport.SendVideo(ctx, msg.Chat, data, "✅ Video indirildi!"); err != nil {
		r.log.Error().Err(err).Str("chat", msg.Chat.String()).Msg("Failed to send video")
		r.reply(ctx, msg, fmt.Sprintf("❌ Videoyu indirirken bir hata oluştu: %v", err))
		return
	}
	r.log.Info().Str("platform", match.Platform).Msg("Video downloaded and sent")
}

func (r *Router) removeTemp(path string) {
	if err := os.Remove(path); err != nil {
		r.log.Warn().Err(err).Str("path", path).Msg("Failed to remove temporary file")
	}
}

// handleQuoteSticker renders the quoted text as a WhatsApp-style bubble
// sticker with the quoted sender's name and profile picture.
func (r *Router) handleQuoteSticker(ctx context.Context, msg *Message) {
	if msg.Quoted == nil {
		r.reply(ctx, msg, "❌ Lütfen bir metin mesajını alıntılayıp /qm yazın.")
		return
	}
	if msg.Quoted.Text == "" {
		r.reply(ctx, msg, "❌ Alıntılanan mesajda metin bulunamadı.")
		return
	}

	name := r.transport.ContactName(ctx, msg.Quoted.Sender)
	if name == "" {
		name = "Kullanıcı"
	}
	avatar := ""
	if url, err := r.transport.ProfilePictureURL(ctx, msg.Quoted.Sender); err == nil && url != "" {
		avatar, err = fetchAvatar(ctx, url)
		if err != nil {
			r.log.Warn().Err(err).Msg("Failed to fetch profile picture")
		}
	}

	card := sticker.QuoteCard{
		Name:          name,
		Text:          msg.Quoted.Text,
		Time:          time.Now().Format("15:04"),
		AvatarDataURI: avatar,
	}
	webp, err := r.renderer.RenderQuote(ctx, card)
	if err != nil {
		r.reply(ctx, msg, fmt.Sprintf("❌ Metin çıkartması oluşturulamadı. Hata: %v", err))
		return
	}
	if err = r.transport.SendSticker(ctx, msg.Chat, webp); err != nil {
		r.reply(ctx, msg, fmt.Sprintf("❌ Metin çıkartması oluşturulamadı. Hata: %v", err))
	}
}

// handleImageSticker converts a quoted photo into a sticker.
func (r *Router) handleImageSticker(ctx context.Context, msg *Message) {
	if msg.Quoted == nil || msg.Quoted.Image == nil {
		r.reply(ctx, msg, "❌ Lütfen bir fotoğrafı alıntılayıp /q yazın.")
		return
	}
	data, err := r.transport.DownloadQuotedImage(ctx, msg)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to download quoted image")
		r.reply(ctx, msg, "❌ Fotoğraf indirilemedi.")
		return
	}
	webp, err := r.renderer.RenderImage(ctx, data)
	if err != nil {
		r.reply(ctx, msg, fmt.Sprintf("❌ Görsel webp'ye dönüştürülemedi. Hata: %v", err))
		return
	}
	if err = r.transport.SendSticker(ctx, msg.Chat, webp); err != nil {
		r.reply(ctx, msg, fmt.Sprintf("❌ Çıkartma oluşturulamadı. Hata: %v", err))
	}
}

func (r *Router) handleBlacklistAdd(ctx context.Context, msg *Message) {
	parts := strings.Fields(msg.Text)
	if len(parts) < 2 {
		r.reply(ctx, msg, "❌ Karalisteye almak için sohbet JID girin. Örnek: /blacklist 120363401359968775@g.us")
		return
	}
	target := parts[1]
	if canon, ok := access.CanonicalString(target); ok {
		target = canon
	}
	if r.blacklist.Add(target) {
		r.reply(ctx, msg, fmt.Sprintf("✅ %s karalisteye alındı.", target))
	} else {
		r.reply(ctx, msg, fmt.Sprintf("❌ %s zaten karalistede.", target))
	}
}

func (r *Router) handleBlacklistRemove(ctx context.Context, msg *Message) {
	parts := strings.Fields(msg.Text)
	if len(parts) < 2 {
		r.reply(ctx, msg, "❌ Karalisteden çıkarmak için sohbet JID girin. Örnek: /unblacklist 120363401359968775@g.us")
		return
	}
	target := parts[1]
	if canon, ok := access.CanonicalString(target); ok {
		target = canon
	}
	if r.blacklist.Remove(target) {
		r.reply(ctx, msg, fmt.Sprintf("✅ %s karalisteden çıkarıldı.", target))
	} else {
		r.reply(ctx, msg, fmt.Sprintf("❌ %s karalistede değil.", target))
	}
}

func (r *Router) handleMaxSize(ctx context.Context, msg *Message) {
	parts := strings.Fields(msg.Text)
	if len(parts) < 2 {
		r.reply(ctx, msg, "❌ Lütfen megabayt cinsinden bir sayı girin. Örnek: /maksimumdosyasınırı 50")
		return
	}
	val, err := strconv.ParseFloat(parts[1], 64)
	mb := int(math.Floor(val))
	if err != nil || mb <= 0 {
		r.reply(ctx, msg, "❌ Geçerli bir pozitif sayı girin. Örnek: /maksimumdosyasınırı 50")
		return
	}
	if err = r.settings.SetMaxFileSizeMB(mb); err != nil {
		r.reply(ctx, msg, "❌ Geçerli bir pozitif sayı girin. Örnek: /maksimumdosyasınırı 50")
		return
	}
	r.reply(ctx, msg, fmt.Sprintf("✅ Maksimum dosya boyutu %dMB olarak ayarlandı.", mb))
}

func (r *Router) handleKick(ctx context.Context, msg *Message) {
	parts := strings.Fields(msg.Text)
	if len(parts) < 2 {
		r.reply(ctx, msg, "❌ Lütfen atmak istediğiniz kişinin numarasını yazın. Örnek: /kick 905xxxxxxxxx")
		return
	}
	phone := digitsOnly(parts[1])
	if len(phone) < 10 {
		r.reply(ctx, msg, "❌ Geçerli bir numara girin. Örnek: /kick 905xxxxxxxxx")
		return
	}
	if !strings.HasPrefix(phone, "90") {
		phone = "90" + phone
	}
	target := types.NewJID(phone, types.DefaultUserServer)
	if err := r.transport.RemoveParticipant(ctx, msg.Chat, target); err != nil {
		r.log.Error().Err(err).Str("chat", msg.Chat.String()).Str("target", target.String()).Msg("Failed to remove participant")
		r.reply(ctx, msg, fmt.Sprintf("❌ Kullanıcı atılamadı. Hata: %v", err))
		return
	}
	r.reply(ctx, msg, fmt.Sprintf("✅ %s numaralı kullanıcı gruptan atıldı.", phone))
}

func (r *Router) handleLock(ctx context.Context, msg *Message) {
	if err := r.transport.SetAnnounce(ctx, msg.Chat, true); err != nil {
		r.log.Error().Err(err).Str("chat", msg.Chat.String()).Msg("Failed to lock group")
		r.reply(ctx, msg, fmt.Sprintf("❌ Grup kilitlenemedi. Hata: %v", err))
		return
	}
	r.reply(ctx, msg, "🔒 Grup sadece yöneticilere yazılabilir olarak kilitlendi.")
}

func (r *Router) handleUnlock(ctx context.Context, msg *Message) {
	if err := r.transport.SetAnnounce(ctx, msg.Chat, false); err != nil {
		r.log.Error().Err(err).Str("chat", msg.Chat.String()).Msg("Failed to unlock group")
		r.reply(ctx, msg, fmt.Sprintf("❌ Grup açılamadı. Hata: %v", err))
		return
	}
	r.reply(ctx, msg, "🔓 Grup tekrar herkese yazılabilir olarak açıldı.")
}

func (r *Router) handleBackup(ctx context.Context, msg *Message) {
	path, err := r.archiver.Run()
	if err != nil {
		if errors.Is(err, backup.ErrBackupRunning) {
			r.reply(ctx, msg, "❌ Yedekleme zaten devam ediyor.")
			return
		}
		r.log.Error().Err(err).Msg("Manual backup failed")
		r.reply(ctx, msg, fmt.Sprintf("❌ Yedekleme başarısız: %v", err))
		return
	}
	r.reply(ctx, msg, fmt.Sprintf("✅ Yedek tamamlandı: %s", path))
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// fetchAvatar downloads a profile picture and encodes it as a data URI for
// embedding in the quote card.
func fetchAvatar(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes))
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}
